package main

import (
	"context"
	"os"

	"grimm.is/ifconf/cmd"
)

func main() {
	os.Exit(cmd.NewApp().Run(context.Background(), os.Args[1:]))
}
