package cmd

import (
	"fmt"
	"io"

	"grimm.is/ifconf/internal/brand"
	"grimm.is/ifconf/internal/media"
)

// Usage writes the command synopsis to w.
func Usage(w io.Writer) {
	name := brand.BinaryName
	fmt.Fprintf(w, "usage: %s [<interface> [<address family>] [<address> [<mask>] | auto-config] [<option/flags>...]]\n", name)
	fmt.Fprintf(w, "       %s --delete <interface> [...]\n", name)
	fmt.Fprintf(w, "       %s <interface> [scan|list [-v]|join|leave] [<network> [<password>]]\n", name)
	fmt.Fprintf(w, "       %s route <interface> [add default <gateway> | del default [<gateway> | <address family>]]\n", name)
	fmt.Fprintf(w, "       %s autoconfd [--socket <path>] [--metrics <addr>] [--status]\n", name)
	fmt.Fprintf(w, "       %s config print|check\n\n", name)
	fmt.Fprint(w, "Global flags: --config <file>, --dry-run, --json, --yaml, --netns <name>, --color auto|always|never\n\n")
	fmt.Fprint(w, "Where <option> can be the following:\n"+
		"  netmask <addr>     - networking subnet mask\n"+
		"  prefixlen <number> - subnet mask length in bits\n"+
		"  broadcast <addr>   - set broadcast address\n"+
		"  peer <addr>        - ppp-peer address\n"+
		"  mtu <bytes>        - maximal transfer unit\n"+
		"  metric <number>    - metric number to use (defaults to 0)\n"+
		"  media <media>      - media type to use (defaults to auto)\n")
	for _, line := range media.UsageLines() {
		fmt.Fprintln(w, line)
	}
	fmt.Fprint(w, "And <flags> can be: up, down, [-]promisc, [-]allmulti, [-]bcast, [-]arp, loopback\n"+
		"If you specify \"auto-config\" instead of an address, it will be configured automatically.\n\n"+
		"Example:\n")
	fmt.Fprintf(w, "\t%s loop 127.0.0.1 255.0.0.0 up\n", name)
}
