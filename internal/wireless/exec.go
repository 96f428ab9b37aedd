package wireless

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandExecutor abstracts running an external command.
type CommandExecutor interface {
	RunCommand(name string, arg ...string) (string, error)
}

// DefaultCommandExecutor is the default RealCommandExecutor instance.
var DefaultCommandExecutor CommandExecutor = &RealCommandExecutor{}

// RealCommandExecutor runs commands with os/exec.
type RealCommandExecutor struct{}

// RunCommand runs a command and returns its combined output.
func (r *RealCommandExecutor) RunCommand(name string, arg ...string) (string, error) {
	cmd := exec.Command(name, arg...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("command %s %v failed: %w, output: %s", name, arg, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

// DryRunExecutor records commands instead of running them. Replies maps a
// command line to canned output.
type DryRunExecutor struct {
	mu       sync.Mutex
	Commands []string
	Replies  map[string]string
}

// NewDryRunExecutor creates a new dry run executor.
func NewDryRunExecutor() *DryRunExecutor {
	return &DryRunExecutor{
		Commands: make([]string, 0),
		Replies:  make(map[string]string),
	}
}

// RunCommand logs the command instead of executing it.
func (e *DryRunExecutor) RunCommand(name string, arg ...string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd := strings.TrimSpace(name + " " + strings.Join(arg, " "))
	e.Commands = append(e.Commands, cmd)
	return e.Replies[cmd], nil
}
