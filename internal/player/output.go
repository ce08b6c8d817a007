// Package player plays resolved sound files one at a time and chains a
// second sound after the first one finishes.
package player

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Output is the single audio device. Start stops whatever is playing
// before starting path. done is called once when playback ends on its
// own; it is not called after Stop or after a newer Start.
type Output interface {
	Start(path string, volume int, done func()) error
	Stop()
}

// DefaultCommand plays a file with ffplay and exits when it ends.
const DefaultCommand = "ffplay -nodisp -autoexit -loglevel quiet -volume {volume} {file}"

// ErrNoCommand reports an empty player command.
var ErrNoCommand = errors.New("player command is empty")

// ExecOutput runs an external player process per sound. The command is
// split on whitespace; {file} and {volume} are substituted per run.
type ExecOutput struct {
	args []string

	mu      sync.Mutex
	current *exec.Cmd
}

// NewExecOutput parses command. An empty command selects DefaultCommand.
func NewExecOutput(command string) (*ExecOutput, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, ErrNoCommand
	}
	return &ExecOutput{args: args}, nil
}

// Args expands the command for one run.
func (o *ExecOutput) Args(path string, volume int) []string {
	out := make([]string, len(o.args))
	vol := strconv.Itoa(clampVolume(volume))
	for i, a := range o.args {
		a = strings.ReplaceAll(a, "{file}", path)
		out[i] = strings.ReplaceAll(a, "{volume}", vol)
	}
	return out
}

// Start implements Output.
func (o *ExecOutput) Start(path string, volume int, done func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()

	args := o.Args(path, volume)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	o.current = cmd
	go o.wait(cmd, done)
	return nil
}

func (o *ExecOutput) wait(cmd *exec.Cmd, done func()) {
	_ = cmd.Wait()
	o.mu.Lock()
	owned := o.current == cmd
	if owned {
		o.current = nil
	}
	o.mu.Unlock()
	if owned && done != nil {
		done()
	}
}

// Stop implements Output.
func (o *ExecOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
}

func (o *ExecOutput) stopLocked() {
	if o.current == nil {
		return
	}
	if o.current.Process != nil {
		// Best-effort kill; the process may already be gone.
		_ = o.current.Process.Kill()
	}
	o.current = nil
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
