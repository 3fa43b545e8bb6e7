// Package dev runs the generated project's dev server under a PTY and relays
// its output.
package dev

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
)

// Runner owns one dev server process.
type Runner struct {
	root   string
	config *config.ProjectConfig
	debug  bool
	out    io.Writer
	outMu  sync.Mutex

	// GracePeriod is how long Stop waits after SIGTERM before killing.
	GracePeriod time.Duration

	mu      sync.Mutex
	process *exec.Cmd
	ptmx    *os.File
	exited  chan struct{}
	waitErr error
	pumped  chan struct{}
}

// NewRunner creates a runner for the project at root.
func NewRunner(root string, cfg *config.ProjectConfig, debug bool) *Runner {
	return &Runner{
		root:        root,
		config:      cfg,
		debug:       debug,
		out:         os.Stdout,
		GracePeriod: 3 * time.Second,
	}
}

// SetOutput redirects the runner's log output.
func (r *Runner) SetOutput(w io.Writer) {
	r.out = w
}

func (r *Runner) log(message, color string) {
	timestamp := time.Now().Format("15:04:05")
	if color == "" {
		color = "\x1b[0m"
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.out, "%s[%s] %s\x1b[0m\n", color, timestamp, message)
}
