package dev

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/joho/godotenv"

	"github.com/firzaelbuho/bun-api-modular/internal/ctxlog"
)

// ErrNotRunning is returned by Wait when no process was started.
var ErrNotRunning = errors.New("dev server is not running")

// Run starts the dev server and blocks until it exits or ctx is done, in
// which case the server is stopped.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		r.Stop()
		return nil
	case <-r.exited:
		<-r.pumped
		r.ptmx.Close()
		if r.waitErr != nil {
			return fmt.Errorf("dev server exited: %w", r.waitErr)
		}
		r.log("👋 Dev server exited", "\x1b[33m")
		return nil
	}
}

// Start launches the configured dev command under a PTY with PORT set and
// the project's .env applied.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := ctxlog.FromContext(ctx)

	args := strings.Fields(r.config.Dev.Command)
	if len(args) == 0 {
		return fmt.Errorf("no dev command configured")
	}

	env, err := r.environment()
	if err != nil {
		return err
	}

	r.log(fmt.Sprintf("🚀 Starting dev server: %s", r.config.Dev.Command), "\x1b[34m")

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = r.root
	cmd.Env = env

	// Use PTY for colored output
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start dev server with PTY: %w", err)
	}

	r.process = cmd
	r.ptmx = ptmx
	r.exited = make(chan struct{})
	r.pumped = make(chan struct{})
	logger.Debug("dev server started", "pid", cmd.Process.Pid, "port", r.config.Port)
	r.log(fmt.Sprintf("✅ Dev server started (PID: %d, port %d)", cmd.Process.Pid, r.config.Port), "\x1b[34m")

	go func(exited chan struct{}) {
		r.waitErr = cmd.Wait()
		close(exited)
	}(r.exited)

	go func(pumped chan struct{}) {
		defer close(pumped)
		scanner := bufio.NewScanner(ptmx)
		for scanner.Scan() {
			r.formatLog(scanner.Text())
		}
	}(r.pumped)

	return nil
}

// Stop sends SIGTERM and kills the process if it has not exited after the
// grace period.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.process == nil || r.process.Process == nil {
		return
	}

	pid := r.process.Process.Pid
	r.log(fmt.Sprintf("🛑 Stopping dev server (PID: %d)...", pid), "\x1b[34m")

	// Try graceful shutdown first
	_ = r.process.Process.Signal(syscall.SIGTERM)

	select {
	case <-r.exited:
		r.log("✅ Dev server stopped gracefully", "\x1b[32m")
	case <-time.After(r.GracePeriod):
		r.log("💀 Force killing dev server (timeout)...", "\x1b[31m")
		_ = r.process.Process.Kill()
		<-r.exited
	}

	r.ptmx.Close()
	r.process = nil
}

// Wait blocks until the started process exits.
func (r *Runner) Wait() error {
	r.mu.Lock()
	exited, pumped := r.exited, r.pumped
	r.mu.Unlock()

	if exited == nil {
		return ErrNotRunning
	}
	<-exited
	<-pumped
	return r.waitErr
}

// environment returns the process environment with .env values and PORT
// applied. Variables already set in the environment win over .env.
func (r *Runner) environment() ([]string, error) {
	env := os.Environ()

	dotenv := filepath.Join(r.root, ".env")
	if _, err := os.Stat(dotenv); err == nil {
		values, err := godotenv.Read(dotenv)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dotenv, err)
		}
		for key, value := range values {
			if _, set := os.LookupEnv(key); !set {
				env = append(env, key+"="+value)
			}
		}
	}

	return append(env, fmt.Sprintf("PORT=%d", r.config.Port)), nil
}
