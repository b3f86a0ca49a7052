// Package pidfile enforces single-instance dispatchd. Two daemons sharing a
// schedule would double-publish seat charts and notifications.
package pidfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile manages the daemon's process ID file.
type PIDFile struct {
	path string
}

// New creates a PID file manager for the given path.
func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Acquire claims the PID file, failing if another live daemon holds it.
// A file left behind by a dead process is treated as stale and replaced.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.existingPID(); ok {
		if isProcessRunning(pid) {
			return fmt.Errorf("dispatchd is already running (PID %d)", pid)
		}
		_ = os.Remove(p.path)
	}

	pidData := fmt.Sprintf("%d\n", os.Getpid())
	if err := os.WriteFile(p.path, []byte(pidData), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// existingPID reads the PID recorded in the file, if any. An unreadable or
// malformed file is dropped so a fresh daemon can start.
func (p *PIDFile) existingPID() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		_ = os.Remove(p.path)
		return 0, false
	}
	return pid, true
}

// Release removes the PID file
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// isProcessRunning probes a PID with signal 0. On Unix FindProcess always
// succeeds, so only the signal result says anything.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.ESRCH {
		return false
	}
	// EPERM means the process exists under another user.
	return err == syscall.EPERM
}
