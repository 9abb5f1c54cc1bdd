// Package lockfile records the running API server so other habitd
// commands can find it.
package lockfile

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitd/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
)

var ErrNotRunning = errors.New("habitd server is not running")

// Server is the content of a server lockfile
type Server struct {
	Addr string
	PID  int
}

// Path returns the lockfile location inside dir
func Path(dir string) string {
	return filepath.Join(dir, constants.ServerLockfileName)
}

// Write records addr and the current process id. It refuses to overwrite
// the lockfile of a live server.
func Write(dir, addr string) error {
	if s, err := Find(dir); err == nil {
		return fmt.Errorf("habitd server already running on %s (pid %d)", s.Addr, s.PID)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create lockfile directory: %w", err)
	}
	content := fmt.Sprintf("%s|%d", addr, getpidFunc())
	return os.WriteFile(Path(dir), []byte(content), 0600)
}

// Remove deletes the lockfile if present
func Remove(dir string) error {
	if err := os.Remove(Path(dir)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read parses the lockfile without checking the process
func Read(dir string) (Server, error) {
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		return Server{}, ErrNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return Server{}, errors.New("lockfile is malformed")
	}

	addr := strings.TrimSpace(parts[0])
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Server{}, fmt.Errorf("invalid address in lockfile: %w", err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return Server{}, errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return Server{}, fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return Server{}, errors.New("invalid process ID in lockfile")
	}
	return Server{Addr: addr, PID: pid}, nil
}

// Find reads the lockfile and confirms its process is a live habitd
func Find(dir string) (Server, error) {
	s, err := Read(dir)
	if err != nil {
		return Server{}, err
	}

	process, err := findProcessFunc(s.PID)
	if err != nil || process == nil {
		return Server{}, fmt.Errorf("%w (stale lockfile for pid %d)", ErrNotRunning, s.PID)
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return Server{}, fmt.Errorf("process with PID %d is not habitd (is %s)", s.PID, process.Executable())
	}
	return s, nil
}
