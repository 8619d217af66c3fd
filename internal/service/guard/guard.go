package guard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ErrAlreadyRunning is returned when another ghpm process is alive.
var ErrAlreadyRunning = errors.New("another ghpm instance is already running")

// Lister enumerates running processes.
type Lister func() ([]ps.Process, error)

// Guard looks for sibling processes running the same executable.
type Guard struct {
	list       Lister
	executable string
	selfPID    int
}

// New creates a Guard for the current executable.
func New() *Guard {
	name := "ghpm"
	if path, err := os.Executable(); err == nil {
		name = filepath.Base(path)
	}

	return NewWithLister(ps.Processes, name, os.Getpid())
}

// NewWithLister creates a Guard with an explicit process source.
func NewWithLister(list Lister, executable string, selfPID int) *Guard {
	return &Guard{
		list:       list,
		executable: executable,
		selfPID:    selfPID,
	}
}

// Check returns ErrAlreadyRunning naming the first other process found.
// The parent process is ignored so "sudo ghpm" does not trip over itself.
func (g *Guard) Check() error {
	processes, err := g.list()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	parentPID := -1

	for _, process := range processes {
		if process.Pid() == g.selfPID {
			parentPID = process.PPid()

			break
		}
	}

	for _, process := range processes {
		pid := process.Pid()
		if pid == g.selfPID || pid == parentPID {
			continue
		}

		// Linux truncates process names to 15 bytes.
		name := process.Executable()
		if name == g.executable || (len(name) == 15 && strings.HasPrefix(g.executable, name)) {
			return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
	}

	return nil
}
