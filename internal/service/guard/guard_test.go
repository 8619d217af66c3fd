package guard

import (
	"errors"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid, ppid int
	name      string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return p.ppid }
func (p fakeProcess) Executable() string { return p.name }

func listing(processes ...fakeProcess) Lister {
	return func() ([]ps.Process, error) {
		result := make([]ps.Process, 0, len(processes))
		for _, process := range processes {
			result = append(result, process)
		}

		return result, nil
	}
}

// TestCheck_Alone passes when only this process and its parent match.
func TestCheck_Alone(t *testing.T) {
	t.Parallel()

	guard := NewWithLister(listing(
		fakeProcess{pid: 1, name: "systemd"},
		fakeProcess{pid: 40, ppid: 1, name: "ghpm"},
		fakeProcess{pid: 41, ppid: 40, name: "ghpm"},
		fakeProcess{pid: 42, ppid: 41, name: "apt-get"},
	), "ghpm", 41)

	require.NoError(t, guard.Check())
}

// TestCheck_Sibling reports another running instance.
func TestCheck_Sibling(t *testing.T) {
	t.Parallel()

	guard := NewWithLister(listing(
		fakeProcess{pid: 41, ppid: 1, name: "ghpm"},
		fakeProcess{pid: 99, ppid: 1, name: "ghpm"},
	), "ghpm", 41)

	err := guard.Check()
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "pid 99")
}

// TestCheck_TruncatedName matches kernel-truncated executable names.
func TestCheck_TruncatedName(t *testing.T) {
	t.Parallel()

	guard := NewWithLister(listing(
		fakeProcess{pid: 7, ppid: 1, name: "ghpm-linux-amd"},
		fakeProcess{pid: 8, ppid: 1, name: "ghpm-linux-amd6"},
	), "ghpm-linux-amd64", 3)

	require.ErrorIs(t, guard.Check(), ErrAlreadyRunning)
}

// TestCheck_ListError surfaces lister failures.
func TestCheck_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("no /proc")
	guard := NewWithLister(func() ([]ps.Process, error) { return nil, boom }, "ghpm", 1)

	require.ErrorIs(t, guard.Check(), boom)
}
