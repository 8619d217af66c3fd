package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ghpm/internal/domain/program"
	"github.com/oshokin/ghpm/internal/service/common"
)

// recordingExecutor fails the commands whose executable is listed in failing.
type recordingExecutor struct {
	failing  map[string]bool
	received []common.Command
}

func (r *recordingExecutor) Output(_ context.Context, cmd common.Command) ([]byte, error) {
	r.received = append(r.received, cmd)

	return nil, nil
}

func (r *recordingExecutor) Run(_ context.Context, cmd common.Command) error {
	r.received = append(r.received, cmd)

	for _, arg := range cmd {
		if r.failing[arg] {
			return common.ErrNonZeroExit
		}
	}

	return nil
}

func debDescriptor() *program.Descriptor {
	return &program.Descriptor{
		PackageType:     "deb",
		Install:         "apt-get install -y {}",
		Remove:          "apt-get remove -y {}",
		InstallFallback: []program.Template{"dpkg -i {}", "apt-get install -f -y"},
		RemoveFallback:  []program.Template{"dpkg -r {}"},
	}
}

var (
	sudo = common.Command{"sudo"}
	user = &common.Actor{Username: "alice"}
	root = &common.Actor{Username: "root", Privileged: true}
)

// TestInstall_Primary runs only the primary command with the artifact path as one argument.
func TestInstall_Primary(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{}
	path := "/tmp/ghpm 1/app_1.1.0_amd64.deb"

	result, err := New(exec, sudo, user).Install(context.Background(), debDescriptor(), path)
	require.NoError(t, err)
	require.False(t, result.FallbackUsed)
	require.Equal(t, []common.Command{
		{"sudo", "apt-get", "install", "-y", path},
	}, exec.received)
}

// TestInstall_Fallback runs the fallback chain in order with the same artifact path.
func TestInstall_Fallback(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{failing: map[string]bool{"-y": true}}

	descriptor := debDescriptor()
	descriptor.InstallFallback = []program.Template{"dpkg -i {}", "dpkg --configure -a"}

	result, err := New(exec, sudo, root).Install(context.Background(), descriptor, "/tmp/app.deb")
	require.NoError(t, err)
	require.True(t, result.FallbackUsed)
	require.Equal(t, []common.Command{
		{"apt-get", "install", "-y", "/tmp/app.deb"},
		{"dpkg", "-i", "/tmp/app.deb"},
		{"dpkg", "--configure", "-a"},
	}, exec.received)
}

// TestInstall_FallbackFails reports ErrCommandFailed and stops at the failing step.
func TestInstall_FallbackFails(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{failing: map[string]bool{"apt-get": true}}

	result, err := New(exec, nil, user).Install(context.Background(), debDescriptor(), "/tmp/app.deb")
	require.ErrorIs(t, err, program.ErrCommandFailed)
	require.ErrorIs(t, err, common.ErrNonZeroExit)
	require.True(t, result.FallbackUsed)
	require.Equal(t, []common.Command{
		{"apt-get", "install", "-y", "/tmp/app.deb"},
		{"dpkg", "-i", "/tmp/app.deb"},
		{"apt-get", "install", "-f", "-y"},
	}, exec.received)
}

// TestRemove_NoFallback fails directly when the descriptor has no removal fallback.
func TestRemove_NoFallback(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{failing: map[string]bool{"pacman": true}}
	descriptor := &program.Descriptor{PackageType: "pkg.tar.zst", Remove: "pacman -R --noconfirm {}"}

	_, err := New(exec, sudo, user).Remove(context.Background(), descriptor, "app")
	require.ErrorIs(t, err, program.ErrCommandFailed)
	require.Equal(t, []common.Command{{"sudo", "pacman", "-R", "--noconfirm", "app"}}, exec.received)
}

// TestRemove_Elevation omits the elevation prefix for a privileged actor.
func TestRemove_Elevation(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{}

	_, err := New(exec, common.Command{"doas"}, root).Remove(context.Background(), debDescriptor(), "app")
	require.NoError(t, err)
	require.Equal(t, []common.Command{{"apt-get", "remove", "-y", "app"}}, exec.received)
}

// TestInstall_EmptyTemplate refuses to run an empty command.
func TestInstall_EmptyTemplate(t *testing.T) {
	t.Parallel()

	exec := &recordingExecutor{}

	_, err := New(exec, sudo, user).Install(context.Background(), &program.Descriptor{PackageType: "x"}, "/tmp/a")
	require.ErrorIs(t, err, program.ErrCommandFailed)
	require.Empty(t, exec.received)
}
