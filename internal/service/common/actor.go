//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// rootUID is the user id that never needs privilege elevation.
const rootUID = "0"

// Actor identifies who runs ghpm on which host.
type Actor struct {
	// Hostname is the machine name.
	Hostname string
	// Username is the system user.
	Username string
	// Privileged is true when the user already has root privileges.
	Privileged bool
}

// DetectActor gathers host and user information.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname:   hostname,
		Username:   currentUser.Username,
		Privileged: currentUser.Uid == rootUID,
	}, nil
}
