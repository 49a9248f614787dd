// Package names generates human-friendly run IDs.
package names

import (
	"errors"
	"fmt"

	"github.com/docker/docker/pkg/namesgenerator"
)

// defaultAttempts bounds RunID when no limit is given.
const defaultAttempts = 100

// ErrExhausted is returned when no free run ID could be found.
var ErrExhausted = errors.New("no free run id")

// Taken reports whether a run ID is already in use.
type Taken func(id string) bool

// RunID returns an adjective_surname ID (e.g. "focused_turing") that taken
// does not report as in use. After the first collision a numeric suffix is
// appended, matching namesgenerator's retry form.
func RunID(taken Taken, attempts int) (string, error) {
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	for i := range attempts {
		id := namesgenerator.GetRandomName(i)
		if taken == nil || !taken(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrExhausted, attempts)
}
