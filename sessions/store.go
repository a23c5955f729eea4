package sessions

import (
	"context"
	"time"
)

// DefaultTTL is how long an idle session is remembered.
const DefaultTTL = 30 * time.Minute

// Store tracks live session ids.
type Store interface {
	// Touch records activity on id, creating the session if needed.
	Touch(ctx context.Context, id string) error
	// Exists reports whether id is live.
	Exists(ctx context.Context, id string) (bool, error)
	// Delete ends the session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
