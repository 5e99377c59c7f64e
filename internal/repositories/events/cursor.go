package events

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCursor is returned for cursors that are not event IDs
var ErrInvalidCursor = errors.New("invalid cursor")

// ParseCursor converts a client cursor into a numeric ID. An empty cursor means
// "from the beginning" and maps to 0.
func ParseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}

	return id, nil
}

// FormatID renders a numeric ID as the opaque cursor handed to clients
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
