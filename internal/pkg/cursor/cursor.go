// Package cursor implements the opaque keyset-pagination token used by the
// message feeds. A cursor names the last row a client has seen as a
// (timestamp, id) pair; the next page contains only rows strictly below that
// key under (timestamp DESC, id DESC) ordering.
//
// The encoding is reversible base64, not sealed: a cursor reveals nothing
// its owner does not already know about the row it points at.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned by Decode for any token that does not round-trip
// from Encode. Callers must surface it as a validation error rather than
// silently restarting the feed.
var ErrMalformed = errors.New("malformed cursor token")

// Cursor identifies a feed position: the ordering timestamp in Unix
// milliseconds and the row id used to break ties.
type Cursor struct {
	Timestamp int64
	ID        string
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload := strconv.FormatInt(c.Timestamp, 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Decode parses a token produced by Encode. Decode(c.Encode()) == c for
// every cursor with a non-empty ID.
func Decode(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	millis, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return Cursor{}, ErrMalformed
	}

	ts, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: bad timestamp", ErrMalformed)
	}

	return Cursor{Timestamp: ts, ID: id}, nil
}
