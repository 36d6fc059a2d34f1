package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Session maps a browser session cookie to the identifier last used with it.
type Session struct {
	ID        string
	UserName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
