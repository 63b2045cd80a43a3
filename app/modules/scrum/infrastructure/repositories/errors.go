package scrumdb

import "errors"

var (
	ErrNotFound = errors.New("scrum not found")
	// ErrDuplicateScrum is returned when a scrum already exists for the date or message.
	ErrDuplicateScrum = errors.New("scrum already exists")
	// ErrAlreadyClosed is returned by MarkClosed when the scrum is no longer open.
	ErrAlreadyClosed = errors.New("scrum already closed")
)
