package scrumservice

import "errors"

var (
	// ErrScrumAlreadyOpened is the failure result of an open that lost to an
	// existing scrum for the same date.
	ErrScrumAlreadyOpened = errors.New("scrum already opened for date")
	// ErrScrumAlreadyClosed is the failure result of closing a closed scrum.
	ErrScrumAlreadyClosed = errors.New("scrum already closed")
)
