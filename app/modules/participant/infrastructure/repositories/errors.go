package participantdb

import "errors"

var (
	// ErrNotFound indicates the requested participant does not exist.
	ErrNotFound = errors.New("participant not found")

	// ErrIdentityTaken indicates the external id is already linked.
	ErrIdentityTaken = errors.New("external id already linked to a participant")
)
