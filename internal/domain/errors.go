package domain

import "errors"

var (
	// ErrNotFound will be returned if the requested record is not in the registry
	ErrNotFound = errors.New("requested record was not found")
	// ErrNotOwner will be returned if a delete is requested by someone other than the record's owner
	ErrNotOwner = errors.New("record is owned by another user")
	// ErrAlreadyLooking will be returned if the owner already has an active record in the same registry
	ErrAlreadyLooking = errors.New("user already has an active record")
	// ErrBadInterval will be returned for a lead-time label that cannot be parsed
	ErrBadInterval = errors.New("unsupported interval label")
	// ErrUnknownPollTag will be returned for a voting thread tag with no classification rule
	ErrUnknownPollTag = errors.New("unsupported voting thread tag")
)
