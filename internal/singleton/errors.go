package singleton

import "errors"

var (
	ErrLockAcquisitionTimeout = errors.New("timed out acquiring lock")
	ErrLockAlreadyAcquired    = errors.New("lock already acquired")
	ErrLockExpired            = errors.New("refreshing or releasing an expired lock")
)
