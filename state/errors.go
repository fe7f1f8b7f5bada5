package state

import "errors"

// Sentinel errors for state storage.
var (
	ErrNotFound         = errors.New("state entry not found")
	ErrCorrupt          = errors.New("state entry is unreadable")
	ErrUnknownStateType = errors.New("unknown state type")
	ErrLoadFailed       = errors.New("load failed")
	ErrSaveFailed       = errors.New("save failed")
	ErrInvalidConfig    = errors.New("invalid state store configuration")
)
