package profile

import "errors"

// Sentinel errors for store failures, matched with errors.Is.
var (
	ErrCorruptStore = errors.New("profile store is corrupt")
	ErrDuplicateID  = errors.New("profile id already exists")
	ErrNotFound     = errors.New("profile not found")
	ErrWriteDenied  = errors.New("write permission denied")
	ErrDiskFull     = errors.New("disk full")
)
