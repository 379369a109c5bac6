package core

import "errors"

var (
	// ErrDuplicateDomain is returned on create when the normalized name
	// is already tracked.
	ErrDuplicateDomain = errors.New("domain already exists")

	ErrDomainNotFound       = errors.New("domain not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
