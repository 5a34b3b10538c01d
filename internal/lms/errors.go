package lms

import "errors"

// Application-level error kinds (spec.md §7).
var (
	ErrAuth       = errors.New("lms: missing or invalid credentials")
	ErrExpired    = errors.New("lms: token expired")
	ErrPermission = errors.New("lms: permission denied")
	ErrNotFound   = errors.New("lms: not found")
	ErrConflict   = errors.New("lms: conflict")
)
