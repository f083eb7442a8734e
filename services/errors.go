package services

import (
	"errors"

	"clan-portal/store"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrClosed            = errors.New("clan is not recruiting")
	ErrNotOpen           = errors.New("tournament registration is closed")
	ErrFull              = errors.New("tournament is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrEmptyClan         = errors.New("clan has no members")
	ErrAlreadyMember     = errors.New("already a member of this clan")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrNotFound    = store.ErrNotFound
	ErrPersistence = store.ErrPersistence
	ErrDuplicateID = store.ErrDuplicateID
)
