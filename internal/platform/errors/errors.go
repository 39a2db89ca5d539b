package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidMonster    = errors.New("unknown monster")
	ErrMonstersNotLoaded = errors.New("monster catalog not loaded")
	ErrNoActiveSession   = errors.New("no active session")
	ErrNoOutcome         = errors.New("no session outcome")
)
