package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrNoAssets          = errors.New("run has no assets")
	ErrAlreadyStarted    = errors.New("run already started")
	ErrRunNotFinished    = errors.New("run has unprocessed assets")
	ErrInvalidTransition = errors.New("invalid asset state transition")
	ErrProviderFailure   = errors.New("provider failure")
)
