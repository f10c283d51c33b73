package app

import "errors"

var (
	ErrSessionNotFound    = errors.New("session does not exist")
	ErrControllerBound    = errors.New("session already has a controller")
	ErrCodeSpaceExhausted = errors.New("no free session code")
	ErrNotDisplay         = errors.New("connection is not the session display")
	ErrNotPermutation     = errors.New("new queue is not a reordering of the current queue")
)
