package lib

import (
	"errors"
)

// Backend errors
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("backend unavailable")
)

// Catalog errors
var (
	ErrDeleteNotArmed = errors.New("delete was not requested for this product")
)

// Draft errors
var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrDraftBusy        = errors.New("draft is being submitted")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrUnknownField     = errors.New("unknown field")
	ErrUnknownAction    = errors.New("unknown action")
	ErrUnsupportedImage = errors.New("unsupported image")
)

// Order errors
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTransitionAborted = errors.New("status transition aborted: no comment supplied")
)
