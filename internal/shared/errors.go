package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// Playback errors
	ErrDeviceNotFound = fmt.Errorf("playback device not found")
	ErrNotReady       = fmt.Errorf("session not ready")
	ErrInvalidTarget  = fmt.Errorf("invalid playback target")
	ErrNoSession      = fmt.Errorf("no account session available")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrTimeout    = fmt.Errorf("operation timed out")

	// Tag mapping errors
	ErrUnknownTag = fmt.Errorf("tag not registered")
	ErrTagExists  = fmt.Errorf("tag already registered")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
