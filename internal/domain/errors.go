package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures and are used by stores and
// services to communicate domain-specific error conditions.
// -----------------------------------------------------------------------------

// Document errors
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyDocument    = errors.New("document text is empty or too short")
)

// Challenge errors
var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrInvalidChallenge  = errors.New("invalid challenge record")
	ErrNoTopicsSelected  = errors.New("no topics selected")
)

// Generation errors
var (
	ErrProviderUnavailable = errors.New("generation provider unavailable")
	ErrUnparseableResponse = errors.New("response could not be parsed")
)

// Attempt errors
var (
	ErrAttemptNotFound  = errors.New("attempt state not found")
	ErrAttemptsExceeded = errors.New("maximum attempts reached")
)

// Job errors
var (
	ErrJobNotFound    = errors.New("synthesis job not found")
	ErrBatchAllFailed = errors.New("no challenges could be generated")
)

// General errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")
)
