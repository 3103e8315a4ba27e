package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes tournament errors.
type ErrorCode string

const (
	// CodeNotFound indicates an unknown item id was passed to a catalog mutation.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeLedgerCorrupt indicates unreadable or inconsistent persisted state.
	CodeLedgerCorrupt ErrorCode = "LEDGER_CORRUPT"

	// CodeEmptyCatalog indicates ranking was requested on an empty catalog.
	CodeEmptyCatalog ErrorCode = "EMPTY_CATALOG"

	// CodeStalePairing indicates a pairing whose participants were already
	// eliminated or already recorded in the round.
	CodeStalePairing ErrorCode = "STALE_PAIRING"

	// CodeTournamentStarted indicates catalog population after the first
	// ledger record was written.
	CodeTournamentStarted ErrorCode = "TOURNAMENT_STARTED"
)

// Sentinel errors for errors.Is matching. Every *Error matches the sentinel
// of its code.
var (
	ErrNotFound          = errors.New("item not found")
	ErrLedgerCorrupt     = errors.New("ledger corrupt")
	ErrEmptyCatalog      = errors.New("empty catalog")
	ErrStalePairing      = errors.New("stale pairing")
	ErrTournamentStarted = errors.New("tournament already started")
)

var sentinels = map[ErrorCode]error{
	CodeNotFound:          ErrNotFound,
	CodeLedgerCorrupt:     ErrLedgerCorrupt,
	CodeEmptyCatalog:      ErrEmptyCatalog,
	CodeStalePairing:      ErrStalePairing,
	CodeTournamentStarted: ErrTournamentStarted,
}

// Error is a tournament error with structured fields for diagnostics.
//
// All codes except the render failures folded into Decision are fatal: the
// control loop stops and surfaces them, nothing is retried.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ItemID identifies the affected item, if any.
	ItemID ItemID

	// Round identifies the affected round, if any.
	Round int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ItemID != NoItem {
		msg += fmt.Sprintf(" (item=%d)", e.ItemID)
	}
	if e.Round != 0 {
		msg += fmt.Sprintf(" (round=%d)", e.Round)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

// NotFound creates an error for an unknown item id.
func NotFound(id ItemID) *Error {
	return &Error{Code: CodeNotFound, Message: "unknown item id", ItemID: id}
}

// LedgerCorrupt creates an error for inconsistent persisted state.
func LedgerCorrupt(round int, format string, args ...any) *Error {
	return &Error{Code: CodeLedgerCorrupt, Message: fmt.Sprintf(format, args...), Round: round}
}

// EmptyCatalog creates an error for ranking an empty catalog.
func EmptyCatalog() *Error {
	return &Error{Code: CodeEmptyCatalog, Message: "catalog has no items"}
}

// StalePairing creates an error for a pairing that can no longer be resolved.
func StalePairing(round int, id ItemID, reason string) *Error {
	return &Error{Code: CodeStalePairing, Message: reason, ItemID: id, Round: round}
}

// TournamentStarted creates an error for population after the first match.
func TournamentStarted() *Error {
	return &Error{Code: CodeTournamentStarted, Message: "catalog is frozen once the ledger has records"}
}

// IsNotFound returns true if the error is a NOT_FOUND error.
// Uses errors.Is to handle wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLedgerCorrupt returns true if the error is a LEDGER_CORRUPT error.
func IsLedgerCorrupt(err error) bool {
	return errors.Is(err, ErrLedgerCorrupt)
}

// IsEmptyCatalog returns true if the error is an EMPTY_CATALOG error.
func IsEmptyCatalog(err error) bool {
	return errors.Is(err, ErrEmptyCatalog)
}

// IsStalePairing returns true if the error is a STALE_PAIRING error.
func IsStalePairing(err error) bool {
	return errors.Is(err, ErrStalePairing)
}

// CodeOf extracts the error code, or "" if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
