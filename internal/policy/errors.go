package policy

import (
	"errors"
	"fmt"
)

// DenialKind names the rule a request violated.
type DenialKind string

// Denial kinds, one per gate check.
const (
	ActionNotAllowed     DenialKind = "ActionNotAllowed"
	ForbiddenKind        DenialKind = "ForbiddenKind"
	MissingScope         DenialKind = "MissingScope"
	ApprovalRequired     DenialKind = "ApprovalRequired"
	BulkOperationBlocked DenialKind = "BulkOperationBlocked"
	InvalidPatchIntent   DenialKind = "InvalidPatchIntent"
	GateError            DenialKind = "GateError"
)

// Denial is the error returned when the gate refuses a request.
type Denial struct {
	Kind    DenialKind
	Message string
}

// Error renders the caller-facing denial string.
func (d *Denial) Error() string {
	return fmt.Sprintf("DENIED: %s: %s", d.Kind, d.Message)
}

// Is matches any denial of the same kind when target carries no message, so
// errors.Is(err, ErrForbiddenKind) works regardless of the explanation text.
func (d *Denial) Is(target error) bool {
	t, ok := target.(*Denial)
	if !ok {
		return false
	}
	if t.Kind != d.Kind {
		return false
	}
	return t.Message == "" || t.Message == d.Message
}

// Sentinel denials for use with errors.Is.
var (
	ErrActionNotAllowed     = &Denial{Kind: ActionNotAllowed}
	ErrForbiddenKind        = &Denial{Kind: ForbiddenKind}
	ErrMissingScope         = &Denial{Kind: MissingScope}
	ErrApprovalRequired     = &Denial{Kind: ApprovalRequired}
	ErrBulkOperationBlocked = &Denial{Kind: BulkOperationBlocked}
	ErrInvalidPatchIntent   = &Denial{Kind: InvalidPatchIntent}
	ErrGateError            = &Denial{Kind: GateError}
)

// AsDenial extracts a *Denial from err.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsDenial reports whether err is a gate denial.
func IsDenial(err error) bool {
	_, ok := AsDenial(err)
	return ok
}

func deny(kind DenialKind, format string, args ...interface{}) *Denial {
	return &Denial{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
