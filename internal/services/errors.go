package services

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindCredential ErrorKind = "credential"
	KindNetwork    ErrorKind = "network"
	KindParse      ErrorKind = "parse"
	KindProvider   ErrorKind = "provider"
	KindBusy       ErrorKind = "busy"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its own kind
// and, through Unwrap, the kinds of the causes it wraps.
var (
	ErrValidation = errors.New("invalid request")
	ErrCredential = errors.New("credential missing or rejected")
	ErrNetwork    = errors.New("network failure")
	ErrParse      = errors.New("response did not contain the expected payload")
	ErrProvider   = errors.New("provider failure")
	ErrBusy       = errors.New("request already in progress")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation: ErrValidation,
	KindCredential: ErrCredential,
	KindNetwork:    ErrNetwork,
	KindParse:      ErrParse,
	KindProvider:   ErrProvider,
	KindBusy:       ErrBusy,
}

// Error is a classified orchestration failure.
type Error struct {
	Kind    ErrorKind
	Op      string
	Model   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.Model != "" {
		msg = fmt.Sprintf("%s [%s]: %s", e.Op, e.Model, msg)
	} else if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// KindOf reports the kind of the outermost classified error in err's chain.
// Unclassified errors are reported as provider failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProvider
}

// NeedsCredential reports whether err was caused by a missing or rejected
// credential anywhere in its chain, which means the caller should re-enter
// its settings.
func NeedsCredential(err error) bool {
	return errors.Is(err, ErrCredential)
}

func validationError(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func parseError(op string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

// classify labels a single model failure. Errors that are already
// classified keep their kind; transport errors are looked up by category.
func classify(op, model string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Model == "" {
			copied := *e
			copied.Op, copied.Model = op, model
			return &copied
		}
		return e
	}

	kind := KindProvider
	var te *TransportError
	switch {
	case errors.As(err, &te):
		kind = te.Category.Kind()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = KindNetwork
	default:
		var ne net.Error
		if errors.As(err, &ne) {
			kind = KindNetwork
		}
	}

	return &Error{Kind: kind, Op: op, Model: model, Err: err}
}
