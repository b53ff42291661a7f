package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindLookup Kind = iota
	KindAccess
	KindArgumentCount
	KindTypeMismatch
	KindInvocation
	KindSynthesis
)

var (
	ErrLookup        = errors.New("lookup failure")
	ErrAccess        = errors.New("access violation")
	ErrArgumentCount = errors.New("argument count mismatch")
	ErrTypeMismatch  = errors.New("type mismatch")
	ErrInvocation    = errors.New("invocation failure")
	ErrSynthesis     = errors.New("accessor synthesis failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindLookup:
		return ErrLookup
	case KindAccess:
		return ErrAccess
	case KindArgumentCount:
		return ErrArgumentCount
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindInvocation:
		return ErrInvocation
	case KindSynthesis:
		return ErrSynthesis
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single error type returned by every descriptor and accessor.
// errors.Is matches both the kind sentinel and the wrapped cause.
type Error struct {
	Kind   Kind
	Member string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Member != "" {
		msg = fmt.Sprintf("%s for: %s", msg, e.Member)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind Kind, member string, err error, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Member: member, Msg: msg, Err: err}
}

func Lookup(member, format string, args ...any) error {
	return newError(KindLookup, member, nil, format, args...)
}

func Access(member, format string, args ...any) error {
	return newError(KindAccess, member, nil, format, args...)
}

func ArgumentCount(member string, want, got int) error {
	return newError(KindArgumentCount, member, nil, "want %d, got %d", want, got)
}

func TypeMismatch(member, format string, args ...any) error {
	return newError(KindTypeMismatch, member, nil, format, args...)
}

func Invocation(member string, cause error) error {
	return newError(KindInvocation, member, cause, "")
}

func Synthesis(member string, cause error) error {
	return newError(KindSynthesis, member, cause, "")
}

// WithMember fills in the member name of err if it is an *Error without one.
func WithMember(err error, member string) error {
	var e *Error
	if !errors.As(err, &e) || e.Member != "" {
		return err
	}
	cp := *e
	cp.Member = member
	return &cp
}

// Panic converts a recovered panic value into an error.
func Panic(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
