package unreflect

import "github.com/goccy/unreflect/internal/errs"

// Error is returned by every failing operation. Use errors.Is with one of
// the Err* kinds, or errors.As to inspect the member and the cause.
type Error = errs.Error

var (
	ErrLookup        = errs.ErrLookup
	ErrAccess        = errs.ErrAccess
	ErrArgumentCount = errs.ErrArgumentCount
	ErrTypeMismatch  = errs.ErrTypeMismatch
	ErrInvocation    = errs.ErrInvocation
	ErrSynthesis     = errs.ErrSynthesis
)
