package errcat

import (
	"errors"
	"fmt"
)

// ErrUnknownKey matches (via errors.Is) the meta-error returned by every
// lookup miss.
var ErrUnknownKey = errors.New("errcat: unknown error key")

// Failure is a catalog entry tagged with a transport class. It is an error
// value; callers pick a wire status from Kind and serialize Code and Message.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Key     Key    `json:"key"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s (%d): %s", f.Key, f.Code, f.Message)
}

// Is reports ErrUnknownKey for the meta-error, and matches another *Failure
// with the same code and kind.
func (f *Failure) Is(target error) bool {
	if target == ErrUnknownKey {
		return f.Key == ErrorWhileError
	}
	var t *Failure
	if errors.As(target, &t) {
		return t.Code == f.Code && t.Kind == f.Kind
	}
	return false
}

// IsMeta reports whether f is the catalog's own meta-error.
func (f *Failure) IsMeta() bool { return f.Key == ErrorWhileError }

// meta builds the meta-error. It does not consult a catalog so it stays
// available even while the default catalog is being built.
func meta() *Failure {
	return &Failure{
		Kind:    KindInternalServer,
		Key:     ErrorWhileError,
		Code:    metaCode,
		Message: metaMessage,
	}
}

// Meta returns the meta-error value.
func Meta() *Failure { return meta() }

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
