// Package errcat is the application's error catalog: a fixed, read-only table
// that maps symbolic error keys to a numeric code and a human-readable
// message, plus constructors that wrap an entry into a typed Failure.
//
// The catalog only answers "what went wrong". How a Failure is surfaced
// (HTTP status line, log level, exit code) is decided by the caller from the
// Failure's Kind, so the same keys can be reused by non-HTTP callers.
//
// Code ranges:
//
//	1000–1099  user domain
//	1100–1199  general / request
//	9000       meta-error, reserved for catalog lookup failures
//
// Every lookup either succeeds or returns the meta-error (ErrorWhileError,
// 9000); no path produces an undefined failure.
package errcat

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Key identifies a category of application error. The set of keys is closed;
// the zero value is not a key.
type Key uint8

const (
	keyUnset Key = iota

	// User errors (1000s).
	UserExists
	UserNotFound
	AlreadyLoggedIn

	// General errors (1100s).
	ValidationFailed
	Forbidden
	CsrfTokenMismatch
	SessionExpired

	// ErrorWhileError is the meta-error returned when a lookup misses.
	ErrorWhileError

	keyEnd
)

// keyNames holds the wire name of every defined key.
var keyNames = [...]string{
	UserExists:        "userExists",
	UserNotFound:      "userNotFound",
	AlreadyLoggedIn:   "alreadyLoggedIn",
	ValidationFailed:  "validationFailed",
	Forbidden:         "forbidden",
	CsrfTokenMismatch: "csrfTokenMismatch",
	SessionExpired:    "sessionExpired",
	ErrorWhileError:   "errorWhileError",
}

// Keys returns every defined key in declaration order.
func Keys() []Key {
	out := make([]Key, 0, keyEnd-1)
	for k := keyUnset + 1; k < keyEnd; k++ {
		out = append(out, k)
	}
	return out
}

// Defined reports whether k belongs to the closed key set.
func (k Key) Defined() bool { return k > keyUnset && k < keyEnd }

// String returns the wire name of k, e.g. "userNotFound". Values outside the
// key set render as "Key(n)".
func (k Key) String() string {
	if k.Defined() {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// MarshalText encodes k as its wire name. Undefined keys cannot be encoded.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Defined() {
		return nil, meta()
	}
	return []byte(keyNames[k]), nil
}

// UnmarshalText decodes a wire name. Unknown names yield the meta-error and
// leave k untouched.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// fold normalizes external key spellings so "USERNOTFOUND" and
// "userNotFound" resolve to the same key.
func fold(s string) string { return cases.Fold().String(s) }
