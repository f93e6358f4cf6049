package errcat

import (
	"fmt"
	"strings"
)

// Kind tags a Failure with its transport class. The catalog never maps a kind
// to a wire status itself; that is the caller's job.
type Kind uint8

const (
	kindUnset Kind = iota
	KindBadRequest
	KindNotFound
	KindInternalServer
	KindUnauthorized
	kindEnd
)

var kindNames = [...]string{
	KindBadRequest:     "bad_request",
	KindNotFound:       "not_found",
	KindInternalServer: "internal_server",
	KindUnauthorized:   "unauthorized",
}

// Kinds returns every defined kind.
func Kinds() []Kind {
	return []Kind{KindBadRequest, KindNotFound, KindInternalServer, KindUnauthorized}
}

// Defined reports whether k is one of the declared kinds.
func (k Kind) Defined() bool { return k > kindUnset && k < kindEnd }

func (k Kind) String() string {
	if k.Defined() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes k as its wire name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Defined() {
		return nil, fmt.Errorf("errcat: cannot encode %s", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind wire name.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind wire name ("bad_request", "not_found", …).
// Matching uses the same case folding as ParseKey and ignores surrounding
// whitespace.
func ParseKind(name string) (Kind, error) {
	n := fold(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if kindNames[k] == n {
			return k, nil
		}
	}
	return kindUnset, fmt.Errorf("errcat: unknown kind %q", name)
}
