package errcat

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Entry is the immutable (code, message) pair behind a Key.
type Entry struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Record pairs a Key with its Entry. Listings return records sorted by code.
type Record struct {
	Key Key `json:"key"`
	Entry
}

const (
	metaCode    = 9000
	metaMessage = "Error occurred while reporting error"
)

// table is the source of truth. It is read once by build and never touched
// again.
var table = map[Key]Entry{
	// User errors
	UserExists:      {Code: 1000, Message: "User already registered"},
	UserNotFound:    {Code: 1001, Message: "User not found"},
	AlreadyLoggedIn: {Code: 1004, Message: "This action cannot be performed by logged in user"},

	// General errors
	ValidationFailed:  {Code: 1100, Message: "Validation Failed. Please check request."},
	Forbidden:         {Code: 1101, Message: "User not authorized to make this call"},
	CsrfTokenMismatch: {Code: 1102, Message: "Invalid CSRF Token"},
	SessionExpired:    {Code: 1103, Message: "Session Expired. Login again."},

	// Should never be seen by a client unless the catalog itself is misused.
	ErrorWhileError: {Code: metaCode, Message: metaMessage},
}

// Catalog is a read-only view over the error table. A *Catalog is safe for
// concurrent use by any number of goroutines.
type Catalog struct {
	entries     map[Key]Entry
	names       map[string]Key
	codes       map[int]Key
	records     []Record
	fingerprint string
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := build(table)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the process-wide catalog, building it on first use.
func Default() *Catalog { return loadDefault() }

// build validates t and indexes it. It fails when a defined key is missing,
// an undefined key is present, a code is non-positive or repeated, a message
// is empty, or the meta entry differs from its reserved value.
func build(t map[Key]Entry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[Key]Entry, len(t)),
		names:   make(map[string]Key, len(t)),
		codes:   make(map[int]Key, len(t)),
	}
	for k, e := range t {
		if !k.Defined() {
			return nil, fmt.Errorf("errcat: entry for undefined %s", k)
		}
		if e.Code <= 0 {
			return nil, fmt.Errorf("errcat: %s has non-positive code %d", k, e.Code)
		}
		if e.Message == "" {
			return nil, fmt.Errorf("errcat: %s has an empty message", k)
		}
		if prev, dup := c.codes[e.Code]; dup {
			return nil, fmt.Errorf("errcat: code %d shared by %s and %s", e.Code, prev, k)
		}
		c.entries[k] = e
		c.codes[e.Code] = k
		c.names[fold(k.String())] = k
	}
	for _, k := range Keys() {
		if _, ok := c.entries[k]; !ok {
			return nil, fmt.Errorf("errcat: no entry for %s", k)
		}
	}
	if m := c.entries[ErrorWhileError]; m.Code != metaCode || m.Message != metaMessage {
		return nil, fmt.Errorf("errcat: meta entry altered: %+v", m)
	}

	c.records = make([]Record, 0, len(c.entries))
	for k, e := range c.entries {
		c.records = append(c.records, Record{Key: k, Entry: e})
	}
	sort.Slice(c.records, func(i, j int) bool { return c.records[i].Code < c.records[j].Code })

	h := xxhash.New()
	for _, r := range c.records {
		_, _ = h.WriteString(r.Key.String() + "\x00" + strconv.Itoa(r.Code) + "\x00" + r.Message + "\n")
	}
	c.fingerprint = strconv.FormatUint(h.Sum64(), 16)
	return c, nil
}

// Lookup returns the entry for k.
func (c *Catalog) Lookup(k Key) (Entry, bool) {
	e, ok := c.entries[k]
	return e, ok
}

// CodeFor returns the numeric code for k, or the meta-error when k is not in
// the catalog.
func (c *Catalog) CodeFor(k Key) (int, error) {
	e, ok := c.entries[k]
	if !ok {
		return 0, meta()
	}
	return e.Code, nil
}

// MessageFor returns the message for k, or the meta-error when k is not in the
// catalog.
func (c *Catalog) MessageFor(k Key) (string, error) {
	e, ok := c.entries[k]
	if !ok {
		return "", meta()
	}
	return e.Message, nil
}

// ByCode resolves a numeric code back to its key.
func (c *Catalog) ByCode(code int) (Key, bool) {
	k, ok := c.codes[code]
	return k, ok
}

// ParseKey resolves an external key name such as "userNotFound". Matching is
// case-insensitive. Unknown names return the meta-error.
func (c *Catalog) ParseKey(name string) (Key, error) {
	if k, ok := c.names[fold(name)]; ok {
		return k, nil
	}
	return keyUnset, meta()
}

// Entries returns every record sorted by code. The slice is a copy.
func (c *Catalog) Entries() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Fingerprint is a stable hash of the catalog contents, suitable for ETags.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// Raise wraps the entry for key into a Failure tagged with kind. An unknown
// key or kind yields the meta-error.
func (c *Catalog) Raise(kind Kind, key Key) *Failure {
	if !kind.Defined() {
		return meta()
	}
	e, ok := c.entries[key]
	if !ok {
		return meta()
	}
	return &Failure{Kind: kind, Key: key, Code: e.Code, Message: e.Message}
}

// AsBadRequest is Raise(KindBadRequest, key).
func (c *Catalog) AsBadRequest(key Key) *Failure { return c.Raise(KindBadRequest, key) }

// AsNotFound is Raise(KindNotFound, key).
func (c *Catalog) AsNotFound(key Key) *Failure { return c.Raise(KindNotFound, key) }

// AsInternalServerError is Raise(KindInternalServer, key).
func (c *Catalog) AsInternalServerError(key Key) *Failure { return c.Raise(KindInternalServer, key) }

// AsAuthorizationError is Raise(KindUnauthorized, key).
func (c *Catalog) AsAuthorizationError(key Key) *Failure { return c.Raise(KindUnauthorized, key) }

// CodeFor returns the numeric code of k in the Default catalog.
func CodeFor(k Key) (int, error) { return Default().CodeFor(k) }

// MessageFor returns the message of k in the Default catalog.
func MessageFor(k Key) (string, error) { return Default().MessageFor(k) }

// ParseKey resolves a key name, case-insensitively, in the Default catalog.
func ParseKey(name string) (Key, error) { return Default().ParseKey(name) }

// ByCode is the reverse lookup of CodeFor on the Default catalog.
func ByCode(code int) (Key, bool) { return Default().ByCode(code) }

// Entries lists the Default catalog ordered by code.
func Entries() []Record { return Default().Entries() }

// Raise builds the failure of the given kind for key from the Default
// catalog. An unknown kind or key yields the meta-error.
func Raise(kind Kind, key Key) *Failure { return Default().Raise(kind, key) }

// AsBadRequest is Raise(KindBadRequest, key).
func AsBadRequest(key Key) *Failure { return Default().AsBadRequest(key) }

// AsNotFound is Raise(KindNotFound, key).
func AsNotFound(key Key) *Failure { return Default().AsNotFound(key) }

// AsInternalServerError is Raise(KindInternalServer, key).
func AsInternalServerError(key Key) *Failure { return Default().AsInternalServerError(key) }

// AsAuthorizationError is Raise(KindUnauthorized, key).
func AsAuthorizationError(key Key) *Failure { return Default().AsAuthorizationError(key) }
