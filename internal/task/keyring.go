package task

import (
	"errors"
	"strings"
)

// ErrNoCredentials is returned when a job starts with no usable API keys.
var ErrNoCredentials = errors.New("credential list is empty")

// KeyRing cycles round-robin through a list of provider credentials.
// The cursor lives only in memory for one run: a resumed job always
// restarts rotation at the first credential.
type KeyRing struct {
	keys   []string
	cursor int
}

// NewKeyRing creates a key ring over the given credentials, dropping blank
// entries. Returns ErrNoCredentials if nothing usable remains.
func NewKeyRing(keys []string) (*KeyRing, error) {
	usable := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) != "" {
			usable = append(usable, k)
		}
	}
	if len(usable) == 0 {
		return nil, ErrNoCredentials
	}
	return &KeyRing{keys: usable}, nil
}

// Current returns the credential at the cursor position.
func (r *KeyRing) Current() string {
	return r.keys[r.cursor%len(r.keys)]
}

// Advance moves the cursor to the next credential. The cursor is never
// reduced modulo the list length, so it doubles as a rotation counter.
func (r *KeyRing) Advance() {
	r.cursor++
}

// Len returns the number of usable credentials.
func (r *KeyRing) Len() int {
	return len(r.keys)
}
