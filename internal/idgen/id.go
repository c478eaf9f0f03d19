// Package idgen mints opaque runtime identifiers and signs/verifies
// reconnect tokens. It is the Go port of spec §4.1 "Identifier Service".
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
)

// idPattern matches the case-insensitive opaque identifier grammar shared
// by LobbyId, GameId, PlayerId and SessionId.
var idPattern = regexp.MustCompile(`^[a-z0-9]+([-_][a-z0-9]+)*$`)

// ValidID reports whether s matches the opaque identifier grammar.
func ValidID(s string) bool {
	if s == "" {
		return false
	}
	return idPattern.MatchString(normalizeCase(s))
}

func normalizeCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Factory mints identifiers for a given kind ("lobby", "game", "player",
// "session").
type Factory interface {
	New(kind string) string
}

// Sequential is a deterministic incremental Factory: "prefix-kind-N".
// Used in tests and offline replay where reproducible ids matter.
type Sequential struct {
	Prefix string

	mu      sync.Mutex
	counter map[string]*atomic.Int64
}

// NewSequential constructs a Sequential factory with the given prefix.
func NewSequential(prefix string) *Sequential {
	return &Sequential{Prefix: prefix, counter: make(map[string]*atomic.Int64)}
}

// New returns the next deterministic id for kind.
func (s *Sequential) New(kind string) string {
	s.mu.Lock()
	c, ok := s.counter[kind]
	if !ok {
		c = &atomic.Int64{}
		s.counter[kind] = c
	}
	s.mu.Unlock()
	n := c.Add(1)
	return fmt.Sprintf("%s-%s-%d", s.Prefix, kind, n)
}

// Secure mints ids with 96-bit cryptographically random hex suffixes.
type Secure struct{}

// New returns "kind-<24 hex chars>".
func (Secure) New(kind string) string {
	buf := make([]byte, 12) // 96 bits
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read only fails on catastrophic OS entropy failure;
		// an identifier with no randomness would violate uniqueness, so
		// this is an invariant break, not a recoverable error.
		panic(fmt.Sprintf("idgen: crypto/rand failure: %v", err))
	}
	return fmt.Sprintf("%s-%s", kind, hex.EncodeToString(buf))
}
