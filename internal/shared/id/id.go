// Package id provides ULID-based identifiers for popups and their overrides.
//
// Identifiers are prefixed with their kind so they read well in logs and in
// cross-frame messages:
//   - popup_01J...: a popup hosted by a PopupFactory
//   - ovr_01J...:   a visibility override token
//
// ULIDs sort by creation time, so a listing of popups is naturally ordered
// from oldest to newest.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// PopupID identifies a popup across frames
type PopupID string

// OverrideToken identifies a visibility override on a popup
type OverrideToken string

const (
	PopupPrefix    = "popup"
	OverridePrefix = "ovr"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by a monotonic reader over crypto/rand,
// so ids minted within the same millisecond still sort in creation order.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewPopupID generates a new popup ID
func NewPopupID() PopupID {
	return PopupID(Default().GenerateWithPrefix(PopupPrefix))
}

// NewOverrideToken generates a new visibility override token
func NewOverrideToken() OverrideToken {
	return OverrideToken(Default().GenerateWithPrefix(OverridePrefix))
}

func (id PopupID) String() string      { return string(id) }
func (t OverrideToken) String() string { return string(t) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// IsPrefixed reports whether s has the form prefix_ULID.
func IsPrefixed(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	return ok && IsValid(rest)
}

// Timestamp extracts the creation time from a plain or prefixed ULID
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
