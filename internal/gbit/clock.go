package gbit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// TokenGenerator mints opaque snapshot tokens. A token is a per-commit
// version marker only; it carries no integrity guarantee.
type TokenGenerator interface {
	New() string
}

// UUIDTokenGenerator produces "gb_"-prefixed random tokens.
type UUIDTokenGenerator struct{}

func (UUIDTokenGenerator) New() string {
	return "gb_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
