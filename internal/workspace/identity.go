package workspace

import (
	cryptorand "crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const idPrefix = "ws-"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(cryptorand.Reader, 0)
)

// NewID mints a workspace identifier. Identifiers are never reused.
func NewID() string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return idPrefix + strings.ToLower(id.String())
}

// Identity owns the identifier that correlates this client with the
// report state the backend keeps for it.
type Identity struct {
	id   string
	mint func() string
}

// NewIdentity mints a fresh identifier.
func NewIdentity() *Identity {
	return newIdentity(NewID)
}

func newIdentity(mint func() string) *Identity {
	return &Identity{id: mint(), mint: mint}
}

func (i *Identity) ID() string {
	return i.id
}

// Rotate replaces the identifier and returns the one it replaced, which the
// caller should ask the backend to discard.
func (i *Identity) Rotate() string {
	previous := i.id
	i.id = i.mint()
	return previous
}
