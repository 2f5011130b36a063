package message

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
)

// XIDGenerator allocates transaction ids for outgoing requests.
// It is safe for concurrent use.
type XIDGenerator struct {
	value uint32
	mu    sync.Mutex
}

// NewXIDGenerator creates a generator seeded with a random nonzero
// value, so ids from independent connections rarely collide in traces.
func NewXIDGenerator() *XIDGenerator {
	return &XIDGenerator{
		value: randomXIDInit(),
	}
}

// NewXIDGeneratorWithValue creates a generator whose next id is the
// given value. Used for testing.
func NewXIDGeneratorWithValue(initial uint32) *XIDGenerator {
	return &XIDGenerator{
		value: initial,
	}
}

// Next returns the next transaction id and advances the generator.
// Zero is skipped on wrap; it stays free for messages that are not
// request/reply correlated.
func (g *XIDGenerator) Next() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.value == 0 {
		g.value = 1
	}

	xid := g.value
	g.value++
	return xid
}

// Current returns the id Next would hand out, without consuming it.
func (g *XIDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.value == 0 {
		return 1
	}
	return g.value
}

// randomXIDInit generates a random nonzero initial id.
func randomXIDInit() uint32 {
	var buf [4]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// Fallback to 1 if random fails (should never happen)
		return 1
	}

	value := binary.BigEndian.Uint32(buf[:])
	if value == 0 {
		value = 1
	}

	return value
}
