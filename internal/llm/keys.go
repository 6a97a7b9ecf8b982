package llm

import (
	"errors"
	"sync/atomic"
)

// KeyPool is a process-wide round-robin pool of API credentials. Concurrent
// runs share one pool; interleaved rotation only affects load spread, never
// correctness, so a single atomic cursor is enough.
type KeyPool struct {
	keys []string
	idx  atomic.Uint64
}

func NewKeyPool(keys []string) (*KeyPool, error) {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("llm: key pool needs at least one credential")
	}
	return &KeyPool{keys: cleaned}, nil
}

func (p *KeyPool) Size() int { return len(p.keys) }

// Index is the current cursor position, already reduced mod pool size.
func (p *KeyPool) Index() int {
	return int(p.idx.Load() % uint64(len(p.keys)))
}

// Key returns the credential at the current cursor.
func (p *KeyPool) Key() string { return p.keys[p.Index()] }

// Advance moves the cursor to the next credential, wrapping around, and
// returns it.
func (p *KeyPool) Advance() string {
	n := p.idx.Add(1)
	return p.keys[int(n%uint64(len(p.keys)))]
}

// Keys returns a copy of the pool contents, in rotation order.
func (p *KeyPool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}
