package buffer

import (
	"sync"

	"oddsengine/internal/market"
)

const (
	DefaultGlobalCapacity = 1000
	DefaultMarketCapacity = 100
)

// OddsBuffer is the bounded rolling history of odds snapshots. It is the only
// mutable shared structure in the engine: one writer per inbound feed,
// detectors read concurrently per tick. Overflow evicts the oldest entry and
// never fails.
type OddsBuffer struct {
	mu sync.RWMutex

	global         []market.OddsSnapshot
	globalCapacity int

	byMarket       map[string][]market.OddsSnapshot
	marketCapacity int
}

func New(globalCapacity, marketCapacity int) *OddsBuffer {
	if globalCapacity <= 0 {
		globalCapacity = DefaultGlobalCapacity
	}
	if marketCapacity <= 0 {
		marketCapacity = DefaultMarketCapacity
	}
	return &OddsBuffer{
		global:         make([]market.OddsSnapshot, 0, globalCapacity),
		globalCapacity: globalCapacity,
		byMarket:       map[string][]market.OddsSnapshot{},
		marketCapacity: marketCapacity,
	}
}

// Add appends a snapshot to the global ring and the per-market history.
func (b *OddsBuffer) Add(snap market.OddsSnapshot) {
	if !snap.Valid() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.global = append(b.global, snap)
	if len(b.global) > b.globalCapacity {
		b.global = b.global[len(b.global)-b.globalCapacity:]
	}

	hist := append(b.byMarket[snap.MarketID], snap)
	if len(hist) > b.marketCapacity {
		hist = hist[len(hist)-b.marketCapacity:]
	}
	b.byMarket[snap.MarketID] = hist
}

// History returns the retained snapshots for a market, oldest first. An
// unknown market (or one whose entries have all aged out) yields an empty
// slice; the two cases are indistinguishable by design.
func (b *OddsBuffer) History(marketID string) []market.OddsSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hist := b.byMarket[marketID]
	if len(hist) == 0 {
		return nil
	}
	out := make([]market.OddsSnapshot, len(hist))
	copy(out, hist)
	return out
}

// Latest returns the most recent snapshot for a market.
func (b *OddsBuffer) Latest(marketID string) (market.OddsSnapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hist := b.byMarket[marketID]
	if len(hist) == 0 {
		return market.OddsSnapshot{}, false
	}
	return hist[len(hist)-1], true
}

// Markets returns the ids of all markets with retained history.
func (b *OddsBuffer) Markets() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.byMarket))
	for id, hist := range b.byMarket {
		if len(hist) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of snapshots in the global ring.
func (b *OddsBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.global)
}
