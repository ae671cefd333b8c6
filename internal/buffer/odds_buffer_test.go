package buffer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"oddsengine/internal/market"
)

func snap(marketID string, ts time.Time, ml float64) market.OddsSnapshot {
	return market.OddsSnapshot{
		MarketID:      marketID,
		Timestamp:     ts,
		MoneylineHome: ml,
		MoneylineAway: -ml,
		Book:          "testbook",
	}
}

func TestHistoryOrderedAndBounded(t *testing.T) {
	b := New(50, 10)
	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		b.Add(snap("m1", base.Add(time.Duration(i)*time.Second), float64(-110-i)))
	}
	hist := b.History("m1")
	if len(hist) != 10 {
		t.Fatalf("history len = %d, want 10", len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].Timestamp.Before(hist[i-1].Timestamp) {
			t.Fatalf("history out of order at %d", i)
		}
	}
	// Most recent last.
	if hist[len(hist)-1].MoneylineHome != -134 {
		t.Fatalf("latest moneyline = %v, want -134", hist[len(hist)-1].MoneylineHome)
	}
}

func TestRoundTripCountsMinNAndCapacity(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{3, 3},
		{100, 100},
		{250, 100},
	}
	for _, tt := range tests {
		b := New(1000, 100)
		base := time.Now().UTC()
		for i := 0; i < tt.n; i++ {
			b.Add(snap("m1", base.Add(time.Duration(i)*time.Second), -110))
		}
		if got := len(b.History("m1")); got != tt.want {
			t.Fatalf("n=%d: history len = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLatest(t *testing.T) {
	b := New(0, 0)
	if _, ok := b.Latest("missing"); ok {
		t.Fatalf("expected no latest for unknown market")
	}
	base := time.Now().UTC()
	b.Add(snap("m1", base, -110))
	b.Add(snap("m1", base.Add(time.Minute), -120))
	latest, ok := b.Latest("m1")
	if !ok {
		t.Fatalf("expected latest")
	}
	if latest.MoneylineHome != -120 {
		t.Fatalf("latest moneyline = %v, want -120", latest.MoneylineHome)
	}
}

func TestUnknownMarketEmpty(t *testing.T) {
	b := New(10, 10)
	if got := b.History("never-seen"); len(got) != 0 {
		t.Fatalf("unknown market history len = %d, want 0", len(got))
	}
}

func TestConcurrentAddAndRead(t *testing.T) {
	b := New(1000, 100)
	base := time.Now().UTC()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("m%d", w)
				b.Add(snap(id, base.Add(time.Duration(i)*time.Millisecond), -110))
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = b.History("m0")
			_, _ = b.Latest("m1")
		}
	}()
	wg.Wait()
	for w := 0; w < 4; w++ {
		id := fmt.Sprintf("m%d", w)
		if got := len(b.History(id)); got != 100 {
			t.Fatalf("market %s history len = %d, want 100", id, got)
		}
	}
}
