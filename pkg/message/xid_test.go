package message

import (
	"sync"
	"testing"
)

func TestXIDGeneratorSequence(t *testing.T) {
	g := NewXIDGeneratorWithValue(41)

	for want := uint32(41); want < 45; want++ {
		if got := g.Next(); got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}

	if got := g.Current(); got != 45 {
		t.Errorf("Current() = %d, want 45", got)
	}
	if got := g.Next(); got != 45 {
		t.Errorf("Next() after Current() = %d, want 45", got)
	}
}

func TestXIDGeneratorSkipsZero(t *testing.T) {
	g := NewXIDGeneratorWithValue(0xFFFFFFFF)

	if got := g.Next(); got != 0xFFFFFFFF {
		t.Fatalf("Next() = %08x, want ffffffff", got)
	}

	// Wrapped; zero must not be handed out.
	if got := g.Next(); got != 1 {
		t.Errorf("Next() after wrap = %d, want 1", got)
	}
}

func TestXIDGeneratorRandomInit(t *testing.T) {
	g := NewXIDGenerator()
	if g.Next() == 0 {
		t.Error("Next() returned 0 from a fresh generator")
	}
}

func TestXIDGeneratorConcurrent(t *testing.T) {
	const perGoroutine = 1000
	const goroutines = 4

	g := NewXIDGeneratorWithValue(1)
	results := make(chan uint32, perGoroutine*goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				results <- g.Next()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint32]bool, perGoroutine*goroutines)
	for xid := range results {
		if seen[xid] {
			t.Fatalf("xid %d handed out twice", xid)
		}
		seen[xid] = true
	}

	if len(seen) != perGoroutine*goroutines {
		t.Errorf("got %d unique xids, want %d", len(seen), perGoroutine*goroutines)
	}
}
