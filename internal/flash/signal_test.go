package flash

import (
	"sync"
	"testing"
	"time"

	"github.com/rickgao/cryptopicks/internal/clock"
	"github.com/rickgao/cryptopicks/internal/model"
)

var epoch = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func newTestSignal() (*Signal, *clock.Fake) {
	fake := clock.NewFake(epoch)
	return New(DefaultConfig(), fake, nil), fake
}

func point(id int, prev, price float64) model.PricePoint {
	return model.PricePoint{AssetID: id, Previous: prev, Price: price}
}

func TestSignal_RaiseDirection(t *testing.T) {
	tests := []struct {
		name    string
		prev    float64
		price   float64
		want    model.Direction
		wantAny bool
	}{
		{"up", 100, 101, model.DirUp, true},
		{"down", 100, 99, model.DirDown, true},
		{"unchanged", 100, 100, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSignal()

			raised := s.Observe(point(1, tt.prev, tt.price))
			if raised != tt.wantAny {
				t.Errorf("Observe() = %v, want %v", raised, tt.wantAny)
			}

			dir, ok := s.Current(1)
			if ok != tt.wantAny || dir != tt.want {
				t.Errorf("Current(1) = (%q, %v), want (%q, %v)", dir, ok, tt.want, tt.wantAny)
			}
		})
	}
}

func TestSignal_ExpiresAfterTTL(t *testing.T) {
	s, fake := newTestSignal()

	s.Observe(point(1, 100, 101))

	fake.Advance(499 * time.Millisecond)
	if _, ok := s.Current(1); !ok {
		t.Fatal("flag gone before TTL")
	}

	fake.Advance(time.Millisecond)
	if dir, ok := s.Current(1); ok {
		t.Errorf("Current(1) = %q after TTL, want none", dir)
	}
	if st := s.Stats(); st.Expired != 1 || st.Live != 0 {
		t.Errorf("Stats() = %+v, want Expired=1 Live=0", st)
	}
}

func TestSignal_NewFlagRestartsTimer(t *testing.T) {
	s, fake := newTestSignal()

	s.Observe(point(1, 100, 101))
	fake.Advance(300 * time.Millisecond)

	s.Observe(point(1, 101, 100.5))

	// The first flag's expiry (t=500ms) must not clear the newer flag.
	fake.Advance(300 * time.Millisecond)
	dir, ok := s.Current(1)
	if !ok || dir != model.DirDown {
		t.Fatalf("Current(1) = (%q, %v) at t=600ms, want (down, true)", dir, ok)
	}

	fake.Advance(200 * time.Millisecond)
	if _, ok := s.Current(1); ok {
		t.Error("flag still live at t=800ms, want expired at 800ms")
	}
}

func TestSignal_StaleExpiryIsNoop(t *testing.T) {
	s, _ := newTestSignal()

	s.Observe(point(1, 100, 101))
	first, _ := s.Flag(1)

	s.Observe(point(1, 101, 100))
	second, _ := s.Flag(1)

	if second.Generation <= first.Generation {
		t.Fatalf("generation did not advance: %d -> %d", first.Generation, second.Generation)
	}

	// Simulate a timer that could not be cancelled in time.
	s.expire(1, first.Generation)

	dir, ok := s.Current(1)
	if !ok || dir != model.DirDown {
		t.Errorf("Current(1) = (%q, %v) after stale expiry, want (down, true)", dir, ok)
	}
	if st := s.Stats(); st.Stale != 1 {
		t.Errorf("Stats().Stale = %d, want 1", st.Stale)
	}
}

func TestSignal_UnchangedPriceKeepsFlag(t *testing.T) {
	s, fake := newTestSignal()

	s.Observe(point(1, 100, 101))
	fake.Advance(200 * time.Millisecond)

	s.Observe(point(1, 101, 101))

	fake.Advance(200 * time.Millisecond)
	if dir, ok := s.Current(1); !ok || dir != model.DirUp {
		t.Errorf("Current(1) = (%q, %v), want (up, true)", dir, ok)
	}

	// Expiry is still measured from the original raise.
	fake.Advance(100 * time.Millisecond)
	if _, ok := s.Current(1); ok {
		t.Error("flag outlived its TTL because of an unchanged tick")
	}
}

func TestSignal_FlagsAreIndependentPerAsset(t *testing.T) {
	s, fake := newTestSignal()

	n := s.ObserveTick([]model.PricePoint{
		point(1, 100, 101),
		point(2, 50, 49),
		point(3, 10, 10),
	})
	if n != 2 {
		t.Errorf("ObserveTick() = %d, want 2", n)
	}

	flags := s.Flags()
	if len(flags) != 2 || flags[1] != model.DirUp || flags[2] != model.DirDown {
		t.Errorf("Flags() = %v, want {1:up 2:down}", flags)
	}

	fake.Advance(250 * time.Millisecond)
	s.Observe(point(2, 49, 50))

	fake.Advance(250 * time.Millisecond)
	flags = s.Flags()
	if _, ok := flags[1]; ok {
		t.Error("asset 1 flag should have expired")
	}
	if flags[2] != model.DirUp {
		t.Errorf("flags[2] = %q, want up", flags[2])
	}
}

func TestSignal_StopCancelsTimers(t *testing.T) {
	s, fake := newTestSignal()

	s.ObserveTick([]model.PricePoint{
		point(1, 100, 101),
		point(2, 100, 99),
	})
	if got := fake.PendingTimers(); got != 2 {
		t.Fatalf("PendingTimers() = %d, want 2", got)
	}

	s.Stop()

	if got := fake.PendingTimers(); got != 0 {
		t.Errorf("PendingTimers() = %d after Stop, want 0", got)
	}
	if len(s.Flags()) != 0 {
		t.Errorf("Flags() = %v after Stop, want empty", s.Flags())
	}

	if s.Observe(point(1, 100, 101)) {
		t.Error("Observe raised a flag on a stopped signal")
	}

	s.Stop()

	s.Reset()
	if !s.Observe(point(1, 100, 101)) {
		t.Error("Observe did not raise after Reset")
	}
}

func TestSignal_SupersededTimerIsCancelled(t *testing.T) {
	s, fake := newTestSignal()

	for i := 0; i < 5; i++ {
		s.Observe(point(1, 100, 100+float64(i+1)))
	}

	if got := fake.PendingTimers(); got != 1 {
		t.Errorf("PendingTimers() = %d, want 1", got)
	}
}

func TestSignal_RealClockConcurrentExpiry(t *testing.T) {
	s := New(Config{TTL: 5 * time.Millisecond}, nil, nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Observe(point(id, 100, 100+float64(i%3)-1))
				time.Sleep(time.Millisecond)
			}
		}(g)
	}
	wg.Wait()

	time.Sleep(50 * time.Millisecond)
	if got := len(s.Flags()); got != 0 {
		t.Errorf("len(Flags()) = %d after all TTLs elapsed, want 0", got)
	}
	s.Stop()
}
