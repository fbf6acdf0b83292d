package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixedIDs(t *testing.T) {
	tests := []struct {
		prefix string
		id     string
	}{
		{SessionPrefix, NewSessionID().String()},
		{SurfacePrefix, NewSurfaceID().String()},
		{SubscriptionPrefix, NewSubscriptionID().String()},
		{RequestPrefix, NewRequestID().String()},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			prefix, raw, ok := strings.Cut(tt.id, "_")
			require.True(t, ok, "missing separator in %s", tt.id)
			assert.Equal(t, tt.prefix, prefix)

			_, err := ulid.ParseStrict(raw)
			assert.NoError(t, err)
		})
	}
}

func TestNextIsMonotonicWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	gen := NewGenerator()
	gen.now = func() time.Time { return fixed }

	prev := gen.Next()
	for i := 0; i < 100; i++ {
		next := gen.Next()
		require.Equal(t, 1, next.Compare(prev), "IDs must increase")
		assert.Equal(t, uint64(fixed.UnixMilli()), next.Time())
		prev = next
	}
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestConcurrentGeneration(t *testing.T) {
	const goroutines = 50
	const perGoroutine = 50

	var wg sync.WaitGroup
	idChan := make(chan SubscriptionID, goroutines*perGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				idChan <- NewSubscriptionID()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[SubscriptionID]bool)
	for id := range idChan {
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}
