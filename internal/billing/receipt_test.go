package billing

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFormat(t *testing.T) {
	g := NewReceiptGenerator()
	at := time.Date(2025, 3, 13, 10, 11, 58, 0, time.UTC)
	assert.Equal(t, "20250313-101158", g.Generate(at))
}

func TestGenerateSameSecondIsUnique(t *testing.T) {
	g := NewReceiptGenerator()
	at := time.Date(2025, 3, 13, 10, 11, 58, 0, time.UTC)

	first := g.Generate(at)
	second := g.Generate(at)
	third := g.Generate(at)

	assert.Equal(t, "20250313-101158", first)
	assert.Equal(t, "20250313-101158-01", second)
	assert.Equal(t, "20250313-101158-02", third)

	// The next second resets the sequence.
	next := g.Generate(at.Add(time.Second))
	assert.Equal(t, "20250313-101159", next)
}

func TestGenerateLexicalOrderFollowsTime(t *testing.T) {
	g := NewReceiptGenerator()
	at := time.Date(2025, 3, 13, 10, 11, 58, 0, time.UTC)

	receipts := []string{
		g.Generate(at),
		g.Generate(at),
		g.Generate(at.Add(time.Second)),
		g.Generate(at.Add(time.Minute)),
	}
	assert.True(t, sort.StringsAreSorted(receipts), "receipts must sort by generation order: %v", receipts)
}

func TestGenerateConcurrentUniqueness(t *testing.T) {
	g := NewReceiptGenerator()
	at := time.Date(2025, 3, 13, 10, 11, 58, 0, time.UTC)

	const n = 50
	out := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out <- g.Generate(at)
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[string]struct{}, n)
	for r := range out {
		_, dup := seen[r]
		assert.False(t, dup, "duplicate receipt %s", r)
		seen[r] = struct{}{}
	}
	assert.Len(t, seen, n)
}
