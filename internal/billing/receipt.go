package billing

import (
	"fmt"
	"sync"
	"time"
)

// receiptLayout renders the check-in instant as a 15 character code,
// e.g. "20250313-101158".  The layout is lexically sortable, so
// receipts order naturally by entry time.
const receiptLayout = "20060102-150405"

// ReceiptGenerator produces receipt codes derived from the check-in
// instant.  The timestamp alone is only second-granular, so two
// check-ins within the same second would collide; the generator appends
// a per-second sequence suffix ("-01", "-02", …) to later calls in the
// same second.  The suffix keeps lexical ordering intact and the
// unique index on the receipt column backs the guarantee across
// processes.
type ReceiptGenerator struct {
	mu   sync.Mutex
	last string
	seq  int
}

// NewReceiptGenerator returns a generator with an empty second window.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// Generate returns the receipt code for a check-in at instant t.
func (g *ReceiptGenerator) Generate(t time.Time) string {
	stamp := t.UTC().Format(receiptLayout)

	g.mu.Lock()
	defer g.mu.Unlock()
	if stamp == g.last {
		g.seq++
		return fmt.Sprintf("%s-%02d", stamp, g.seq)
	}
	g.last = stamp
	g.seq = 0
	return stamp
}
