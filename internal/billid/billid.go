// Package billid issues time-derived bill identifiers of the form
// YYYYMMDDHHMMSS followed by six digits of microseconds.
package billid

import (
	"sync"
	"time"
)

const layout = "20060102150405.000000"

// Generator never returns an identifier that is less than or equal to a
// previous one, even when the clock stalls or steps backwards.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns the identifier and the instant it encodes.
func (g *Generator) Next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t := g.now().Truncate(time.Microsecond)
	if !t.After(g.last) {
		t = g.last.Add(time.Microsecond)
	}
	g.last = t
	return Format(t), t
}

// Format renders t without the decimal point.
func Format(t time.Time) string {
	s := t.Format(layout)
	return s[:14] + s[15:]
}
