package billid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 4, 123456789, time.UTC)
	assert.Equal(t, "20240309070504123456", Format(ts))
	assert.Len(t, Format(ts), 20)
}

func TestNextStrictlyIncreasing(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 7, 5, 4, 0, time.UTC)
	g := NewGenerator(func() time.Time { return fixed })

	first, _ := g.Next()
	second, _ := g.Next()
	third, at := g.Next()

	assert.Equal(t, "20240309070504000000", first)
	assert.Equal(t, "20240309070504000001", second)
	assert.Equal(t, "20240309070504000002", third)
	assert.Equal(t, fixed.Add(2*time.Microsecond), at)
}

func TestNextSurvivesClockStepBack(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 3, 9, 7, 5, 4, 5000, time.UTC),
		time.Date(2024, 3, 9, 7, 5, 3, 0, time.UTC),
	}
	i := 0
	g := NewGenerator(func() time.Time { t := times[i]; i++; return t })

	a, _ := g.Next()
	b, _ := g.Next()
	assert.Less(t, a, b)
}
