package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/fieldmon/internal/service"
)

func readings(vals ...float64) []service.RegisterReading {
	out := make([]service.RegisterReading, len(vals))
	for i, v := range vals {
		out[i] = service.RegisterReading{Address: i, Value: v}
	}
	return out
}

func TestHistory_PushAndLast(t *testing.T) {
	h := NewHistory(3)

	h.Push(1, readings(10, 20))
	h.Push(1, readings(11, 21))

	assert.Equal(t, []float64{10, 11}, h.Last(1, 0, 5))
	assert.Equal(t, []float64{21}, h.Last(1, 1, 1))
	assert.Nil(t, h.Last(2, 0, 5))
	assert.Equal(t, 2, h.Count(1, 0))
}

func TestHistory_Wraps(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(7, readings(float64(i)))
	}
	assert.Equal(t, []float64{3, 4, 5}, h.Last(7, 0, 10))
	assert.Equal(t, 3, h.Count(7, 0))
	assert.Nil(t, h.Last(7, 0, 0))
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistorySize, h.size)

	h.Push(1, readings(1))
	h.Push(2, readings(2))
	h.Clear(1)
	assert.Zero(t, h.Count(1, 0))
	assert.Equal(t, 1, h.Count(2, 0))

	h.ClearAll()
	assert.Zero(t, h.Count(2, 0))
}
