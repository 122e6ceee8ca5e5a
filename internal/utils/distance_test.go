package utils

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	nyc := []float64{40.7128, -74.0060}
	chicago := []float64{41.8781, -87.6298}

	t.Run("known city pair", func(t *testing.T) {
		got := Distance(nyc, chicago)
		// Great-circle distance NYC-Chicago is roughly 1145 km.
		if math.Abs(got-1145) > 10 {
			t.Errorf("Distance = %f km, want ~1145", got)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		if Distance(nyc, chicago) != Distance(chicago, nyc) {
			t.Error("Distance is not symmetric")
		}
	})

	t.Run("same point", func(t *testing.T) {
		if got := Distance(nyc, nyc); got != 0 {
			t.Errorf("Distance(p, p) = %f, want 0", got)
		}
	})

	t.Run("malformed input", func(t *testing.T) {
		if got := Distance([]float64{40.7}, chicago); got != 0 {
			t.Errorf("Distance with short origin = %f, want 0", got)
		}
		if got := Distance(nyc, nil); got != 0 {
			t.Errorf("Distance with nil destiny = %f, want 0", got)
		}
	})
}
