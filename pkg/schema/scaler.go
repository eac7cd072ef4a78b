package schema

import (
	"fmt"
	"math"
)

// Stat holds the fitted center and scale for one numeric column.
type Stat struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Scaler standardizes the fixed numeric feature list. Indicator columns
// are never scaled.
type Scaler struct {
	Stats map[string]Stat `json:"stats"`
}

// FitScaler computes per-column mean and standard deviation over the given
// numeric features. A zero-variance column gets scale 1 so transforming it
// centers without dividing by zero.
func FitScaler(rows []map[string]float64, numeric []string) *Scaler {
	scaler := &Scaler{Stats: make(map[string]Stat, len(numeric))}
	if len(rows) == 0 {
		for _, name := range numeric {
			scaler.Stats[name] = Stat{Mean: 0, Scale: 1}
		}
		return scaler
	}

	n := float64(len(rows))
	for _, name := range numeric {
		var sum float64
		for _, row := range rows {
			sum += row[name]
		}
		mean := sum / n

		var sq float64
		for _, row := range rows {
			d := row[name] - mean
			sq += d * d
		}
		scale := math.Sqrt(sq / n)
		if scale == 0 {
			scale = 1
		}
		scaler.Stats[name] = Stat{Mean: mean, Scale: scale}
	}
	return scaler
}

// Transform standardizes the numeric entries of an aligned vector in
// place. Every fitted column must be present in the supplied column list;
// a mismatch means the scaler was fit on a different feature set than the
// one being served, which is a configuration error.
func (s *Scaler) Transform(vector []float64, columns []string) error {
	index := make(map[string]int, len(columns))
	for i, column := range columns {
		index[column] = i
	}
	for name, stat := range s.Stats {
		i, ok := index[name]
		if !ok || i >= len(vector) {
			return fmt.Errorf("scaler column %s not present in aligned feature set", name)
		}
		vector[i] = (vector[i] - stat.Mean) / stat.Scale
	}
	return nil
}
