package schema

// Align reconciles named feature values against the reference column
// ordering fit at training time: reference columns missing from the input
// are zero-filled, input values with no reference column are discarded.
// This is what makes a single inference-time row, which cannot carry every
// category the training set saw, compatible with the model's fixed input
// width. Aligning an already-aligned vector is a no-op.
func Align(values map[string]float64, columns []string) []float64 {
	vector := make([]float64, len(columns))
	for i, column := range columns {
		vector[i] = values[column]
	}
	return vector
}

// Named reverses Align's flattening, pairing a vector with its column
// names. Callers use it to re-align or rescale an existing vector.
func Named(vector []float64, columns []string) map[string]float64 {
	values := make(map[string]float64, len(columns))
	for i, column := range columns {
		if i < len(vector) {
			values[column] = vector[i]
		}
	}
	return values
}
