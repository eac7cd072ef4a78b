// Package artifact persists the co-versioned output of a training run:
// the reference column list, the fitted scaler, and the fitted model.
// The three only make sense together; they are stored and loaded as one
// JSON document so a partial mix from different runs cannot occur.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vetsight-ai/noshow/pkg/ml/linear"
	"github.com/vetsight-ai/noshow/pkg/schema"
)

// SchemaVersion tags the feature-space layout a bundle was fit against.
// Load fails fast on a mismatch instead of silently zero-filling its way
// into a degraded prediction.
const SchemaVersion = "noshow-features/v1"

type Metrics struct {
	Samples   int     `json:"samples"`
	Positives int     `json:"positives"`
	Loss      float64 `json:"loss"`
	Accuracy  float64 `json:"accuracy"`
}

type Bundle struct {
	RunID           string         `json:"run_id"`
	SchemaVersion   string         `json:"schema_version"`
	CreatedAt       time.Time      `json:"created_at"`
	Columns         []string       `json:"columns"`
	NumericFeatures []string       `json:"numeric_features"`
	Scaler          *schema.Scaler `json:"scaler"`
	Model           linear.Weights `json:"model"`
	Metrics         Metrics        `json:"metrics"`
}

// New stamps a bundle with a fresh run id and the current schema version.
func New(columns []string, scaler *schema.Scaler, model linear.Weights, metrics Metrics) *Bundle {
	return &Bundle{
		RunID:           uuid.New().String(),
		SchemaVersion:   SchemaVersion,
		CreatedAt:       time.Now().UTC(),
		Columns:         columns,
		NumericFeatures: append([]string{}, schema.NumericFeatures...),
		Scaler:          scaler,
		Model:           model,
		Metrics:         metrics,
	}
}

// Save writes the bundle as indented JSON.
func (b *Bundle) Save(path string) error {
	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

// Load reads a bundle and validates its schema version and shape.
func Load(path string) (*Bundle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var bundle Bundle
	if err := json.Unmarshal(content, &bundle); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if bundle.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("artifact %s: schema version %q does not match %q; retrain before serving",
			path, bundle.SchemaVersion, SchemaVersion)
	}
	if len(bundle.Columns) == 0 {
		return nil, fmt.Errorf("artifact %s: missing reference columns", path)
	}
	if len(bundle.Model.Coefficients) != len(bundle.Columns) {
		return nil, fmt.Errorf("artifact %s: model width %d does not match %d reference columns",
			path, len(bundle.Model.Coefficients), len(bundle.Columns))
	}
	if bundle.Scaler == nil {
		return nil, fmt.Errorf("artifact %s: missing scaler", path)
	}
	return &bundle, nil
}
