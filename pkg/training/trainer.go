// Package training fits the no-show model: reference columns, scaler, and
// classifier come out of one run as a single co-versioned bundle.
package training

import (
	"fmt"
	"math/rand"

	"github.com/vetsight-ai/noshow/pkg/artifact"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/ml/linear"
	"github.com/vetsight-ai/noshow/pkg/schema"
)

type Options struct {
	Epochs       int
	LearningRate float64
	// Holdout is the fraction of rows reserved for evaluation.
	Holdout float64
	Seed    int64
}

type Result struct {
	Bundle  *artifact.Bundle
	Train   linear.Metrics
	Holdout linear.Metrics
}

// Fit trains on the engineered feature table. The categorical vocabulary
// is taken from the full table; the scaler is fit on the training split
// only, mirroring how the model will meet unseen rows in production.
func Fit(rows []dataset.FeatureRow, opts Options) (Result, error) {
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("no feature rows to train on")
	}
	if opts.Holdout < 0 || opts.Holdout >= 1 {
		return Result{}, fmt.Errorf("holdout fraction %v out of range [0,1)", opts.Holdout)
	}

	columns := schema.FitColumns(rows)

	encoded := make([]map[string]float64, len(rows))
	labels := make([]float64, len(rows))
	var positives int
	for i, row := range rows {
		encoded[i] = schema.Encode(row)
		if row.NoShow {
			labels[i] = 1
			positives++
		}
	}

	// Deterministic shuffle, then the tail becomes the holdout.
	order := rand.New(rand.NewSource(opts.Seed)).Perm(len(rows))
	holdoutSize := int(float64(len(rows)) * opts.Holdout)
	trainSize := len(rows) - holdoutSize

	trainEncoded := make([]map[string]float64, 0, trainSize)
	trainLabels := make([]float64, 0, trainSize)
	holdEncoded := make([]map[string]float64, 0, holdoutSize)
	holdLabels := make([]float64, 0, holdoutSize)
	for i, idx := range order {
		if i < trainSize {
			trainEncoded = append(trainEncoded, encoded[idx])
			trainLabels = append(trainLabels, labels[idx])
		} else {
			holdEncoded = append(holdEncoded, encoded[idx])
			holdLabels = append(holdLabels, labels[idx])
		}
	}

	scaler := schema.FitScaler(trainEncoded, schema.NumericFeatures)

	toMatrix := func(encoded []map[string]float64) ([][]float64, error) {
		matrix := make([][]float64, len(encoded))
		for i, values := range encoded {
			vector := schema.Align(values, columns)
			if err := scaler.Transform(vector, columns); err != nil {
				return nil, err
			}
			matrix[i] = vector
		}
		return matrix, nil
	}

	trainMatrix, err := toMatrix(trainEncoded)
	if err != nil {
		return Result{}, err
	}
	holdMatrix, err := toMatrix(holdEncoded)
	if err != nil {
		return Result{}, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"samples":   len(rows),
		"positives": positives,
		"columns":   len(columns),
		"holdout":   holdoutSize,
	}).Info("training no-show model")

	weights, trainMetrics := linear.TrainLogistic(trainMatrix, trainLabels, linear.Options{
		Epochs:       opts.Epochs,
		LearningRate: opts.LearningRate,
		Balanced:     true,
	})

	holdMetrics := linear.Evaluate(weights, holdMatrix, holdLabels)
	reported := holdMetrics
	if holdoutSize == 0 {
		reported = trainMetrics
	}

	bundle := artifact.New(columns, scaler, weights, artifact.Metrics{
		Samples:   len(rows),
		Positives: positives,
		Loss:      reported.Loss,
		Accuracy:  reported.Accuracy,
	})
	return Result{Bundle: bundle, Train: trainMetrics, Holdout: holdMetrics}, nil
}
