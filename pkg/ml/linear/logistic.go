package linear

import "math"

type Options struct {
	Epochs       int
	LearningRate float64
	// Balanced reweights samples inversely to class frequency, so a rare
	// positive class is not drowned out by the majority.
	Balanced bool
}

type Weights struct {
	Bias         float64   `json:"bias"`
	Coefficients []float64 `json:"coefficients"`
}

type Metrics struct {
	Loss     float64 `json:"loss"`
	Accuracy float64 `json:"accuracy"`
}

// TrainLogistic fits a logistic regression by batch gradient descent.
// Labels are 0/1; samples must share a width.
func TrainLogistic(samples [][]float64, labels []float64, opts Options) (Weights, Metrics) {
	if opts.Epochs <= 0 {
		opts.Epochs = 200
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.01
	}

	n := len(samples)
	if n == 0 {
		return Weights{}, Metrics{}
	}
	featureCount := len(samples[0])
	weights := make([]float64, featureCount)
	var bias float64

	sampleWeights := classWeights(labels, opts.Balanced)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		grad := make([]float64, featureCount)
		var biasGrad float64
		for i, sample := range samples {
			prediction := sigmoid(dot(weights, sample) + bias)
			residual := (prediction - labels[i]) * sampleWeights[i]
			for j := 0; j < featureCount; j++ {
				grad[j] += residual * sample[j]
			}
			biasGrad += residual
		}
		for j := 0; j < featureCount; j++ {
			weights[j] -= opts.LearningRate * grad[j] / float64(n)
		}
		bias -= opts.LearningRate * biasGrad / float64(n)
	}

	loss, accuracy := evaluate(weights, bias, samples, labels)
	return Weights{Bias: bias, Coefficients: weights}, Metrics{Loss: loss, Accuracy: accuracy}
}

// classWeights returns per-sample weights. Balanced weighting assigns each
// class n/(2*count) so both classes contribute equally to the gradient.
func classWeights(labels []float64, balanced bool) []float64 {
	weights := make([]float64, len(labels))
	if !balanced {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	var positives float64
	for _, label := range labels {
		if label == 1 {
			positives++
		}
	}
	negatives := float64(len(labels)) - positives
	if positives == 0 || negatives == 0 {
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	n := float64(len(labels))
	positiveWeight := n / (2 * positives)
	negativeWeight := n / (2 * negatives)
	for i, label := range labels {
		if label == 1 {
			weights[i] = positiveWeight
		} else {
			weights[i] = negativeWeight
		}
	}
	return weights
}

func Predict(weights Weights, sample []float64) float64 {
	return sigmoid(dot(weights.Coefficients, sample) + weights.Bias)
}

func dot(weights []float64, sample []float64) float64 {
	var sum float64
	for i := 0; i < len(weights); i++ {
		sum += weights[i] * sample[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func evaluate(weights []float64, bias float64, samples [][]float64, labels []float64) (float64, float64) {
	var loss float64
	var correct int
	for i, sample := range samples {
		prediction := sigmoid(dot(weights, sample) + bias)
		loss += -labels[i]*math.Log(prediction+1e-9) - (1-labels[i])*math.Log(1-prediction+1e-9)
		if (prediction >= 0.5 && labels[i] == 1) || (prediction < 0.5 && labels[i] == 0) {
			correct++
		}
	}
	loss /= float64(len(samples))
	accuracy := float64(correct) / float64(len(samples))
	return loss, accuracy
}

// Evaluate reports log loss and accuracy of fitted weights on a dataset,
// typically the holdout split.
func Evaluate(weights Weights, samples [][]float64, labels []float64) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}
	loss, accuracy := evaluate(weights.Coefficients, weights.Bias, samples, labels)
	return Metrics{Loss: loss, Accuracy: accuracy}
}
