package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Server
	ServerPort   string
	ServerHost   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Data files
	DataDir          string
	AppointmentsFile string
	TransactionsFile string
	LabeledFile      string
	FeaturesFile     string

	// Artifacts
	ArtifactPath      string
	BaselineRatesFile string

	// Training
	TrainEpochs       int
	TrainLearningRate float64
	TrainHoldout      float64
	TrainSeed         int64
}

func Load() *Config {
	dataDir := getEnv("NOSHOW_DATA_DIR", "data")
	outputDir := getEnv("NOSHOW_OUTPUT_DIR", "output")

	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8000"),
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),

		DataDir:          dataDir,
		AppointmentsFile: getEnv("NOSHOW_APPOINTMENTS_FILE", filepath.Join(dataDir, "appointments.csv")),
		TransactionsFile: getEnv("NOSHOW_TRANSACTIONS_FILE", filepath.Join(dataDir, "transactions.csv")),
		LabeledFile:      getEnv("NOSHOW_LABELED_FILE", filepath.Join(outputDir, "labeled_appointments.csv")),
		FeaturesFile:     getEnv("NOSHOW_FEATURES_FILE", filepath.Join(outputDir, "features.csv")),

		ArtifactPath:      getEnv("NOSHOW_ARTIFACT_PATH", filepath.Join(outputDir, "noshow_model.json")),
		BaselineRatesFile: getEnv("NOSHOW_BASELINE_RATES_FILE", filepath.Join("configs", "baseline_rates.yaml")),

		TrainEpochs:       getIntEnv("NOSHOW_TRAIN_EPOCHS", 400),
		TrainLearningRate: getFloatEnv("NOSHOW_TRAIN_LEARNING_RATE", 0.05),
		TrainHoldout:      getFloatEnv("NOSHOW_TRAIN_HOLDOUT", 0.2),
		TrainSeed:         int64(getIntEnv("NOSHOW_TRAIN_SEED", 42)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
