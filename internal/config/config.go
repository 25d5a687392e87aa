package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// JournalBackendFile keeps the journal in a single JSON document.
	JournalBackendFile = "file"
	// JournalBackendSQLite keeps the journal in a SQLite table.
	JournalBackendSQLite = "sqlite"

	// InferenceBackendDNN runs the models in-process through OpenCV DNN.
	InferenceBackendDNN = "dnn"
	// InferenceBackendRemote calls an external inference service over HTTP.
	InferenceBackendRemote = "remote"
)

type Config struct {
	Port                int      `yaml:"port" validate:"min=1,max=65535"`
	LogDirectory        string   `yaml:"logDir" validate:"required"`
	LogLevel            string   `yaml:"logLevel" validate:"oneof=debug info warn warning error"`
	JournalBackend      string   `yaml:"journalBackend" validate:"oneof=file sqlite"`
	JournalPath         string   `yaml:"journalPath" validate:"required_if=JournalBackend file"`
	DatabasePath        string   `yaml:"dbPath" validate:"required_if=JournalBackend sqlite"`
	InferenceBackend    string   `yaml:"inferenceBackend" validate:"oneof=dnn remote"`
	DetectorModelPath   string   `yaml:"detectorModelPath" validate:"required_if=InferenceBackend dnn"`
	ClassifierModelPath string   `yaml:"classifierModelPath" validate:"required_if=InferenceBackend dnn"`
	ClassifierLabels    []string `yaml:"classifierLabels" validate:"min=1,dive,required"`
	InferenceURL        string   `yaml:"inferenceUrl" validate:"required_if=InferenceBackend remote"`
	InferenceTimeout    int      `yaml:"inferenceTimeout" validate:"min=1"` // sekundy
	ProcessingInterval  int      `yaml:"processingInterval" validate:"min=1"` // Co którą klatkę live przetwarzać (1=każdą, 3=co trzecią)
	MaxUploadMB         int      `yaml:"maxUploadMb" validate:"min=1,max=512"`
	CORSOrigins         []string `yaml:"corsOrigins" validate:"min=1"`
}

// Load reads .env, an optional YAML file named by CONFIG_FILE and finally
// the process environment, in increasing order of precedence.
func Load() *Config {
	loadDotEnv(getEnv("ENV_FILE", ".env"))

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		}
	}

	cfg.applyEnv()
	return cfg
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Port:                5000,
		LogDirectory:        filepath.Join(".", "logs"),
		LogLevel:            "info",
		JournalBackend:      JournalBackendFile,
		JournalPath:         "classification_history.json",
		DatabasePath:        filepath.Join(".", "data", "journal.db"),
		InferenceBackend:    InferenceBackendDNN,
		DetectorModelPath:   filepath.Join(".", "models", "best_detector.onnx"),
		ClassifierModelPath: filepath.Join(".", "models", "best_classifier.onnx"),
		ClassifierLabels:    []string{"cardboard", "glass", "metal", "paper", "plastic"},
		InferenceURL:        "http://localhost:8000",
		InferenceTimeout:    30,
		ProcessingInterval:  3,
		MaxUploadMB:         50,
		CORSOrigins:         []string{"*"},
	}
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	// Unmarshal over a copy so a half-parsed file leaves the defaults intact.
	merged := *c
	if err := yaml.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}
	*c = merged
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvAsInt("PORT", c.Port)
	c.LogDirectory = getEnv("LOG_DIR", c.LogDirectory)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.JournalBackend = strings.ToLower(getEnv("JOURNAL_BACKEND", c.JournalBackend))
	c.JournalPath = getEnv("JOURNAL_PATH", c.JournalPath)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.InferenceBackend = strings.ToLower(getEnv("INFERENCE_BACKEND", c.InferenceBackend))
	c.DetectorModelPath = getEnv("DETECTOR_MODEL_PATH", c.DetectorModelPath)
	c.ClassifierModelPath = getEnv("CLASSIFIER_MODEL_PATH", c.ClassifierModelPath)
	c.ClassifierLabels = getEnvAsList("CLASSIFIER_LABELS", c.ClassifierLabels)
	c.InferenceURL = getEnv("INFERENCE_URL", c.InferenceURL)
	c.InferenceTimeout = getEnvAsInt("INFERENCE_TIMEOUT", c.InferenceTimeout)
	c.ProcessingInterval = getEnvAsInt("PROCESSING_INTERVAL", c.ProcessingInterval)
	c.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.CORSOrigins = getEnvAsList("CORS_ORIGINS", c.CORSOrigins)
}

func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: cannot load %s: %v", path, err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
