package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// Local image storage, used when no S3 bucket is configured
	MediaDir       string `yaml:"media_dir"`
	MediaPublicURL string `yaml:"media_public_url"`

	// S3 image storage
	S3Bucket         string `yaml:"s3_bucket"`
	S3Region         string `yaml:"s3_region"`
	S3Endpoint       string `yaml:"s3_endpoint"`
	S3PublicURL      string `yaml:"s3_public_url"`
	S3KeyPrefix      string `yaml:"s3_key_prefix"`
	S3ForcePathStyle bool   `yaml:"s3_force_path_style"`

	// Extraction
	AnswerMarkerClass string `yaml:"answer_marker_class"`
	AllowedDurations  []int  `yaml:"allowed_durations"`

	// HTTP
	CORSOrigins []string `yaml:"cors_origins"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		Port:              "8090",
		WorkerCount:       4,
		MaxQueueSize:      100,
		MaxUploadBytes:    52428800, // 50MB
		JobTTL:            1 * time.Hour,
		MediaDir:          "media",
		S3KeyPrefix:       "quiz-images",
		AnswerMarkerClass: "correct-answer",
		AllowedDurations:  []int{30, 60, 90},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// QUIZGEST_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("QUIZGEST_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.MediaDir = envOr("MEDIA_DIR", cfg.MediaDir)
	cfg.MediaPublicURL = envOr("MEDIA_PUBLIC_URL", cfg.MediaPublicURL)

	cfg.S3Bucket = envOr("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = envOr("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = envOr("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3PublicURL = envOr("S3_PUBLIC_URL", cfg.S3PublicURL)
	cfg.S3KeyPrefix = envOr("S3_KEY_PREFIX", cfg.S3KeyPrefix)
	cfg.S3ForcePathStyle = envBool("S3_FORCE_PATH_STYLE", cfg.S3ForcePathStyle)

	cfg.AnswerMarkerClass = envOr("ANSWER_MARKER_CLASS", cfg.AnswerMarkerClass)
	durations, err := envInts("ALLOWED_DURATIONS", cfg.AllowedDurations)
	if err != nil {
		return cfg, err
	}
	cfg.AllowedDurations = durations
	cfg.CORSOrigins = envList("CORS_ORIGINS", cfg.CORSOrigins)

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.AllowedDurations) == 0 {
		return fmt.Errorf("ALLOWED_DURATIONS must list at least one duration")
	}
	for _, d := range c.AllowedDurations {
		if d <= 0 {
			return fmt.Errorf("ALLOWED_DURATIONS: %d is not a positive number of minutes", d)
		}
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		return fmt.Errorf("S3_REGION is required when S3_BUCKET is set")
	}
	if c.S3Bucket == "" && c.MediaDir == "" {
		return fmt.Errorf("MEDIA_DIR or S3_BUCKET is required")
	}
	if strings.TrimSpace(c.AnswerMarkerClass) == "" {
		return fmt.Errorf("ANSWER_MARKER_CLASS must not be empty")
	}
	return nil
}

// UsesS3 reports whether images go to S3 rather than MediaDir.
func (c Config) UsesS3() bool {
	return c.S3Bucket != ""
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse config file %s: multiple YAML documents are not supported", path)
		}
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envInts is envList for integers. Unlike envInt, a malformed entry is an error.
func envInts(key string, fallback []int) ([]int, error) {
	parts := envList(key, nil)
	if parts == nil {
		return fallback, nil
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, p)
		}
		out = append(out, n)
	}
	return out, nil
}
