package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/docmask/internal/cms"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth for the HTTP API
	DocmaskAPIKey string

	// microCMS
	MicroCMSAPIKey        string
	MicroCMSServiceDomain string
	MicroCMSEndpoint      string
	MicroCMSBaseURL       string // Overrides the URL derived from the domain.
	CMSTimeout            time.Duration

	// Masking
	MaskSeed        uint64
	MaskProbability float64
	NounCacheSize   int

	// Batch publishing
	ProposalsGlob string
	ArtifactsDir  string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

// LoadDotEnv reads path into the environment when it exists. Variables
// already set win.
func LoadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load %s: %w", path, err)
	}
	return true, nil
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocmaskAPIKey: os.Getenv("DOCMASK_API_KEY"),

		MicroCMSAPIKey:        os.Getenv("MICROCMS_API_KEY"),
		MicroCMSServiceDomain: os.Getenv("MICROCMS_SERVICE_DOMAIN"),
		MicroCMSEndpoint:      envOr("MICROCMS_ENDPOINT", "proposals"),
		MicroCMSBaseURL:       os.Getenv("MICROCMS_BASE_URL"),
		CMSTimeout:            envDuration("CMS_TIMEOUT", 30*time.Second),

		MaskSeed:        envUint64("MASK_SEED", 42),
		MaskProbability: envFloat("MASK_PROBABILITY", 0.3),
		NounCacheSize:   envInt("NOUN_CACHE_SIZE", 50000),

		ProposalsGlob: envOr("PROPOSALS_GLOB", "proposals/*.md"),
		ArtifactsDir:  envOr("ARTIFACTS_DIR", "artifacts"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 5242880), // 5MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5242880
	}
	if cfg.MaskProbability < 0 || cfg.MaskProbability > 1 {
		cfg.MaskProbability = 0.3
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// CMSURL returns the list endpoint of the configured service.
func (c Config) CMSURL() string {
	if c.MicroCMSBaseURL != "" {
		return c.MicroCMSBaseURL
	}
	return cms.ServiceURL(c.MicroCMSServiceDomain, c.MicroCMSEndpoint)
}

// ValidatePublish checks the settings needed to talk to the CMS.
func (c Config) ValidatePublish() error {
	if c.MicroCMSAPIKey == "" {
		return fmt.Errorf("MICROCMS_API_KEY is required")
	}
	if c.MicroCMSServiceDomain == "" && c.MicroCMSBaseURL == "" {
		return fmt.Errorf("MICROCMS_SERVICE_DOMAIN is required")
	}
	return nil
}

// ValidateServe checks the settings needed by the HTTP server.
func (c Config) ValidateServe() error {
	if c.DocmaskAPIKey == "" {
		return fmt.Errorf("DOCMASK_API_KEY is required")
	}
	return c.ValidatePublish()
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

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
