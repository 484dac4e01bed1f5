package config

import (
	"os"
	"strconv"
	"time"

	"github.com/adamthede/project-limitless-exporter/internal/planner"
)

type Config struct {
	APIKey      string
	APIURL      string
	ExportDir   string
	LogLevel    string
	Timezone    string
	Port        int
	DatabaseURL string
	NatsURL     string
	NatsToken   string

	IntraSessionGapSeconds int
	MinGapMinutes          int
	MinChunkSeconds        int
	PageLimit              int
	LabelScheme            string
}

func Load() Config {
	return Config{
		APIKey:      envStr("LIMITLESS_API_KEY", ""),
		APIURL:      envStr("LIMITLESS_API_URL", "https://api.limitless.ai"),
		ExportDir:   envStr("EXPORT_DIR", "exports"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		Timezone:    envStr("EXPORT_TIMEZONE", ""),
		Port:        envInt("EXPORTER_PORT", 8780),
		DatabaseURL: envStr("DATABASE_URL", ""),
		NatsURL:     envStr("NATS_URL", ""),
		NatsToken:   envStr("NATS_TOKEN", ""),

		IntraSessionGapSeconds: envInt("INTRA_SESSION_GAP_SECONDS", 300),
		MinGapMinutes:          envInt("MIN_GAP_MINUTES", 30),
		MinChunkSeconds:        envInt("MIN_CHUNK_SECONDS", 1),
		PageLimit:              envInt("PAGE_LIMIT", 50),
		LabelScheme:            envStr("LABEL_SCHEME", "timeofday"),
	}
}

// PlannerOptions builds segmentation options from the configured knobs. An
// unknown or empty timezone falls back to the local zone.
func (c Config) PlannerOptions() planner.Options {
	opts := planner.DefaultOptions()
	opts.IntraSessionGap = time.Duration(c.IntraSessionGapSeconds) * time.Second
	opts.MinSessionGap = time.Duration(c.MinGapMinutes) * time.Minute
	opts.MinChunkDuration = time.Duration(c.MinChunkSeconds) * time.Second
	opts.Labels = planner.PolicyByName(c.LabelScheme)
	if c.Timezone != "" {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			opts.Location = loc
		}
	}
	return opts
}

func envStr(key, fallback string) string {
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
