package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	DataDir     string `koanf:"data_dir"`

	Server     ServerConfig     `koanf:"server"`
	Scoring    ScoringConfig    `koanf:"scoring"`
	Policy     PolicyConfig     `koanf:"policy"`
	Governance GovernanceConfig `koanf:"governance"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

// ScoringConfig holds the assessment scoring knobs. The canned values
// mirror the accreditation consultants' starting points and are not
// domain-validated; deployments tune them per institution.
type ScoringConfig struct {
	BaseScore                   float64 `koanf:"base_score"`
	EvidenceIncrement           float64 `koanf:"evidence_increment"`
	InsufficientEvidencePenalty float64 `koanf:"insufficient_evidence_penalty"`
	UnusableEvidencePenalty     float64 `koanf:"unusable_evidence_penalty"`
	ReassessIntervalDays        int     `koanf:"reassess_interval_days"`
}

type PolicyConfig struct {
	DefaultReviewFrequencyDays int `koanf:"default_review_frequency_days"`
}

type GovernanceConfig struct {
	AlertScoreThreshold float64 `koanf:"alert_score_threshold"`
	FollowUpDays        int     `koanf:"follow_up_days"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		DataDir:     "data",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 50,
				BurstSize:         100,
			},
		},
		Scoring: ScoringConfig{
			BaseScore:                   75,
			EvidenceIncrement:           25,
			InsufficientEvidencePenalty: 15,
			UnusableEvidencePenalty:     20,
			ReassessIntervalDays:        180,
		},
		Policy: PolicyConfig{
			DefaultReviewFrequencyDays: 365,
		},
		Governance: GovernanceConfig{
			AlertScoreThreshold: 80,
			FollowUpDays:        30,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	} else {
		// Default config file is optional.
		_ = k.Load(file.Provider("configs/governance.yaml"), yaml.Parser())
	}

	if err := k.Load(env.Provider("COLLEGIUM_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "COLLEGIUM_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
