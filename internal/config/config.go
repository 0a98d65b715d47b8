package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port               int           `yaml:"port"`
	APIToken           string        `yaml:"api_token"`
	LogLevel           string        `yaml:"log_level"`
	BackendCandidates  []string      `yaml:"backend_candidates"`
	ProbeTimeout       time.Duration `yaml:"probe_timeout"`
	RosterForwardDelay time.Duration `yaml:"roster_forward_delay"`
	NatsURL            string        `yaml:"nats_url"`
	NatsToken          string        `yaml:"nats_token"`
	DatabaseURL        string        `yaml:"database_url"`
	SlackBotToken      string        `yaml:"slack_bot_token"`
	SlackChannel       string        `yaml:"slack_channel"`
}

// DefaultCandidates are probed when PROPOSER_BACKEND_URL is not set.
var DefaultCandidates = []string{"http://127.0.0.1:8000", "http://localhost:8000"}

func Load() Config {
	candidates := append([]string{}, DefaultCandidates...)
	if u := envStr("PROPOSER_BACKEND_URL", ""); u != "" {
		candidates = append([]string{strings.TrimRight(u, "/")}, candidates...)
	}
	return Config{
		Port:               envInt("PROPOSER_PORT", 8760),
		APIToken:           envStr("PROPOSER_API_TOKEN", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		BackendCandidates:  envList("PROPOSER_BACKEND_CANDIDATES", candidates),
		ProbeTimeout:       time.Duration(envInt("PROPOSER_PROBE_TIMEOUT_MS", 1000)) * time.Millisecond,
		RosterForwardDelay: time.Duration(envInt("PROPOSER_ROSTER_FORWARD_DELAY_MS", 1500)) * time.Millisecond,
		NatsURL:            envStr("NATS_URL", ""),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		SlackBotToken:      envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:       envStr("SLACK_PROPOSALS_CHANNEL", ""),
	}
}

// LoadFile loads the env config and overlays any non-zero values found in the
// YAML file at path. An empty path returns the env config unchanged.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.overlay(file)
	return cfg, nil
}

func (c *Config) overlay(o Config) {
	if o.Port != 0 {
		c.Port = o.Port
	}
	if o.APIToken != "" {
		c.APIToken = o.APIToken
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if len(o.BackendCandidates) > 0 {
		c.BackendCandidates = o.BackendCandidates
	}
	if o.ProbeTimeout > 0 {
		c.ProbeTimeout = o.ProbeTimeout
	}
	if o.RosterForwardDelay > 0 {
		c.RosterForwardDelay = o.RosterForwardDelay
	}
	if o.NatsURL != "" {
		c.NatsURL = o.NatsURL
	}
	if o.NatsToken != "" {
		c.NatsToken = o.NatsToken
	}
	if o.DatabaseURL != "" {
		c.DatabaseURL = o.DatabaseURL
	}
	if o.SlackBotToken != "" {
		c.SlackBotToken = o.SlackBotToken
	}
	if o.SlackChannel != "" {
		c.SlackChannel = o.SlackChannel
	}
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

// envList splits a comma-separated value, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
