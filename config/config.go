// Package config handles YAML configuration for driftaudit.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wakethelight/driftaudit/policy"
	"github.com/wakethelight/driftaudit/types"
)

// Config is the root configuration structure.
type Config struct {
	Version        string `yaml:"version"`
	Provider       string `yaml:"provider"`
	SubscriptionID string `yaml:"subscription_id"`
	TenantID       string `yaml:"tenant_id,omitempty"`
	JournalDir     string `yaml:"journal_dir,omitempty"`

	// Run parameters; overridable from the CLI.
	Scope string `yaml:"scope,omitempty"`
	Mode  string `yaml:"mode,omitempty"`

	CredentialWindowDays int `yaml:"credential_window_days,omitempty"`

	DNS DNSConfig `yaml:"dns,omitempty"`

	// Policy overrides; defaults apply when omitted.
	Environments map[string]EnvironmentConfig `yaml:"environments,omitempty"`
	TeamRules    []TeamRuleConfig             `yaml:"team_rules,omitempty"`
	AppPattern   string                       `yaml:"app_pattern,omitempty"`
}

// DNSConfig describes the zone pair for replication checks.
type DNSConfig struct {
	ResourceGroup string `yaml:"resource_group"`
	PrimaryZone   string `yaml:"primary_zone"`
	SecondaryZone string `yaml:"secondary_zone"`
}

// EnvironmentConfig overrides one environment's ruleset.
type EnvironmentConfig struct {
	RequiredTags map[string]string `yaml:"required_tags"`
	AllowedPorts []int             `yaml:"allowed_ports"`
	SafeSource   string            `yaml:"safe_source"`
}

// TeamRuleConfig is one ordered (pattern, team) entry. List order in the
// file is preserved; first match wins.
type TeamRuleConfig struct {
	Pattern string `yaml:"pattern"`
	Team    string `yaml:"team"`
}

// Load reads, parses, and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Provider == "" {
		cfg.Provider = "azure"
	}
	if cfg.Scope == "" {
		cfg.Scope = string(types.ScopeAll)
	}
	if cfg.Mode == "" {
		cfg.Mode = string(types.ModeAudit)
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = "journal"
	}
	if cfg.CredentialWindowDays == 0 {
		cfg.CredentialWindowDays = 30
	}
}

// Validate ensures config has required fields and that run parameters
// are in the enumerated sets. Invalid values fail the run before any
// object is fetched.
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.SubscriptionID == "" {
		return fmt.Errorf("subscription_id is required")
	}
	if _, err := types.ParseScope(c.Scope); err != nil {
		return err
	}
	if _, err := types.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.CredentialWindowDays < 0 {
		return fmt.Errorf("credential_window_days must not be negative, got %d", c.CredentialWindowDays)
	}
	for name := range c.Environments {
		if name != string(types.EnvDev) && name != string(types.EnvProd) {
			return fmt.Errorf("unknown environment %q in overrides (must be dev or prod)", name)
		}
	}
	return nil
}

// Policy builds the immutable run policy from defaults plus overrides.
func (c *Config) Policy() (*policy.Policy, error) {
	p := policy.Default()

	for name, override := range c.Environments {
		env := types.Environment(name)
		ep := p.Environments[env]
		if len(override.RequiredTags) > 0 {
			ep.RequiredTags = override.RequiredTags
		}
		if len(override.AllowedPorts) > 0 {
			ep.AllowedPorts = policy.PortSet(override.AllowedPorts)
		}
		if override.SafeSource != "" {
			ep.SafeSource = override.SafeSource
		}
		p.Environments[env] = ep
	}

	if len(c.TeamRules) > 0 {
		rules := make([]policy.TeamRule, 0, len(c.TeamRules))
		for i, rc := range c.TeamRules {
			re, err := regexp.Compile(rc.Pattern)
			if err != nil {
				return nil, fmt.Errorf("team rule %d: invalid pattern %q: %w", i, rc.Pattern, err)
			}
			rules = append(rules, policy.TeamRule{Pattern: re, Team: rc.Team})
		}
		p.TeamRules = rules
	}

	if c.AppPattern != "" {
		re, err := regexp.Compile(c.AppPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid app_pattern %q: %w", c.AppPattern, err)
		}
		p.AppPattern = re
	}

	p.CredentialWindow = time.Duration(c.CredentialWindowDays) * 24 * time.Hour

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	return p, nil
}
