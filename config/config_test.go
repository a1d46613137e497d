package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakethelight/driftaudit/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driftaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "azure", cfg.Provider)
	assert.Equal(t, "all", cfg.Scope)
	assert.Equal(t, "audit", cfg.Mode)
	assert.Equal(t, 30, cfg.CredentialWindowDays)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	noVersion := writeConfig(t, `
subscription_id: sub-123
`)
	_, err := Load(noVersion)
	assert.ErrorContains(t, err, "version")

	noSub := writeConfig(t, `
version: "1"
`)
	_, err = Load(noSub)
	assert.ErrorContains(t, err, "subscription_id")
}

func TestLoad_InvalidScopeRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
scope: staging
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid target environment")
}

func TestLoad_InvalidModeRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
mode: dry-run
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid mode")
}

func TestLoad_NegativeCredentialWindowRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
credential_window_days: -7
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "credential_window_days")
}

func TestLoad_UnknownEnvironmentRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
environments:
  staging:
    safe_source: "10.0.0.0/8"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown environment")
}

func TestPolicy_Defaults(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.Policy()
	require.NoError(t, err)

	dev, ok := p.ForEnvironment(types.EnvDev)
	require.True(t, ok)
	assert.Equal(t, "dev", dev.RequiredTags["Environment"])
	assert.True(t, dev.AllowsPort("22"))
	assert.Equal(t, 30*24*time.Hour, p.CredentialWindow)
}

func TestPolicy_Overrides(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
credential_window_days: 7
environments:
  prod:
    allowed_ports: [443, 8443]
    safe_source: "172.16.0.0/12"
team_rules:
  - pattern: "^rg-ml"
    team: MLTeam
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.Policy()
	require.NoError(t, err)

	prod, ok := p.ForEnvironment(types.EnvProd)
	require.True(t, ok)
	assert.True(t, prod.AllowsPort("8443"))
	assert.False(t, prod.AllowsPort("1433"))
	assert.Equal(t, "172.16.0.0/12", prod.SafeSource)

	// Override replaces the whole ordered rule list
	team, matched := p.ResolveTeam("rg-ml-dev")
	assert.True(t, matched)
	assert.Equal(t, "MLTeam", team)
	_, matched = p.ResolveTeam("rg-storage-prod")
	assert.False(t, matched)

	assert.Equal(t, 7*24*time.Hour, p.CredentialWindow)
}

func TestPolicy_InvalidPatternRejected(t *testing.T) {
	path := writeConfig(t, `
version: "1"
subscription_id: sub-123
team_rules:
  - pattern: "["
    team: BadTeam
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Policy()
	assert.Error(t, err)
}
