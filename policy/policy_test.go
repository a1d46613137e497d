package policy

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakethelight/driftaudit/types"
)

func TestResolveTeam_OrderSensitive(t *testing.T) {
	p := Default()

	tests := []struct {
		scopeLabel string
		wantTeam   string
		wantMatch  bool
	}{
		// rg-app42 matches ^rg-app\d+ and must never fall through to
		// ^rg-.*-data even if a later pattern would also match.
		{"rg-app42", "AppTeam", true},
		{"rg-app42-data", "AppTeam", true},
		{"rg-foo-data", "DataTeam", true},
		{"rg-aci-cluster", "ContainerTeam", true},
		{"rg-dns-zones", "NetworkTeam", true},
		{"rg-storage-prod", "StorageTeam", true},
		{"rg-unrelated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.scopeLabel, func(t *testing.T) {
			team, matched := p.ResolveTeam(tt.scopeLabel)
			assert.Equal(t, tt.wantMatch, matched)
			assert.Equal(t, tt.wantTeam, team)
		})
	}
}

func TestDeriveApp(t *testing.T) {
	p := Default()

	assert.Equal(t, "app1", p.DeriveApp("rg-app1-dev"))
	assert.Equal(t, "storage", p.DeriveApp("rg-storage-prod"))
	assert.Equal(t, "", p.DeriveApp("production-group"))
	assert.Equal(t, "", p.DeriveApp("rg-noenv"))
}

func TestPortSet(t *testing.T) {
	set := PortSet([]int{22, 3389})
	assert.True(t, set["22"])
	assert.True(t, set["3389"])
	assert.False(t, set["80"])
}

func TestAllowsPort(t *testing.T) {
	ep := EnvironmentPolicy{AllowedPorts: PortSet([]int{443})}

	assert.True(t, ep.AllowsPort("443"))
	assert.False(t, ep.AllowsPort("80"))
	// Wildcards and ranges are never in the allowed set
	assert.False(t, ep.AllowsPort("*"))
	assert.False(t, ep.AllowsPort("1000-2000"))
}

func TestDefaultPolicyValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_Errors(t *testing.T) {
	noEnvs := &Policy{AppPattern: regexp.MustCompile(`^rg-`)}
	assert.Error(t, noEnvs.Validate())

	noSafeSource := Default()
	ep := noSafeSource.Environments[types.EnvDev]
	ep.SafeSource = ""
	noSafeSource.Environments[types.EnvDev] = ep
	assert.Error(t, noSafeSource.Validate())

	noTeam := Default()
	noTeam.TeamRules = append(noTeam.TeamRules, TeamRule{Pattern: regexp.MustCompile(`^rg-x`)})
	assert.Error(t, noTeam.Validate())
}
