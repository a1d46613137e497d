package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakethelight/driftaudit/types"
)

func sampleHeader() Header {
	return Header{
		RunID:     "6f1b0a3e-0000-4000-8000-000000000000",
		StartedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Check:     "tags",
		Scope:     types.ScopeAll,
		Mode:      types.ModeAudit,
	}
}

func sampleFindings() []types.Finding {
	return []types.Finding{
		{
			ObjectName:  "vm1",
			Environment: types.EnvDev,
			Check:       types.CheckMissingTag,
			Detail:      "required tag Environment missing",
			Remediation: &types.Remediation{Kind: types.RemediateSetTag, TagKey: "Environment", TagValue: "dev"},
			Status:      types.StatusRecorded,
		},
		{
			ObjectName:  "sa1",
			Environment: types.EnvProd,
			Check:       types.CheckMissingTeam,
			Detail:      "Team tag missing, resource group owned by StorageTeam",
			Remediation: &types.Remediation{Kind: types.RemediateSetTag, TagKey: "Team", TagValue: "StorageTeam"},
			Status:      types.StatusApplyFailed,
			Error:       "throttled",
		},
		{
			ObjectName:  "vm2",
			Environment: types.EnvDev,
			Check:       types.CheckMissingTag,
			Detail:      "required tag Owner missing",
			Remediation: &types.Remediation{Kind: types.RemediateSetTag, TagKey: "Owner", TagValue: "DevOpsTeam"},
			Status:      types.StatusApplied,
		},
	}
}

func TestWriteFlat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFlat(&buf, sampleHeader(), sampleFindings()))
	out := buf.String()

	// Header block precedes all findings
	assert.Contains(t, out, "run:      6f1b0a3e")
	assert.Contains(t, out, "time:     2026-08-23T10:00:00Z")
	assert.Contains(t, out, "scope:    all")
	assert.Contains(t, out, "mode:     audit")
	assert.Contains(t, out, "findings: 3")

	// One line per finding, chronological
	assert.Contains(t, out, "[recorded] vm1 (dev): required tag Environment missing -> set Environment=dev")
	assert.Contains(t, out, "[apply_failed] sa1 (prod): Team tag missing, resource group owned by StorageTeam -> set Team=StorageTeam (error: throttled)")
	assert.Less(t, strings.Index(out, "vm1"), strings.Index(out, "sa1"))
	assert.Less(t, strings.Index(out, "sa1"), strings.Index(out, "vm2"))
}

func TestWriteFlat_Reproducible(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, WriteFlat(&a, sampleHeader(), sampleFindings()))
	require.NoError(t, WriteFlat(&b, sampleHeader(), sampleFindings()))
	assert.Equal(t, a.String(), b.String())
}

func TestWriteGrouped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGrouped(&buf, sampleHeader(), sampleFindings()))
	out := buf.String()

	assert.Contains(t, out, "--- environment: dev (2 findings) ---")
	assert.Contains(t, out, "--- environment: prod (1 findings) ---")
	assert.NotContains(t, out, "environment: other")

	// dev section groups vm1 and vm2 together, before prod
	devIdx := strings.Index(out, "environment: dev")
	prodIdx := strings.Index(out, "environment: prod")
	assert.Less(t, devIdx, prodIdx)
	assert.Less(t, strings.Index(out, "vm2"), prodIdx)
}

func TestWriteGrouped_EmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGrouped(&buf, sampleHeader(), nil))
	out := buf.String()

	assert.Contains(t, out, "findings: 0")
	assert.NotContains(t, out, "--- environment")
}

func TestRuleAndRecordRemediationLines(t *testing.T) {
	findings := []types.Finding{
		{
			ObjectName:  "nsg-app1-dev",
			Environment: types.EnvDev,
			Check:       types.CheckPermissiveSource,
			Detail:      "rule allow-ssh: source open to any on port 22",
			Remediation: &types.Remediation{
				Kind: types.RemediateReplaceRule,
				Rule: &types.SecurityRule{Name: "allow-ssh", Priority: 100, SourcePrefix: "10.10.0.0/16"},
			},
			Status: types.StatusRecorded,
		},
		{
			ObjectName:  "www",
			Environment: types.EnvOther,
			Check:       types.CheckMissingRecord,
			Detail:      "record www A missing from zone backup.example.com",
			Remediation: &types.Remediation{
				Kind:   types.RemediateCreateRecord,
				Record: &types.RecordSet{Zone: "backup.example.com", Name: "www", Type: "A"},
			},
			Status: types.StatusRecorded,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFlat(&buf, sampleHeader(), findings))
	out := buf.String()

	assert.Contains(t, out, "replace rule allow-ssh: source 10.10.0.0/16, priority 100 unchanged")
	assert.Contains(t, out, "create www A in zone backup.example.com")
}
