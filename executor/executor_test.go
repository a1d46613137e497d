package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakethelight/driftaudit/types"
)

// MockProvider records mutating calls for assertions
type MockProvider struct {
	tagCalls     []TagCall
	ruleCalls    []RuleCall
	recordCalls  []types.RecordSet
	failNextWith error
}

type TagCall struct {
	ResourceID string
	Key        string
	Value      string
}

type RuleCall struct {
	ResourceGroup string
	GroupName     string
	Rule          types.SecurityRule
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) ListResources(ctx context.Context) ([]types.Resource, error) {
	return nil, nil
}

func (m *MockProvider) ListSecurityGroups(ctx context.Context) ([]types.SecurityGroup, error) {
	return nil, nil
}

func (m *MockProvider) ListRecordSets(ctx context.Context, zone string) ([]types.RecordSet, error) {
	return nil, nil
}

func (m *MockProvider) ListAppCredentials(ctx context.Context) ([]types.AppCredential, error) {
	return nil, nil
}

func (m *MockProvider) takeFailure() error {
	err := m.failNextWith
	m.failNextWith = nil
	return err
}

func (m *MockProvider) SetResourceTag(ctx context.Context, id, key, value string) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.tagCalls = append(m.tagCalls, TagCall{ResourceID: id, Key: key, Value: value})
	return nil
}

func (m *MockProvider) ReplaceSecurityRule(ctx context.Context, rg, group string, rule types.SecurityRule) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.ruleCalls = append(m.ruleCalls, RuleCall{ResourceGroup: rg, GroupName: group, Rule: rule})
	return nil
}

func (m *MockProvider) CreateRecordSet(ctx context.Context, record types.RecordSet) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.recordCalls = append(m.recordCalls, record)
	return nil
}

func (m *MockProvider) mutationCount() int {
	return len(m.tagCalls) + len(m.ruleCalls) + len(m.recordCalls)
}

func tagFinding(id, key, value string) types.Finding {
	return types.Finding{
		ObjectID:   id,
		ObjectName: id,
		Check:      types.CheckMissingTag,
		Detail:     "required tag " + key + " missing",
		Remediation: &types.Remediation{
			Kind: types.RemediateSetTag, TagKey: key, TagValue: value,
		},
		Status: types.StatusPending,
	}
}

func TestApply_AuditNeverMutates(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeAudit, RunID: "r1"})

	findings := []types.Finding{
		tagFinding("vm1", "Environment", "dev"),
		tagFinding("vm1", "Team", "AppTeam"),
	}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	assert.Zero(t, provider.mutationCount())
	assert.Equal(t, 2, result.Recorded)
	assert.Zero(t, result.Applied)
	for _, f := range result.Findings {
		assert.Equal(t, types.StatusRecorded, f.Status)
	}
}

func TestApply_RemediateOneCallPerFinding(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeRemediate, RunID: "r1"})

	findings := []types.Finding{
		tagFinding("vm1", "Environment", "dev"),
		tagFinding("vm2", "Owner", "DevOpsTeam"),
	}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	require.Len(t, provider.tagCalls, 2)
	assert.Equal(t, TagCall{ResourceID: "vm1", Key: "Environment", Value: "dev"}, provider.tagCalls[0])
	assert.Equal(t, TagCall{ResourceID: "vm2", Key: "Owner", Value: "DevOpsTeam"}, provider.tagCalls[1])
	assert.Equal(t, 2, result.Applied)
}

func TestApply_MutationFailureRecordedAndRunContinues(t *testing.T) {
	provider := &MockProvider{failNextWith: errors.New("conflict")}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeRemediate, RunID: "r1"})

	findings := []types.Finding{
		tagFinding("vm1", "Environment", "dev"),
		tagFinding("vm2", "Environment", "dev"),
	}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, types.StatusApplyFailed, result.Findings[0].Status)
	assert.Equal(t, "conflict", result.Findings[0].Error)
	assert.Equal(t, types.StatusApplied, result.Findings[1].Status)
}

func TestApply_ReplaceRule(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeRemediate, RunID: "r1"})

	rule := types.SecurityRule{
		Name: "allow-ssh", Priority: 100, Direction: "Inbound", Access: "Allow",
		Protocol: "Tcp", SourcePrefix: "10.10.0.0/16", DestinationPrefix: "*", PortRange: "22",
	}
	findings := []types.Finding{{
		ObjectID:    "rg-app1-dev/nsg-app1-dev",
		ObjectName:  "nsg-app1-dev",
		Scope:       "rg-app1-dev",
		Check:       types.CheckPermissiveSource,
		Detail:      "rule allow-ssh: source open to any on port 22",
		Remediation: &types.Remediation{Kind: types.RemediateReplaceRule, Rule: &rule},
		Status:      types.StatusPending,
	}}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	require.Len(t, provider.ruleCalls, 1)
	assert.Equal(t, "rg-app1-dev", provider.ruleCalls[0].ResourceGroup)
	assert.Equal(t, "nsg-app1-dev", provider.ruleCalls[0].GroupName)
	assert.Equal(t, rule, provider.ruleCalls[0].Rule)
	assert.Equal(t, 1, result.Applied)
}

func TestApply_RecordOnlyFindingNeverMutates(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeRemediate, RunID: "r1"})

	findings := []types.Finding{{
		ObjectID: "app-1",
		Check:    types.CheckCredentialExpiry,
		Detail:   "credential k1 expired on 2026-01-01",
		Status:   types.StatusPending,
	}}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	assert.Zero(t, provider.mutationCount())
	assert.Equal(t, 1, result.Recorded)
	assert.Equal(t, types.StatusRecorded, result.Findings[0].Status)
}

func TestApply_CreateRecord(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeRemediate, RunID: "r1"})

	record := types.RecordSet{Zone: "backup.example.com", Name: "www", Type: "A", TTL: 300, Values: []string{"10.0.0.1"}}
	findings := []types.Finding{{
		ObjectID:    "backup.example.com/www/A",
		ObjectName:  "www",
		Scope:       "backup.example.com",
		Check:       types.CheckMissingRecord,
		Detail:      "record www A missing from zone backup.example.com",
		Remediation: &types.Remediation{Kind: types.RemediateCreateRecord, Record: &record},
		Status:      types.StatusPending,
	}}

	result, err := engine.Apply(context.Background(), findings)
	require.NoError(t, err)

	require.Len(t, provider.recordCalls, 1)
	assert.Equal(t, record, provider.recordCalls[0])
	assert.Equal(t, 1, result.Applied)
}

func TestApply_InvalidFindingAborts(t *testing.T) {
	provider := &MockProvider{}
	engine := NewEngine(provider, nil, Options{Mode: types.ModeAudit, RunID: "r1"})

	_, err := engine.Apply(context.Background(), []types.Finding{{ObjectID: ""}})
	assert.Error(t, err)
}
