package types

import (
	"fmt"
	"time"
)

// Check identifies the specific non-compliance a finding records.
const (
	CheckMissingTag       = "missing_tag"
	CheckMissingApp       = "missing_app_tag"
	CheckMissingTeam      = "missing_team_tag"
	CheckPermissiveSource = "permissive_source"
	CheckDisallowedPort   = "disallowed_port"
	CheckCredentialExpiry = "credential_expiry"
	CheckMissingRecord    = "missing_record"
)

// Finding status progression: Pending -> Recorded | Applied | ApplyFailed.
// A finding is never mutated after it reaches a terminal status.
const (
	StatusPending     = "pending"
	StatusRecorded    = "recorded"
	StatusApplied     = "applied"
	StatusApplyFailed = "apply_failed"
)

// Remediation kinds. Findings without a remediation are record-only.
const (
	RemediateSetTag       = "set_tag"
	RemediateReplaceRule  = "replace_rule"
	RemediateCreateRecord = "create_record"
)

// Remediation is the minimal corrective action for a finding.
type Remediation struct {
	Kind     string        `json:"kind"`
	TagKey   string        `json:"tag_key,omitempty"`
	TagValue string        `json:"tag_value,omitempty"`
	Rule     *SecurityRule `json:"rule,omitempty"`   // full replacement rule
	Record   *RecordSet    `json:"record,omitempty"` // record set to create
}

// Finding is one recorded instance of non-compliance plus its proposed
// or applied correction. Appended to an ordered log, never mutated after
// the executor stamps a terminal status.
type Finding struct {
	ObjectID    string       `json:"object_id"`
	ObjectName  string       `json:"object_name"`
	Scope       string       `json:"scope"` // resource group or other grouping label
	Environment Environment  `json:"environment"`
	Check       string       `json:"check"`
	Detail      string       `json:"detail"`
	Remediation *Remediation `json:"remediation,omitempty"`
	Status      string       `json:"status"`
	Error       string       `json:"error,omitempty"`
	DetectedAt  time.Time    `json:"detected_at"`
}

// Validate ensures the finding has required fields.
func (f *Finding) Validate() error {
	if f.ObjectID == "" {
		return fmt.Errorf("finding object ID cannot be empty")
	}
	if f.Check == "" {
		return fmt.Errorf("finding check cannot be empty")
	}
	if f.Detail == "" {
		return fmt.Errorf("finding detail cannot be empty")
	}
	return nil
}

// Remediable reports whether the finding carries a corrective action.
func (f *Finding) Remediable() bool {
	return f.Remediation != nil
}
