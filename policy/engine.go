package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wakethelight/driftaudit/telemetry"
	"github.com/wakethelight/driftaudit/types"
)

// Engine evaluates objects against the policy and emits findings.
//
// The engine is evaluate-violations-only: compliant objects produce
// nothing. It never mutates anything; corrections are carried inside
// findings for the executor to apply.
type Engine struct {
	policy *Policy
	logger *telemetry.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewEngine creates a compliance engine for one run's policy.
func NewEngine(policy *Policy) *Engine {
	return &Engine{
		policy: policy,
		logger: telemetry.NewLogger("compliance-engine"),
		tracer: otel.Tracer("compliance-engine"),
		now:    time.Now,
	}
}

// EvaluateTags checks one resource for missing required tags, then a
// derivable App tag, then an inferrable Team tag. The check order is
// fixed for log determinism; the checks themselves are independent.
func (e *Engine) EvaluateTags(ctx context.Context, resource types.Resource) []types.Finding {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate_tags",
		trace.WithAttributes(attribute.String("resource.id", resource.ID)))
	defer span.End()

	env := Classify(resource.ResourceGroup, resource.Name)
	ep, ok := e.policy.ForEnvironment(env)

	var findings []types.Finding

	if ok {
		// Required tags, in sorted key order so output is reproducible.
		keys := make([]string, 0, len(ep.RequiredTags))
		for k := range ep.RequiredTags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			if resource.HasTag(key) {
				continue
			}
			findings = append(findings, e.newFinding(resource, env, types.CheckMissingTag,
				fmt.Sprintf("required tag %s missing", key),
				&types.Remediation{Kind: types.RemediateSetTag, TagKey: key, TagValue: ep.RequiredTags[key]}))
		}
	}

	if !resource.HasTag("App") {
		if app := e.policy.DeriveApp(resource.ResourceGroup); app != "" {
			findings = append(findings, e.newFinding(resource, env, types.CheckMissingApp,
				fmt.Sprintf("App tag missing, derived %q from resource group", app),
				&types.Remediation{Kind: types.RemediateSetTag, TagKey: "App", TagValue: app}))
		}
	}

	if !resource.HasTag("Team") {
		if team, matched := e.policy.ResolveTeam(resource.ResourceGroup); matched {
			findings = append(findings, e.newFinding(resource, env, types.CheckMissingTeam,
				fmt.Sprintf("Team tag missing, resource group owned by %s", team),
				&types.Remediation{Kind: types.RemediateSetTag, TagKey: "Team", TagValue: team}))
		}
	}

	e.logFindings(ctx, resource.ID, findings)
	return findings
}

// EvaluateSecurityGroup checks every rule in an NSG. Only inbound Allow
// rules are in scope; a rule listing N ports can yield up to N findings.
func (e *Engine) EvaluateSecurityGroup(ctx context.Context, group types.SecurityGroup) []types.Finding {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate_nsg",
		trace.WithAttributes(attribute.String("nsg.name", group.Name)))
	defer span.End()

	env := Classify(group.ResourceGroup, group.Name)
	ep, ok := e.policy.ForEnvironment(env)
	if !ok {
		return nil
	}

	var findings []types.Finding
	for _, rule := range group.Rules {
		findings = append(findings, e.evaluateRule(group, rule, env, ep)...)
	}

	e.logFindings(ctx, group.Name, findings)
	return findings
}

// evaluateRule checks a single rule port by port. Permissive source and
// disallowed port are independent triggers; either alone is enough, and
// both together still produce a single finding for that port.
func (e *Engine) evaluateRule(group types.SecurityGroup, rule types.SecurityRule, env types.Environment, ep EnvironmentPolicy) []types.Finding {
	if !rule.IsInboundAllow() {
		return nil
	}

	permissiveSource := rule.SourcePrefix == "*"

	var findings []types.Finding
	for _, port := range rule.Ports() {
		badPort := !ep.AllowsPort(port)
		if !permissiveSource && !badPort {
			continue
		}

		detail := ""
		switch {
		case permissiveSource && badPort:
			detail = fmt.Sprintf("rule %s: source open to any and port %s not allowed", rule.Name, port)
		case permissiveSource:
			detail = fmt.Sprintf("rule %s: source open to any on port %s", rule.Name, port)
		default:
			detail = fmt.Sprintf("rule %s: port %s not allowed", rule.Name, port)
		}

		findings = append(findings, types.Finding{
			ObjectID:    group.ResourceGroup + "/" + group.Name,
			ObjectName:  group.Name,
			Scope:       group.ResourceGroup,
			Environment: env,
			Check:       ruleCheck(permissiveSource),
			Detail:      detail,
			Remediation: &types.Remediation{
				Kind: types.RemediateReplaceRule,
				Rule: replacementRule(rule, ep),
			},
			Status:     types.StatusPending,
			DetectedAt: e.now(),
		})
	}
	return findings
}

func ruleCheck(permissiveSource bool) string {
	if permissiveSource {
		return types.CheckPermissiveSource
	}
	return types.CheckDisallowedPort
}

// replacementRule builds the wholesale replacement: same name, priority,
// protocol, and direction, ports preserved, source forced to the safe
// CIDR, destination forced to wildcard. Priority must not change, or the
// rule would reorder against others in the group.
func replacementRule(rule types.SecurityRule, ep EnvironmentPolicy) *types.SecurityRule {
	return &types.SecurityRule{
		Name:              rule.Name,
		Priority:          rule.Priority,
		Direction:         rule.Direction,
		Access:            rule.Access,
		Protocol:          rule.Protocol,
		SourcePrefix:      ep.SafeSource,
		DestinationPrefix: "*",
		PortRange:         rule.PortRange,
	}
}

// EvaluateCredentials flags expired credentials and those expiring within
// the policy window. Rotation stays manual, so these findings carry no
// remediation and are record-only in both modes.
func (e *Engine) EvaluateCredentials(ctx context.Context, creds []types.AppCredential) []types.Finding {
	ctx, span := e.tracer.Start(ctx, "engine.evaluate_credentials",
		trace.WithAttributes(attribute.Int("credentials", len(creds))))
	defer span.End()

	now := e.now()
	deadline := now.Add(e.policy.CredentialWindow)

	var findings []types.Finding
	for _, cred := range creds {
		var detail string
		switch {
		case cred.EndDate.Before(now):
			detail = fmt.Sprintf("credential %s expired on %s", cred.KeyID, cred.EndDate.Format("2006-01-02"))
		case cred.EndDate.Before(deadline):
			days := int(cred.EndDate.Sub(now).Hours() / 24)
			detail = fmt.Sprintf("credential %s expires in %d days", cred.KeyID, days)
		default:
			continue
		}

		findings = append(findings, types.Finding{
			ObjectID:    cred.AppID,
			ObjectName:  cred.AppName,
			Environment: types.EnvOther,
			Check:       types.CheckCredentialExpiry,
			Detail:      detail,
			Status:      types.StatusPending,
			DetectedAt:  now,
		})
	}

	e.logFindings(ctx, "credentials", findings)
	return findings
}

// DiffZones finds record sets present in the primary zone but absent from
// the secondary. Records already in the secondary are never touched, even
// when their values differ: replication is mirror-add only, like the tag
// engine.
func (e *Engine) DiffZones(ctx context.Context, primary, secondary []types.RecordSet, secondaryZone string) []types.Finding {
	ctx, span := e.tracer.Start(ctx, "engine.diff_zones",
		trace.WithAttributes(
			attribute.Int("primary_records", len(primary)),
			attribute.Int("secondary_records", len(secondary))))
	defer span.End()

	existing := make(map[string]bool, len(secondary))
	for _, rs := range secondary {
		existing[rs.Key()] = true
	}

	var findings []types.Finding
	for _, rs := range primary {
		if existing[rs.Key()] {
			continue
		}

		replica := rs
		replica.Zone = secondaryZone

		findings = append(findings, types.Finding{
			ObjectID:    secondaryZone + "/" + rs.Key(),
			ObjectName:  rs.Name,
			Scope:       secondaryZone,
			Environment: types.EnvOther,
			Check:       types.CheckMissingRecord,
			Detail:      fmt.Sprintf("record %s %s missing from zone %s", rs.Name, rs.Type, secondaryZone),
			Remediation: &types.Remediation{Kind: types.RemediateCreateRecord, Record: &replica},
			Status:      types.StatusPending,
			DetectedAt:  e.now(),
		})
	}

	e.logFindings(ctx, secondaryZone, findings)
	return findings
}

func (e *Engine) newFinding(resource types.Resource, env types.Environment, check, detail string, rem *types.Remediation) types.Finding {
	return types.Finding{
		ObjectID:    resource.ID,
		ObjectName:  resource.Name,
		Scope:       resource.ResourceGroup,
		Environment: env,
		Check:       check,
		Detail:      detail,
		Remediation: rem,
		Status:      types.StatusPending,
		DetectedAt:  e.now(),
	}
}

func (e *Engine) logFindings(ctx context.Context, objectID string, findings []types.Finding) {
	for _, f := range findings {
		e.logger.LogFinding(ctx, objectID, f.Check, f.Detail)
	}
}
