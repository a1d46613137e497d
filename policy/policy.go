// Package policy implements the environment-aware compliance engine:
// classification, tag evaluation, NSG rule evaluation, credential
// lifecycle checks, and DNS replication diffing. The engine is pure
// evaluation; applying corrections is the executor's job.
package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/wakethelight/driftaudit/types"
)

// EnvironmentPolicy is the ruleset for one environment. Immutable for a
// given run; selected once per object by classification.
type EnvironmentPolicy struct {
	RequiredTags map[string]string
	AllowedPorts map[string]bool // keyed by decimal port string
	SafeSource   string          // CIDR forced onto remediated rules
}

// AllowsPort reports whether a destination port entry is permitted.
// Non-numeric entries (wildcards, ranges) are never in the allowed set.
func (ep EnvironmentPolicy) AllowsPort(port string) bool {
	return ep.AllowedPorts[port]
}

// TeamRule maps a scope-label pattern to an owning team. Rules are
// evaluated strictly in order; the first match wins and later rules are
// never considered.
type TeamRule struct {
	Pattern *regexp.Regexp
	Team    string
}

// Policy is the full per-run configuration: one ruleset per environment
// plus the cross-environment inference rules. Constructed once at process
// start and passed explicitly; no ambient state.
type Policy struct {
	Environments     map[types.Environment]EnvironmentPolicy
	TeamRules        []TeamRule // ordered, first match wins
	AppPattern       *regexp.Regexp
	CredentialWindow time.Duration // flag credentials expiring within this window
}

// ForEnvironment returns the ruleset for a classified environment.
func (p *Policy) ForEnvironment(env types.Environment) (EnvironmentPolicy, bool) {
	ep, ok := p.Environments[env]
	return ep, ok
}

// ResolveTeam runs the ordered team rules against a scope label.
func (p *Policy) ResolveTeam(scopeLabel string) (string, bool) {
	for _, rule := range p.TeamRules {
		if rule.Pattern.MatchString(scopeLabel) {
			return rule.Team, true
		}
	}
	return "", false
}

// DeriveApp extracts the application name from a scope label
// (rg-<app>-... convention). Empty when not derivable.
func (p *Policy) DeriveApp(scopeLabel string) string {
	m := p.AppPattern.FindStringSubmatch(scopeLabel)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// PortSet builds an allowed-port set from a list of port numbers.
func PortSet(ports []int) map[string]bool {
	set := make(map[string]bool, len(ports))
	for _, p := range ports {
		set[strconv.Itoa(p)] = true
	}
	return set
}

// Default returns the built-in policy tables. Pattern order in the team
// rules is load-bearing: rg-app42 must resolve via ^rg-app\d+ before
// ^rg-.*-data gets a chance.
func Default() *Policy {
	return &Policy{
		Environments: map[types.Environment]EnvironmentPolicy{
			types.EnvDev: {
				RequiredTags: map[string]string{
					"Environment": "dev",
					"CostCenter":  "R&D",
					"Owner":       "DevOpsTeam",
				},
				AllowedPorts: PortSet([]int{22, 3389}),
				SafeSource:   "10.10.0.0/16",
			},
			types.EnvProd: {
				RequiredTags: map[string]string{
					"Environment": "prod",
					"CostCenter":  "Operations",
					"Owner":       "ProdOpsTeam",
				},
				AllowedPorts: PortSet([]int{443, 1433}),
				SafeSource:   "10.20.0.0/16",
			},
		},
		TeamRules: []TeamRule{
			{Pattern: regexp.MustCompile(`^rg-aci`), Team: "ContainerTeam"},
			{Pattern: regexp.MustCompile(`^rg-dns`), Team: "NetworkTeam"},
			{Pattern: regexp.MustCompile(`^rg-storage`), Team: "StorageTeam"},
			{Pattern: regexp.MustCompile(`^rg-app\d+`), Team: "AppTeam"},
			{Pattern: regexp.MustCompile(`^rg-.*-data`), Team: "DataTeam"},
		},
		AppPattern:       regexp.MustCompile(`^rg-([A-Za-z0-9]+)-`),
		CredentialWindow: 30 * 24 * time.Hour,
	}
}

// Validate checks a policy is usable before any object is fetched.
func (p *Policy) Validate() error {
	if len(p.Environments) == 0 {
		return fmt.Errorf("policy has no environments")
	}
	for env, ep := range p.Environments {
		if ep.SafeSource == "" {
			return fmt.Errorf("environment %s: safe source CIDR is required", env)
		}
	}
	if p.AppPattern == nil {
		return fmt.Errorf("app pattern is required")
	}
	for i, rule := range p.TeamRules {
		if rule.Pattern == nil {
			return fmt.Errorf("team rule %d: pattern is required", i)
		}
		if rule.Team == "" {
			return fmt.Errorf("team rule %d: team is required", i)
		}
	}
	return nil
}
