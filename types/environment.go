package types

import "fmt"

// Environment is the deployment environment a resource belongs to,
// inferred from its scope label and name.
type Environment string

const (
	EnvDev   Environment = "dev"
	EnvProd  Environment = "prod"
	EnvOther Environment = "other" // could not be classified
)

// Scope is the set of environments a run targets.
type Scope string

const (
	ScopeDev  Scope = "dev"
	ScopeProd Scope = "prod"
	ScopeAll  Scope = "all" // no filtering
)

// ParseScope validates a user-supplied target environment.
// Invalid values are rejected at the boundary, never coerced.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeDev, ScopeProd, ScopeAll:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("invalid target environment %q (must be dev, prod, or all)", s)
	}
}

// Includes reports whether an environment falls inside the run scope.
// Unclassified objects are only visited on unscoped runs.
func (s Scope) Includes(env Environment) bool {
	if s == ScopeAll {
		return true
	}
	return string(s) == string(env)
}

// Mode selects between evaluate-and-log and evaluate-and-correct.
type Mode string

const (
	ModeAudit     Mode = "audit"     // never mutate
	ModeRemediate Mode = "remediate" // one mutating call per finding
)

// ParseMode validates a user-supplied run mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAudit, ModeRemediate:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be audit or remediate)", s)
	}
}
