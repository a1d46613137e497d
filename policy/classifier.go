package policy

import (
	"strings"

	"github.com/wakethelight/driftaudit/types"
)

// envPatterns are tried strictly in order; first match wins.
var envPatterns = []struct {
	substr string
	env    types.Environment
}{
	{"-dev", types.EnvDev},
	{"-prod", types.EnvProd},
}

// Classify infers the environment from the scope label, falling back to
// the object name. Objects matching neither pattern are EnvOther.
func Classify(scopeLabel, name string) types.Environment {
	for _, label := range []string{scopeLabel, name} {
		for _, p := range envPatterns {
			if strings.Contains(label, p.substr) {
				return p.env
			}
		}
	}
	return types.EnvOther
}
