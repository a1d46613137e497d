// Package report renders the findings log. The log is a pure projection
// of the findings slice: given the same findings and header, the output
// is byte-identical.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/wakethelight/driftaudit/types"
)

// Header is the fixed block preceding all findings.
type Header struct {
	RunID     string
	StartedAt time.Time
	Check     string // tags, nsg, dns, creds
	Scope     types.Scope
	Mode      types.Mode
}

// environment section order in the grouped variant
var groupOrder = []types.Environment{types.EnvDev, types.EnvProd, types.EnvOther}

// WriteFlat writes the header and one line per finding in chronological
// (evaluation) order.
func WriteFlat(w io.Writer, h Header, findings []types.Finding) error {
	if err := writeHeader(w, h, len(findings)); err != nil {
		return err
	}

	for _, f := range findings {
		if err := writeLine(w, f); err != nil {
			return err
		}
	}
	return nil
}

// WriteGrouped writes the header, then findings grouped by classified
// environment. Within a group, evaluation order is preserved. Empty
// groups are omitted.
func WriteGrouped(w io.Writer, h Header, findings []types.Finding) error {
	if err := writeHeader(w, h, len(findings)); err != nil {
		return err
	}

	for _, env := range groupOrder {
		var group []types.Finding
		for _, f := range findings {
			if f.Environment == env {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "\n--- environment: %s (%d findings) ---\n", env, len(group)); err != nil {
			return err
		}
		for _, f := range group {
			if err := writeLine(w, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeader(w io.Writer, h Header, count int) error {
	_, err := fmt.Fprintf(w,
		"==================================================\n"+
			" driftaudit compliance report\n"+
			" run:      %s\n"+
			" time:     %s\n"+
			" check:    %s\n"+
			" scope:    %s\n"+
			" mode:     %s\n"+
			" findings: %d\n"+
			"==================================================\n",
		h.RunID, h.StartedAt.UTC().Format(time.RFC3339), h.Check, h.Scope, h.Mode, count)
	return err
}

func writeLine(w io.Writer, f types.Finding) error {
	line := fmt.Sprintf("[%s] %s (%s): %s", f.Status, f.ObjectName, f.Environment, f.Detail)

	if f.Remediation != nil {
		line += " -> " + describeRemediation(f.Remediation)
	}
	if f.Error != "" {
		line += fmt.Sprintf(" (error: %s)", f.Error)
	}

	_, err := fmt.Fprintln(w, line)
	return err
}

func describeRemediation(rem *types.Remediation) string {
	switch rem.Kind {
	case types.RemediateSetTag:
		return fmt.Sprintf("set %s=%s", rem.TagKey, rem.TagValue)
	case types.RemediateReplaceRule:
		if rem.Rule == nil {
			return "replace rule"
		}
		return fmt.Sprintf("replace rule %s: source %s, priority %d unchanged",
			rem.Rule.Name, rem.Rule.SourcePrefix, rem.Rule.Priority)
	case types.RemediateCreateRecord:
		if rem.Record == nil {
			return "create record"
		}
		return fmt.Sprintf("create %s %s in zone %s", rem.Record.Name, rem.Record.Type, rem.Record.Zone)
	default:
		return rem.Kind
	}
}
