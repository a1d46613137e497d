package main

import (
	"github.com/spf13/cobra"

	"github.com/wakethelight/driftaudit/journal"
	"github.com/wakethelight/driftaudit/policy"
	"github.com/wakethelight/driftaudit/types"
)

// nsgCmd audits network security group rules
var nsgCmd = &cobra.Command{
	Use:   "nsg",
	Short: "Audit network security group rules",
	Long: `Enumerate network security groups and check every inbound Allow
rule against the environment's allowed ports and source policy.
Non-compliant rules are replaced wholesale in remediate mode: same
name, same priority, same protocol, ports preserved, source forced
to the safe CIDR.`,
	Example: `  driftaudit nsg                     # audit all NSGs
  driftaudit nsg --scope prod        # prod NSGs only
  driftaudit nsg --mode remediate    # replace offending rules`,
	RunE: runNSG,
}

func init() {
	rootCmd.AddCommand(nsgCmd)
}

func runNSG(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRun(ctx, "nsg")
	if err != nil {
		return err
	}
	defer r.close()

	groups, err := r.provider.ListSecurityGroups(ctx)
	if err != nil {
		return err
	}

	var findings []types.Finding
	for _, group := range groups {
		objectID := group.ResourceGroup + "/" + group.Name
		if err := r.jrnl.Append(journal.EntryObserved, objectID, group); err != nil {
			r.logger.Warn().Err(err).Str("object_id", objectID).Msg("journal append failed")
		}

		env := policy.Classify(group.ResourceGroup, group.Name)
		if !r.inScope(env, objectID) {
			continue
		}

		findings = append(findings, r.engine.EvaluateSecurityGroup(ctx, group)...)
	}

	return r.apply(ctx, findings, len(groups))
}
