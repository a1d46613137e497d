package main

import (
	"github.com/spf13/cobra"

	"github.com/wakethelight/driftaudit/journal"
	"github.com/wakethelight/driftaudit/policy"
	"github.com/wakethelight/driftaudit/types"
)

// tagsCmd audits resource tagging compliance
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Audit resource tagging compliance",
	Long: `Enumerate resources and check each against the environment's
required-tag policy. Missing keys are proposed (or applied in
remediate mode); existing values are never corrected. App and Team
tags are inferred from the resource group name where possible.`,
	Example: `  driftaudit tags                        # audit everything
  driftaudit tags --scope dev            # dev resources only
  driftaudit tags --mode remediate       # apply missing tags
  driftaudit tags --grouped -o tags.log  # grouped findings log`,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRun(ctx, "tags")
	if err != nil {
		return err
	}
	defer r.close()

	resources, err := r.provider.ListResources(ctx)
	if err != nil {
		return err
	}

	var findings []types.Finding
	for _, resource := range resources {
		if err := r.jrnl.Append(journal.EntryObserved, resource.ID, resource); err != nil {
			r.logger.Warn().Err(err).Str("object_id", resource.ID).Msg("journal append failed")
		}

		env := policy.Classify(resource.ResourceGroup, resource.Name)
		if !r.inScope(env, resource.ID) {
			continue
		}

		findings = append(findings, r.engine.EvaluateTags(ctx, resource)...)
	}

	return r.apply(ctx, findings, len(resources))
}
