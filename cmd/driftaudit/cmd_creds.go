package main

import (
	"github.com/spf13/cobra"

	"github.com/wakethelight/driftaudit/journal"
)

// credsCmd audits service principal credential lifecycle
var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Audit application credential expiry",
	Long: `Enumerate application password credentials and flag any that have
expired or will expire within the configured window. Credential
findings are report-only: rotation requires a new secret value,
which only the owning team can distribute.`,
	Example: `  driftaudit creds              # 30 day window by default
  driftaudit creds -o creds.log # write the findings log to a file`,
	RunE: runCreds,
}

func init() {
	rootCmd.AddCommand(credsCmd)
}

func runCreds(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRun(ctx, "creds")
	if err != nil {
		return err
	}
	defer r.close()

	creds, err := r.provider.ListAppCredentials(ctx)
	if err != nil {
		return err
	}

	for _, cred := range creds {
		objectID := cred.AppID + "/" + cred.KeyID
		if err := r.jrnl.Append(journal.EntryObserved, objectID, cred); err != nil {
			r.logger.Warn().Err(err).Str("object_id", objectID).Msg("journal append failed")
		}
	}

	findings := r.engine.EvaluateCredentials(ctx, creds)
	return r.apply(ctx, findings, len(creds))
}
