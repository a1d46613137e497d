package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wakethelight/driftaudit/journal"
)

// dnsCmd audits DNS zone replication
var dnsCmd = &cobra.Command{
	Use:   "dns",
	Short: "Audit DNS zone replication",
	Long: `Compare the primary DNS zone against the secondary and flag record
sets present in the primary but absent from the secondary. In
remediate mode missing records are created in the secondary zone.
Records that exist in both zones are never overwritten, even when
their values differ.`,
	Example: `  driftaudit dns                   # audit replication gaps
  driftaudit dns --mode remediate  # mirror missing records`,
	RunE: runDNS,
}

func init() {
	rootCmd.AddCommand(dnsCmd)
}

func runDNS(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	r, err := newRun(ctx, "dns")
	if err != nil {
		return err
	}
	defer r.close()

	dns := r.cfg.DNS
	if dns.ResourceGroup == "" || dns.PrimaryZone == "" || dns.SecondaryZone == "" {
		return fmt.Errorf("dns check requires dns.resource_group, dns.primary_zone, and dns.secondary_zone in config")
	}

	primary, err := r.provider.ListRecordSets(ctx, dns.PrimaryZone)
	if err != nil {
		return err
	}
	secondary, err := r.provider.ListRecordSets(ctx, dns.SecondaryZone)
	if err != nil {
		return err
	}

	for _, record := range primary {
		objectID := dns.PrimaryZone + "/" + record.Key()
		if err := r.jrnl.Append(journal.EntryObserved, objectID, record); err != nil {
			r.logger.Warn().Err(err).Str("object_id", objectID).Msg("journal append failed")
		}
	}

	findings := r.engine.DiffZones(ctx, primary, secondary, dns.SecondaryZone)
	return r.apply(ctx, findings, len(primary))
}
