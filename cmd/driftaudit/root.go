package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	flagConfig  string
	flagScope   string
	flagMode    string
	flagOut     string
	flagGrouped bool
	flagDebug   bool

	rootCmd = &cobra.Command{
		Use:   "driftaudit",
		Short: "Cloud configuration drift auditor",
		Long: `driftaudit - Cloud configuration drift auditor

driftaudit enumerates cloud resources and checks them against
environment-scoped compliance policies: required tags, NSG rule
hygiene, service-principal credential lifecycle, and DNS zone
replication.

In audit mode findings are only recorded; in remediate mode each
finding triggers exactly one corrective call against the control
plane.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			if flagDebug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`driftaudit {{.Version}} - Cloud configuration drift auditor
`)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "driftaudit.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagScope, "scope", "s", "", "Target environment: dev, prod, or all (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "", "Run mode: audit or remediate (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagOut, "out", "o", "", "Write the findings log to this file (default stdout)")
	rootCmd.PersistentFlags().BoolVarP(&flagGrouped, "grouped", "g", false, "Group the findings log by environment")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}
