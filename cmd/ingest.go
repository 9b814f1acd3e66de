package cmd

import (
	"fmt"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/ingest"
	"github.com/huangsam/fosdash/schema"
	"github.com/spf13/cobra"
)

// ingestCmd groups the CSV loaders.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load published FOS data from CSV files",
	Long: `Load complaint data or ombudsman decisions from CSV files into the store.

Every load runs under a new batch id and is recorded as an ingestion run,
including loads that fail. Rows that cannot be parsed are rejected and
reported without stopping the load.

When the redis cache backend is configured, cached API responses are
invalidated after rows are stored so running servers pick up the new data.

Subcommands:
  complaints - Load firm complaint data (one row per firm and period)
  cases      - Load ombudsman decisions

Examples:
  # Load the latest half-year complaint data
  fosdash ingest complaints complaints-2024-H1.csv

  # Load decisions into PostgreSQL
  FOSDASH_DB_BACKEND=postgresql FOSDASH_DB_CONNECT="..." fosdash ingest cases decisions.csv`,
}

// ingestComplaintsCmd loads complaint data.
var ingestComplaintsCmd = &cobra.Command{
	Use:   "complaints <file>",
	Short: "Load firm complaint data from a CSV file",
	Long: `Load firm complaint data from a CSV file.

Required columns: firm_name and year. Optional columns: period, product,
complaints, upheld, uphold_rate, closed_within_3_days and
closed_within_8_weeks. Header names are matched case-insensitively with
spaces and dashes treated as underscores. A year such as "2023-H1" carries
its own period.

The uphold rate is derived from the upheld and complaints counts when missing.

Examples:
  fosdash ingest complaints complaints.csv
  fosdash ingest complaints complaints.csv --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: configOnlySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := runIngest(schema.ComplaintsIngestion, args[0]); err != nil {
			contract.LogFatal("Cannot ingest complaints", err)
		}
	},
}

// ingestCasesCmd loads ombudsman decisions.
var ingestCasesCmd = &cobra.Command{
	Use:   "cases <file>",
	Short: "Load ombudsman decisions from a CSV file",
	Long: `Load ombudsman decisions from a CSV file.

Required columns: reference and firm_name. Rows also need a decision_date
and an outcome of "upheld" or "not upheld". Optional columns: product
and summary. Decisions with a reference already in the store
are replaced.

Examples:
  fosdash ingest cases decisions.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: configOnlySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := runIngest(schema.CasesIngestion, args[0]); err != nil {
			contract.LogFatal("Cannot ingest decisions", err)
		}
	},
}

// runIngest loads path as kind and prints the run summary.
func runIngest(kind schema.IngestionKind, path string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cache, err := sharedCache()
	if err != nil {
		return fmt.Errorf("failed to connect to response cache: %w", err)
	}
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	result, err := ingest.NewIngester(s, cache).IngestFile(rootCtx, kind, path)
	if err != nil {
		return err
	}
	return writer.WriteIngestResult(result, cfg)
}
