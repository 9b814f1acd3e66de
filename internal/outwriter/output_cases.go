package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/olekukonko/tablewriter"
)

const (
	caseDateFormat   = "2006-01-02"
	casesFixedWidth  = 70
	maxSummaryLength = 60
)

// WriteCases outputs a page of decisions.
func WriteCases(listing schema.CaseListing, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, listing)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVCases(w, listing.Cases)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedParquet("cases")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCasesTable(w, listing, cfg)
		}, "Wrote table")
	}
}

func writeCSVCases(w io.Writer, cases []schema.CaseRecord) error {
	header := []string{"reference", "firm_name", "product", "decision_date", "outcome", "summary"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range cases {
			rec := []string{
				c.Reference,
				c.FirmName,
				c.Product,
				c.DecisionDate.Format(caseDateFormat),
				string(c.Outcome),
				c.Summary,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCasesTable(w io.Writer, listing schema.CaseListing, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Reference", "Firm", "Product", "Decided", "Outcome", "Summary"})

	nameWidth := getMaxTableNameWidth(cfg, casesFixedWidth)
	var data [][]string
	for _, c := range listing.Cases {
		outcome := string(c.Outcome)
		if cfg.UseColors {
			// An upheld decision went against the firm.
			color := schema.ColorImproving
			if c.Outcome == schema.UpheldOutcome {
				color = schema.ColorDeclining
			}
			outcome = contract.ColorizeTrend(outcome, color)
		}
		data = append(data, []string{
			c.Reference,
			contract.TruncateName(c.FirmName, nameWidth),
			c.Product,
			c.DecisionDate.Format(caseDateFormat),
			outcome,
			contract.TruncateName(c.Summary, maxSummaryLength),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	last := listing.Offset + len(listing.Cases)
	first := listing.Offset + 1
	if len(listing.Cases) == 0 {
		first = listing.Offset
	}
	_, err := fmt.Fprintf(w, "Showing decisions %d-%d of %s\n", first, last, fmtCount(listing.Total))
	return err
}
