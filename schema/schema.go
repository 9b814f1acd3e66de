// Package schema has configs, models and shared types for all parts of fosdash.
package schema

import "time"

// ComplaintRecord is one row of the published complaints dataset: the figures a single
// firm reported for one product category in one reporting period.
type ComplaintRecord struct {
	Year          string   `json:"year"`                      // Reporting year, e.g. "2023"
	Period        string   `json:"period,omitempty"`          // Sub-period within the year, e.g. "H1"
	FirmName      string   `json:"firm_name"`                 // Reporting firm
	Product       string   `json:"product,omitempty"`         // Product category
	Complaints    int      `json:"complaints"`                // Complaints received in the period
	Upheld        int      `json:"upheld"`                    // Complaints upheld in the period
	UpholdRate    *float64 `json:"uphold_rate,omitempty"`     // Percentage upheld (nil when unreported)
	Closure3Days  *float64 `json:"closure_3_days,omitempty"`  // Percentage closed within 3 days
	Closure8Weeks *float64 `json:"closure_8_weeks,omitempty"` // Percentage closed within 8 weeks
	BatchID       string   `json:"batch_id,omitempty"`        // Ingestion batch that loaded the row
}

// CaseRecord is a single ombudsman decision.
type CaseRecord struct {
	Reference    string    `json:"reference"`
	FirmName     string    `json:"firm_name"`
	Product      string    `json:"product,omitempty"`
	DecisionDate time.Time `json:"decision_date"`
	Outcome      Outcome   `json:"outcome"`
	Summary      string    `json:"summary,omitempty"`
	BatchID      string    `json:"batch_id,omitempty"`
}

// CaseFilter narrows a case listing.
type CaseFilter struct {
	FirmName string
	Product  string
	Outcome  Outcome
	Limit    int
	Offset   int
}

// CaseListing is a page of decisions plus the total matching count.
type CaseListing struct {
	Cases  []CaseRecord `json:"cases"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// OverviewMetrics are the headline figures shown at the top of the dashboard.
type OverviewMetrics struct {
	TotalComplaints  int     `json:"total_complaints"`
	TotalUpheld      int     `json:"total_upheld"`
	TotalFirms       int     `json:"total_firms"`
	TotalCases       int     `json:"total_cases"`
	AvgUpholdRate    float64 `json:"avg_uphold_rate"`
	AvgClosure3Days  float64 `json:"avg_closure_3_days"`
	AvgClosure8Weeks float64 `json:"avg_closure_8_weeks"`
	LatestYear       string  `json:"latest_year,omitempty"`
	EarliestYear     string  `json:"earliest_year,omitempty"`
	ReportingPeriods int     `json:"reporting_periods"`
}

// FirmSummary is a row in the firm listing.
type FirmSummary struct {
	FirmName        string   `json:"firm_name"`
	TotalComplaints int      `json:"total_complaints"`
	AvgUpholdRate   *float64 `json:"avg_uphold_rate,omitempty"`
	LatestYear      string   `json:"latest_year,omitempty"`
	Products        int      `json:"products"`
}

// DashboardOverview is the landing view: headline figures, the industry benchmark and the
// firms moving most on the uphold rate.
type DashboardOverview struct {
	Metrics      OverviewMetrics `json:"metrics"`
	Benchmark    BenchmarkTrend  `json:"benchmark"`
	TopImproving []RankedFirm    `json:"top_improving"`
	TopDeclining []RankedFirm    `json:"top_declining"`
}
