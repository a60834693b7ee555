package domain

// Table is a cleaned worksheet: normalized header names and rows keyed by them.
// Empty cells are left out of the row map.
type Table struct {
	Header []string
	Rows   []map[string]string
}

// MonitoringRow is one line of the monitoring worksheet plus model outputs.
type MonitoringRow struct {
	Values               map[string]string `json:"values"`
	PredictedCriticality *string           `json:"predicted_criticality"`
	StockStatus          *string           `json:"stock_status"`
	DaysOfStock          *float64          `json:"days_of_stock"`
}

// PartStockHealth is a part from the recap worksheet.
type PartStockHealth struct {
	PartNumber  string  `json:"part_number"`
	PartName    string  `json:"part_name"`
	Type        string  `json:"type"`
	StockHealth float64 `json:"stock_health"`
}

// TypeSummary aggregates stock health per part type.
type TypeSummary struct {
	Type             string  `json:"type"`
	AvgStockHealth   float64 `json:"avg_stock_health"`
	PartCount        int     `json:"part_count"`
	TotalStockHealth float64 `json:"total_stock_health"`
}

// MeetingKPI is the headline numbers for the daily meeting.
type MeetingKPI struct {
	TotalParts   int `json:"total_parts"`
	DeficitCount int `json:"deficit_count"`
	SurplusCount int `json:"surplus_count"`
}

// MeetingDashboard is the daily meeting overview built from the recap worksheet.
type MeetingDashboard struct {
	KPI              MeetingKPI        `json:"kpi_summary"`
	TopCriticalParts []PartStockHealth `json:"top_critical_parts"`
	SummaryByType    []TypeSummary     `json:"summary_by_type"`
}
