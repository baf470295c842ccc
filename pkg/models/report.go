package models

// NotAvailable is the report placeholder for missing values.
const NotAvailable = "N/A"

// HeadlineRow is one row of the headline report.
type HeadlineRow struct {
	Symbol    string         `json:"symbol"`
	Headline  string         `json:"headline"`
	Sentiment SentimentLabel `json:"sentiment"`
}

// VendorOutcome is the finalized result of processing one vendor.
type VendorOutcome struct {
	Vendor    Vendor           `json:"vendor"`
	Stock     *StockMetrics    `json:"stock,omitempty"` // nil when the stock fetch failed
	Headlines []ScoredHeadline `json:"headlines,omitempty"`
	Sentiment SentimentLabel   `json:"sentiment"` // aggregate, or N/A
	Failed    bool             `json:"failed"`    // vendor processing aborted by an error
}

// StockOK reports whether stock metrics were retrieved.
func (o VendorOutcome) StockOK() bool { return o.Stock != nil }

// HeadlineRows returns the headline-report rows for this vendor. A vendor
// without headlines yields a single N/A row.
func (o VendorOutcome) HeadlineRows() []HeadlineRow {
	if len(o.Headlines) == 0 {
		return []HeadlineRow{{
			Symbol:    o.Vendor.Symbol,
			Headline:  NotAvailable,
			Sentiment: LabelNA,
		}}
	}
	rows := make([]HeadlineRow, 0, len(o.Headlines))
	for _, h := range o.Headlines {
		headline := h.Article.Title
		if headline == "" {
			headline = NotAvailable
		}
		rows = append(rows, HeadlineRow{
			Symbol:    o.Vendor.Symbol,
			Headline:  headline,
			Sentiment: h.Result.Label,
		})
	}
	return rows
}
