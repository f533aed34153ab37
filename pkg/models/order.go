package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one normalized, priced unit of booked service. UnitPrice and
// Total may be absent when no amount could be inferred from the source row;
// such items are still listed but contribute nothing to subtotals.
type LineItem struct {
	Service   Service             `json:"service"`
	Label     string              `json:"label"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
	Quantity  decimal.Decimal     `json:"quantity"`
	Total     decimal.NullDecimal `json:"total"`
	Currency  string              `json:"currency"`
}

// ItemField is one display field of a rendered line item, in the fixed order
// configured for its service.
type ItemField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Item is a display-ready line item. MergeCount > 1 means the item was
// consolidated from that many equivalent source rows.
type Item struct {
	Service    Service     `json:"service"`
	Fields     []ItemField `json:"fields"`
	MergeCount int         `json:"merge_count"`
}

// Section groups the display items of one service.
type Section struct {
	Service Service `json:"service"`
	Title   string  `json:"title"`
	Items   []Item  `json:"items"`
}

// ConsolidatedOrder is the final output of one reconciliation run: identity
// fields, per-service sections, priced items, per-currency subtotals and the
// converted grand total. Built once per search and handed to the renderer;
// never persisted.
type ConsolidatedOrder struct {
	Query   string `json:"query"`
	OrderID string `json:"order_id"`

	Fields   map[string]string `json:"fields"`
	Sections []Section         `json:"sections"`
	Items    []LineItem        `json:"items"`

	Subtotals map[string]decimal.Decimal `json:"subtotals"`

	// GrandTotal is only meaningful when RateMissing is false. When a
	// non-reporting currency subtotal has no discovered rate the total is
	// withheld rather than silently wrong.
	GrandTotal        decimal.Decimal `json:"grand_total"`
	ReportingCurrency string          `json:"reporting_currency"`
	RateMissing       bool            `json:"rate_missing"`
	MissingCurrencies []string        `json:"missing_currencies,omitempty"`

	SourceErrors map[Service]string `json:"source_errors,omitempty"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
