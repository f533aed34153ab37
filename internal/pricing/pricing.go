// Package pricing derives priced line items from matched rows, accumulates
// per-currency subtotals and converts them into the reporting currency.
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/pkg/models"
)

// MissingRateText is the explicit placeholder rendered in place of a grand
// total when a foreign-currency subtotal has no discovered exchange rate.
// It must never be silently treated as zero.
const MissingRateText = "환율 없음"

// Summary is the priced view of one reservation.
type Summary struct {
	Items     []models.LineItem
	Subtotals map[string]decimal.Decimal
	Rates     map[string]decimal.Decimal

	GrandTotal        decimal.Decimal
	RateMissing       bool
	MissingCurrencies []string
}

type Aggregator struct {
	aliases   *alias.Resolver
	reporting string
}

func NewAggregator(aliases *alias.Resolver, reportingCurrency string) *Aggregator {
	return &Aggregator{
		aliases:   aliases,
		reporting: normalizeCurrency(reportingCurrency),
	}
}

func (a *Aggregator) ReportingCurrency() string { return a.reporting }

// Summarize prices every matched row of the bookable services, adds the
// customer-master adjustment lines, and computes the converted grand total
// or flags it unconvertible.
func (a *Aggregator) Summarize(rows []models.MatchedRow) *Summary {
	s := &Summary{
		Subtotals: make(map[string]decimal.Decimal),
		Rates:     a.discoverRates(rows),
	}

	for _, row := range rows {
		if row.Service == models.ServiceCustomers {
			continue
		}
		item := a.lineItem(row)
		s.Items = append(s.Items, item)
		a.accumulate(s, item)
	}

	for _, item := range a.adjustments(rows) {
		s.Items = append(s.Items, item)
		a.accumulate(s, item)
	}

	a.grandTotal(s)
	return s
}

// lineItem infers quantity, unit price, total and currency for one service
// row per the fallback rules; an item with no derivable amount is still
// listed and simply contributes nothing.
func (a *Aggregator) lineItem(row models.MatchedRow) models.LineItem {
	item := models.LineItem{
		Service:  row.Service,
		Label:    a.label(row),
		Quantity: a.quantity(row),
		Currency: a.currency(row),
	}

	total, hasTotal := ParseAmount(a.aliases.Cell(row, alias.FieldTotalPrice))
	unit, hasUnit := ParseAmount(a.aliases.Cell(row, alias.FieldUnitPrice))

	switch {
	case hasTotal && hasUnit:
		item.Total = decimal.NewNullDecimal(total)
		item.UnitPrice = decimal.NewNullDecimal(unit)
	case hasTotal:
		item.Total = decimal.NewNullDecimal(total)
		if item.Quantity.IsPositive() {
			item.UnitPrice = decimal.NewNullDecimal(total.Div(item.Quantity))
		}
	case hasUnit:
		item.UnitPrice = decimal.NewNullDecimal(unit)
		item.Total = decimal.NewNullDecimal(unit.Mul(item.Quantity))
	}
	return item
}

// quantity prefers an explicit count field; cruise rows prefer the total
// person count, falling back to adults+children+toddlers when it is absent
// or non-positive. Default is 1.
func (a *Aggregator) quantity(row models.MatchedRow) decimal.Decimal {
	if row.Service == models.ServiceCruise {
		if total, ok := ParseAmount(a.aliases.Cell(row, alias.FieldTotalPersons)); ok && total.IsPositive() {
			return total
		}
		sum := ParseCount(a.aliases.Cell(row, alias.FieldAdults)).
			Add(ParseCount(a.aliases.Cell(row, alias.FieldChildren))).
			Add(ParseCount(a.aliases.Cell(row, alias.FieldToddlers)))
		if sum.IsPositive() {
			return sum
		}
		return decimal.NewFromInt(1)
	}

	for _, f := range []alias.Field{
		alias.FieldQuantity,
		alias.FieldHeadcount,
		alias.FieldRoomCount,
		alias.FieldVehicleCount,
	} {
		if q, ok := ParseAmount(a.aliases.Cell(row, f)); ok && q.IsPositive() {
			return q
		}
	}
	return decimal.NewFromInt(1)
}

func (a *Aggregator) currency(row models.MatchedRow) string {
	if c := normalizeCurrency(a.aliases.Cell(row, alias.FieldCurrency)); c != "" {
		return c
	}
	return a.reporting
}

func (a *Aggregator) label(row models.MatchedRow) string {
	if v := a.aliases.CellAny(row,
		alias.FieldCruiseName,
		alias.FieldHotelName,
		alias.FieldRoute,
		alias.FieldCarModel,
		alias.FieldTourName,
	); v != "" {
		return v
	}
	return string(row.Service)
}

// adjustments turns the customer-master deposit/discount/balance columns
// into non-service lines under the same derivation rule. Discounts reduce
// the total, so their amount is negated.
func (a *Aggregator) adjustments(rows []models.MatchedRow) []models.LineItem {
	var out []models.LineItem
	for _, row := range rows {
		if row.Service != models.ServiceCustomers {
			continue
		}
		for _, adj := range []struct {
			field  alias.Field
			label  string
			negate bool
		}{
			{alias.FieldDeposit, "예약금", false},
			{alias.FieldDiscount, "할인", true},
			{alias.FieldBalance, "잔금", false},
		} {
			amount, ok := ParseAmount(a.aliases.Cell(row, adj.field))
			if !ok || amount.IsZero() {
				continue
			}
			if adj.negate {
				amount = amount.Neg()
			}
			out = append(out, models.LineItem{
				Service:  models.ServiceCustomers,
				Label:    adj.label,
				Quantity: decimal.NewFromInt(1),
				Total:    decimal.NewNullDecimal(amount),
				Currency: a.currency(row),
			})
		}
		break // one master row contributes adjustments
	}
	return out
}

func (a *Aggregator) accumulate(s *Summary, item models.LineItem) {
	if !item.Total.Valid {
		return
	}
	s.Subtotals[item.Currency] = s.Subtotals[item.Currency].Add(item.Total.Decimal)
}

// grandTotal converts every subtotal into the reporting currency. Amounts
// already in it add directly; any other non-zero subtotal needs a discovered
// rate or the computation aborts with the rate-missing flag. The rate is
// applied as foreign units per 100 reporting units — the convention the
// source sheets use — so converted = subtotal * rate / 100.
func (a *Aggregator) grandTotal(s *Summary) {
	hundred := decimal.NewFromInt(100)

	codes := make([]string, 0, len(s.Subtotals))
	for code := range s.Subtotals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	total := decimal.Zero
	for _, code := range codes {
		sub := s.Subtotals[code]
		if code == a.reporting {
			total = total.Add(sub)
			continue
		}
		if sub.IsZero() {
			continue
		}
		rate, ok := s.Rates[code]
		if !ok {
			s.RateMissing = true
			s.MissingCurrencies = append(s.MissingCurrencies, code)
			continue
		}
		total = total.Add(sub.Mul(rate).Div(hundred))
	}

	if s.RateMissing {
		s.GrandTotal = decimal.Zero
		return
	}
	s.GrandTotal = total
}

func normalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
