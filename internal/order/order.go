// Package order assembles the flat identity-and-demographics view of one
// matched reservation.
package order

import (
	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/internal/pricing"
	"tourdesk/pkg/models"
)

// Schema is the field map extracted from a matched-row set, plus the rows
// themselves for downstream normalization. Absent fields are empty strings,
// never nulls, so the schema is always renderable.
type Schema struct {
	Fields map[string]string
	Rows   []models.MatchedRow
}

func (s *Schema) OrderID() string { return s.Fields["orderId"] }

// identityFields lists the output keys with their canonical-name candidate
// priority; the first non-empty resolution wins.
var identityFields = []struct {
	key        string
	candidates []alias.Field
}{
	{"orderId", []alias.Field{alias.FieldOrderID}},
	{"reservedAt", []alias.Field{alias.FieldReservedAt}},
	{"koreanName", []alias.Field{alias.FieldKoreanName}},
	{"englishName", []alias.Field{alias.FieldEnglishName}},
	{"email", []alias.Field{alias.FieldEmail}},
	{"phone", []alias.Field{alias.FieldPhone}},
	{"messengerId", []alias.Field{alias.FieldMessengerID}},
}

// Passenger-bearing services whose head counts roll up into the totals.
var passengerServices = map[models.Service]bool{
	models.ServiceCruise: true,
	models.ServiceHotel:  true,
}

type Builder struct {
	aliases *alias.Resolver
}

func NewBuilder(aliases *alias.Resolver) *Builder {
	return &Builder{aliases: aliases}
}

// Build extracts identity fields from the primary row (first customer-master
// row, else first row overall, then any remaining row for fields the primary
// lacks) and sums the demographic counts across passenger-bearing rows.
func (b *Builder) Build(rows []models.MatchedRow) *Schema {
	s := &Schema{
		Fields: make(map[string]string),
		Rows:   rows,
	}
	if len(rows) == 0 {
		return s
	}

	ordered := b.byPriority(rows)
	for _, f := range identityFields {
		s.Fields[f.key] = b.firstValue(ordered, f.candidates)
	}

	adults, children, toddlers := b.demographics(rows)
	s.Fields["adults"] = adults.String()
	s.Fields["children"] = children.String()
	s.Fields["toddlers"] = toddlers.String()
	s.Fields["totalPersons"] = adults.Add(children).Add(toddlers).String()

	return s
}

// byPriority puts the primary identity source first: customer-master rows,
// then everything else in match order.
func (b *Builder) byPriority(rows []models.MatchedRow) []models.MatchedRow {
	out := make([]models.MatchedRow, 0, len(rows))
	for _, r := range rows {
		if r.Service == models.ServiceCustomers {
			out = append(out, r)
		}
	}
	for _, r := range rows {
		if r.Service != models.ServiceCustomers {
			out = append(out, r)
		}
	}
	return out
}

func (b *Builder) firstValue(rows []models.MatchedRow, candidates []alias.Field) string {
	for _, row := range rows {
		if v := b.aliases.CellAny(row, candidates...); v != "" {
			return v
		}
	}
	return ""
}

func (b *Builder) demographics(rows []models.MatchedRow) (adults, children, toddlers decimal.Decimal) {
	for _, row := range rows {
		if !passengerServices[row.Service] {
			continue
		}
		adults = adults.Add(pricing.ParseCount(b.aliases.Cell(row, alias.FieldAdults)))
		children = children.Add(pricing.ParseCount(b.aliases.Cell(row, alias.FieldChildren)))
		toddlers = toddlers.Add(pricing.ParseCount(b.aliases.Cell(row, alias.FieldToddlers)))
	}
	return adults, children, toddlers
}
