package models

import "strings"

// Service identifies one tabular source: the customer master sheet or one
// of the bookable service sheets.
type Service string

const (
	ServiceCustomers Service = "customers"
	ServiceCruise    Service = "cruise"
	ServiceHotel     Service = "hotel"
	ServiceTransfer  Service = "transfer"
	ServiceRentcar   Service = "rentcar"
	ServiceTour      Service = "tour"
)

// AllServices returns every known source in fetch order.
func AllServices() []Service {
	return []Service{
		ServiceCustomers,
		ServiceCruise,
		ServiceHotel,
		ServiceTransfer,
		ServiceRentcar,
		ServiceTour,
	}
}

// BookableServices are the sources that carry priced line items.
func BookableServices() []Service {
	return []Service{
		ServiceCruise,
		ServiceHotel,
		ServiceTransfer,
		ServiceRentcar,
		ServiceTour,
	}
}

// ParseService maps a tag string to a known Service.
func ParseService(s string) (Service, bool) {
	svc := Service(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllServices() {
		if svc == known {
			return known, true
		}
	}
	return "", false
}

// Table is one loaded source: a header row plus index-aligned data rows.
// Cells are untyped strings. A table is built fresh per search and never
// mutated after load.
type Table struct {
	Service Service    `json:"service"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// MatchedRow is a row confirmed relevant to the current query, with the
// headers of the table it came from so fields stay resolvable per source.
type MatchedRow struct {
	Service Service  `json:"service"`
	Headers []string `json:"headers"`
	Cells   []string `json:"cells"`
}

// Cell returns the trimmed value at index i, or "" when the row is shorter
// than its header row.
func (r MatchedRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}
