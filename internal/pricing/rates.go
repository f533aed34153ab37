package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/pkg/models"
)

// rateHeaderRE matches currency-code-prefixed rate columns the way staff
// name them on the master sheet: a 3-letter code followed by a rate suffix,
// e.g. "USD환율", "JPY 환율", "EUR rate".
var rateHeaderRE = regexp.MustCompile(`(?i)^([a-z]{3})\s*(?:환율|rate)$`)

// discoverRates scans the customer-master rows for exchange rates, two
// forms: a paired currency+rate column, and code-prefixed rate columns. The
// first rate found for a code wins; later rows never overwrite it. The
// name-pattern rule lives here, isolated from summation, because it is the
// fragile part.
func (a *Aggregator) discoverRates(rows []models.MatchedRow) map[string]decimal.Decimal {
	rates := make(map[string]decimal.Decimal)

	for _, row := range rows {
		if row.Service != models.ServiceCustomers {
			continue
		}

		// (a) generic rate column paired with a currency column
		code := normalizeCurrency(a.aliases.Cell(row, alias.FieldCurrency))
		if code != "" && code != a.reporting {
			if rate, ok := ParseAmount(a.aliases.Cell(row, alias.FieldRate)); ok && rate.IsPositive() {
				put(rates, code, rate)
			}
		}

		// (b) code-prefixed rate columns
		for i, header := range row.Headers {
			m := rateHeaderRE.FindStringSubmatch(alias.Normalize(header))
			if m == nil {
				continue
			}
			rate, ok := ParseAmount(row.Cell(i))
			if !ok || !rate.IsPositive() {
				continue
			}
			put(rates, strings.ToUpper(m[1]), rate)
		}
	}
	return rates
}

func put(rates map[string]decimal.Decimal, code string, rate decimal.Decimal) {
	if _, exists := rates[code]; exists {
		return
	}
	rates[code] = rate
}
