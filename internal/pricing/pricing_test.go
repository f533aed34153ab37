package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/pkg/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2000000", "2000000", true},
		{"2,000,000", "2000000", true},
		{"₩1,500,000", "1500000", true},
		{"100 USD", "100", true},
		{"3명", "3", true},
		{"1500.50", "1500.5", true},
		{"-20000", "-20000", true},
		{"", "", false},
		{"미정", "", false},
		{"2025-01-02", "", false},
		{"010-1234-5678", "", false},
		{"1.2.3", "", false},
		{"2월 3일", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseAmount(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	if got := ParseCount("2명"); !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("ParseCount(2명) = %s", got)
	}
	if got := ParseCount("-3"); !got.IsZero() {
		t.Fatalf("negative count = %s, want 0", got)
	}
	if got := ParseCount("junk"); !got.IsZero() {
		t.Fatalf("junk count = %s, want 0", got)
	}
}

func serviceRow(svc models.Service, headers, cells []string) models.MatchedRow {
	return models.MatchedRow{Service: svc, Headers: headers, Cells: cells}
}

func newAgg() *Aggregator {
	return NewAggregator(alias.NewResolver(), "KRW")
}

func TestSummarize_TotalFromUnitAndQuantity(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceCruise,
			[]string{"크루즈명", "총인원", "단가"},
			[]string{"Spectrum", "3", "500000"}),
	})

	if len(s.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(s.Items))
	}
	item := s.Items[0]
	if !item.Total.Valid || !item.Total.Decimal.Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("total = %v, want 1500000", item.Total)
	}
	if !s.Subtotals["KRW"].Equal(decimal.NewFromInt(1500000)) {
		t.Fatalf("KRW subtotal = %s", s.Subtotals["KRW"])
	}
}

func TestSummarize_UnitFromTotalAndQuantity(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceTour,
			[]string{"투어명", "수량", "금액"},
			[]string{"City Tour", "4", "200,000"}),
	})

	item := s.Items[0]
	if !item.UnitPrice.Valid || !item.UnitPrice.Decimal.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("unit = %v, want 50000", item.UnitPrice)
	}
	if !item.Quantity.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("quantity = %s, want 4", item.Quantity)
	}
}

func TestSummarize_NoAmountContributesNothing(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceHotel,
			[]string{"호텔명", "금액"},
			[]string{"Grand Hotel", "미정"}),
	})

	// listed but unpriced
	if len(s.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(s.Items))
	}
	if s.Items[0].Total.Valid {
		t.Fatalf("total = %v, want invalid", s.Items[0].Total)
	}
	if !s.GrandTotal.IsZero() || s.RateMissing {
		t.Fatalf("grand total = %s missing=%v, want zero and no flag", s.GrandTotal, s.RateMissing)
	}
}

func TestQuantity_CruisePrefersTotalPersons(t *testing.T) {
	a := newAgg()

	q := a.quantity(serviceRow(models.ServiceCruise,
		[]string{"총인원", "성인", "아동"},
		[]string{"5", "2", "1"}))
	if !q.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("quantity = %s, want totalPersons 5", q)
	}

	q = a.quantity(serviceRow(models.ServiceCruise,
		[]string{"총인원", "성인", "아동"},
		[]string{"", "2", "1"}))
	if !q.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("quantity = %s, want adults+children 3", q)
	}

	q = a.quantity(serviceRow(models.ServiceCruise, []string{"크루즈명"}, []string{"Spectrum"}))
	if !q.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("quantity = %s, want default 1", q)
	}
}

func TestQuantity_FallbackChain(t *testing.T) {
	a := newAgg()

	q := a.quantity(serviceRow(models.ServiceRentcar,
		[]string{"차량수", "인원"},
		[]string{"2", "6"}))
	if !q.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("quantity = %s, want headcount 6 over vehicle count", q)
	}

	q = a.quantity(serviceRow(models.ServiceRentcar,
		[]string{"차량수"},
		[]string{"2"}))
	if !q.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("quantity = %s, want vehicle count 2", q)
	}
}

func TestSummarize_Adjustments(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceCustomers,
			[]string{"주문번호", "예약금", "할인", "잔금"},
			[]string{"ORD1", "300,000", "50,000", "1,000,000"}),
	})

	if len(s.Items) != 3 {
		t.Fatalf("got %d adjustment items, want 3", len(s.Items))
	}
	byLabel := make(map[string]decimal.Decimal)
	for _, item := range s.Items {
		byLabel[item.Label] = item.Total.Decimal
	}
	if !byLabel["예약금"].Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("deposit = %s", byLabel["예약금"])
	}
	if !byLabel["할인"].Equal(decimal.NewFromInt(-50000)) {
		t.Fatalf("discount = %s, want negated", byLabel["할인"])
	}
	if !byLabel["잔금"].Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("balance = %s", byLabel["잔금"])
	}
	if !s.GrandTotal.Equal(decimal.NewFromInt(1250000)) {
		t.Fatalf("grand total = %s, want 1250000", s.GrandTotal)
	}
}

func TestDiscoverRates_PairedColumns(t *testing.T) {
	a := newAgg()
	rates := a.discoverRates([]models.MatchedRow{
		serviceRow(models.ServiceCustomers,
			[]string{"주문번호", "통화", "환율"},
			[]string{"ORD1", "USD", "1,350"}),
	})

	rate, ok := rates["USD"]
	if !ok || !rate.Equal(decimal.NewFromInt(1350)) {
		t.Fatalf("USD rate = %v ok=%v", rate, ok)
	}
}

func TestDiscoverRates_CodePrefixedHeaders(t *testing.T) {
	a := newAgg()
	rates := a.discoverRates([]models.MatchedRow{
		serviceRow(models.ServiceCustomers,
			[]string{"주문번호", "USD환율", "JPY 환율", "EUR rate"},
			[]string{"ORD1", "1350", "910.5", "1480"}),
	})

	for code, want := range map[string]string{"USD": "1350", "JPY": "910.5", "EUR": "1480"} {
		rate, ok := rates[code]
		if !ok {
			t.Fatalf("rate for %s not discovered: %v", code, rates)
		}
		if rate.String() != want {
			t.Fatalf("%s rate = %s, want %s", code, rate, want)
		}
	}
}

func TestDiscoverRates_FirstWins(t *testing.T) {
	a := newAgg()
	rates := a.discoverRates([]models.MatchedRow{
		serviceRow(models.ServiceCustomers,
			[]string{"USD환율"}, []string{"1350"}),
		serviceRow(models.ServiceCustomers,
			[]string{"USD환율"}, []string{"1400"}),
	})
	if !rates["USD"].Equal(decimal.NewFromInt(1350)) {
		t.Fatalf("USD rate = %s, want first-seen 1350", rates["USD"])
	}
}

func TestGrandTotal_ConvertsByRateOverHundred(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceCustomers,
			[]string{"주문번호", "USD환율"},
			[]string{"ORD1", "135,000"}),
		serviceRow(models.ServiceCruise,
			[]string{"크루즈명", "금액", "통화"},
			[]string{"Spectrum", "100", "USD"}),
		serviceRow(models.ServiceHotel,
			[]string{"호텔명", "금액"},
			[]string{"Grand Hotel", "500,000"}),
	})

	// 100 USD * 135,000 / 100 = 135,000 KRW, plus the native 500,000
	want := decimal.NewFromInt(635000)
	if s.RateMissing {
		t.Fatalf("unexpected missing-rate flag: %v", s.MissingCurrencies)
	}
	if !s.GrandTotal.Equal(want) {
		t.Fatalf("grand total = %s, want %s", s.GrandTotal, want)
	}
}

func TestGrandTotal_MissingRateNeverZeroed(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceCruise,
			[]string{"크루즈명", "금액", "통화"},
			[]string{"Spectrum", "100", "USD"}),
		serviceRow(models.ServiceHotel,
			[]string{"호텔명", "금액"},
			[]string{"Grand Hotel", "500,000"}),
	})

	if !s.RateMissing {
		t.Fatal("want RateMissing for unconvertible USD subtotal")
	}
	if len(s.MissingCurrencies) != 1 || s.MissingCurrencies[0] != "USD" {
		t.Fatalf("missing currencies = %v, want [USD]", s.MissingCurrencies)
	}
	// the total must not degrade into a partial KRW-only sum
	if !s.GrandTotal.IsZero() {
		t.Fatalf("grand total = %s, want unset when rate missing", s.GrandTotal)
	}
	// the per-currency subtotals stay intact for display
	if !s.Subtotals["USD"].Equal(decimal.NewFromInt(100)) {
		t.Fatalf("USD subtotal = %s", s.Subtotals["USD"])
	}
}

func TestGrandTotal_ZeroForeignSubtotalNeedsNoRate(t *testing.T) {
	s := newAgg().Summarize([]models.MatchedRow{
		serviceRow(models.ServiceCruise,
			[]string{"크루즈명", "금액", "통화"},
			[]string{"Spectrum", "0", "USD"}),
		serviceRow(models.ServiceHotel,
			[]string{"호텔명", "금액"},
			[]string{"Grand Hotel", "500,000"}),
	})

	if s.RateMissing {
		t.Fatalf("zero USD subtotal flagged missing: %v", s.MissingCurrencies)
	}
	if !s.GrandTotal.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("grand total = %s, want 500000", s.GrandTotal)
	}
}

func TestCurrency_DefaultsToReporting(t *testing.T) {
	a := NewAggregator(alias.NewResolver(), "krw")
	if a.ReportingCurrency() != "KRW" {
		t.Fatalf("reporting = %q, want normalized KRW", a.ReportingCurrency())
	}

	c := a.currency(serviceRow(models.ServiceHotel, []string{"호텔명"}, []string{"Grand Hotel"}))
	if c != "KRW" {
		t.Fatalf("currency = %q, want reporting default", c)
	}
	c = a.currency(serviceRow(models.ServiceHotel, []string{"통화"}, []string{" usd "}))
	if c != "USD" {
		t.Fatalf("currency = %q, want normalized USD", c)
	}
}
