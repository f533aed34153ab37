// Package reconcile wires the engine stages into one pipeline: fetch,
// match, schema build, line-item normalization, pricing, rendering.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/internal/lineitem"
	"tourdesk/internal/match"
	"tourdesk/internal/order"
	"tourdesk/internal/pricing"
	"tourdesk/internal/render"
	"tourdesk/internal/source"
	"tourdesk/pkg/models"
)

type Engine struct {
	loader    source.Loader
	templates render.TemplateProvider

	matcher    *match.Matcher
	builder    *order.Builder
	normalizer *lineitem.Normalizer
	aggregator *pricing.Aggregator

	slot   *Slot
	events Publisher
}

// Publisher receives reconciliation events; the dashboard hub implements it.
type Publisher interface {
	BroadcastJSON(v any)
}

func NewEngine(loader source.Loader, aliases *alias.Resolver, templates render.TemplateProvider, reportingCurrency string) *Engine {
	return &Engine{
		loader:     loader,
		templates:  templates,
		matcher:    match.New(aliases),
		builder:    order.NewBuilder(aliases),
		normalizer: lineitem.NewNormalizer(aliases),
		aggregator: pricing.NewAggregator(aliases, reportingCurrency),
		slot:       NewSlot(),
	}
}

// SetPublisher attaches an event sink for completed reconciliations.
func (e *Engine) SetPublisher(p Publisher) { e.events = p }

func (e *Engine) Loader() source.Loader { return e.loader }

// Reconcile runs the full pipeline for one search key. The fetch fans out
// per source and the rest of the pipeline is pure over the loaded tables. A
// source that failed to load is reported in the result, not fatal; only a
// missing match aborts.
func (e *Engine) Reconcile(ctx context.Context, query string) (*models.ConsolidatedOrder, error) {
	gen := e.slot.Begin()

	res := source.FetchAll(ctx, e.loader)
	rows, err := e.matcher.Find(res.Tables, query)
	if err != nil {
		e.publish(Event{Type: EventNoMatch, Query: query, At: time.Now().UTC()})
		return nil, err
	}

	schema := e.builder.Build(rows)
	sections := e.normalizer.Sections(rows)
	summary := e.aggregator.Summarize(rows)

	out := &models.ConsolidatedOrder{
		Query:             strings.TrimSpace(query),
		OrderID:           schema.OrderID(),
		Fields:            e.composeFields(schema, sections, summary),
		Sections:          sections,
		Items:             summary.Items,
		Subtotals:         summary.Subtotals,
		GrandTotal:        summary.GrandTotal,
		ReportingCurrency: e.aggregator.ReportingCurrency(),
		RateMissing:       summary.RateMissing,
		MissingCurrencies: summary.MissingCurrencies,
		SourceErrors:      res.ErrorStrings(),
		GeneratedAt:       time.Now().UTC(),
	}

	if e.slot.Complete(gen, out) {
		e.publish(completedEvent(out))
	}
	return out, nil
}

// Document renders the confirmation for one search key. A missing template
// is fatal for the generation; rate-missing is not, it renders the marker.
func (e *Engine) Document(ctx context.Context, query string) (string, *models.ConsolidatedOrder, error) {
	tmpl, err := e.templates.Template(ctx)
	if err != nil {
		return "", nil, err
	}
	out, err := e.Reconcile(ctx, query)
	if err != nil {
		return "", nil, err
	}
	return render.Render(tmpl, out.Fields), out, nil
}

// SearchKeys lists candidate keys across all sources for autocomplete.
func (e *Engine) SearchKeys(ctx context.Context) ([]string, error) {
	res := source.FetchAll(ctx, e.loader)
	if len(res.Errors) == len(res.Tables) && len(res.Tables) > 0 {
		return nil, fmt.Errorf("all sources failed to load")
	}
	return e.matcher.Keys(res.Tables), nil
}

// Latest returns the most recently completed result, if any.
func (e *Engine) Latest() *models.ConsolidatedOrder { return e.slot.Latest() }

// composeFields flattens everything the template can reference: identity
// and demographic fields, one rendered text block per service section,
// per-currency subtotals and the grand total (or the rate-missing marker).
func (e *Engine) composeFields(schema *order.Schema, sections []models.Section, summary *pricing.Summary) map[string]string {
	fields := make(map[string]string, len(schema.Fields)+len(sections)+4)
	for k, v := range schema.Fields {
		fields[k] = v
	}

	for _, sec := range sections {
		fields[string(sec.Service)+"Section"] = sectionText(sec)
	}

	var subs []string
	for _, code := range sortedCodes(summary.Subtotals) {
		subs = append(subs, fmt.Sprintf("%s %s", code, FormatMoney(summary.Subtotals[code])))
	}
	fields["subtotals"] = strings.Join(subs, "\n")

	if summary.RateMissing {
		fields["grandTotal"] = fmt.Sprintf("%s (%s)", pricing.MissingRateText, strings.Join(summary.MissingCurrencies, ", "))
	} else {
		fields["grandTotal"] = fmt.Sprintf("%s %s", e.aggregator.ReportingCurrency(), FormatMoney(summary.GrandTotal))
	}
	return fields
}

func sectionText(sec models.Section) string {
	var b strings.Builder
	for i, item := range sec.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		var parts []string
		for _, f := range item.Fields {
			if f.Value == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", f.Label, f.Value))
		}
		line := strings.Join(parts, " / ")
		if item.MergeCount > 1 {
			line = fmt.Sprintf("%s [%s]", line, lineitem.Annotation(item.MergeCount))
		}
		b.WriteString("- " + line)
	}
	return b.String()
}

func sortedCodes(subtotals map[string]decimal.Decimal) []string {
	codes := make([]string, 0, len(subtotals))
	for code := range subtotals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FormatMoney renders an amount with thousands separators, two decimals at
// most, trailing zeros trimmed ("3,500,000", "1,234.5").
func FormatMoney(d decimal.Decimal) string {
	s := d.Round(2).String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func (e *Engine) publish(ev Event) {
	if e.events == nil {
		return
	}
	e.events.BroadcastJSON(ev)
}
