// Package lineitem converts raw service rows into display-ready line items
// and merges duplicates where the service is configured for it.
package lineitem

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tourdesk/internal/alias"
	"tourdesk/internal/pricing"
	"tourdesk/pkg/models"
)

// displayField is one column of a service's fixed display layout.
type displayField struct {
	key        string
	label      string
	candidates []alias.Field
	// numeric fields are summed when items merge
	numeric bool
}

type serviceLayout struct {
	title  string
	fields []displayField
	// mergeKeys name the fields whose combined value groups equivalent
	// rows; nil means the service never merges.
	mergeKeys []string
}

var layouts = map[models.Service]serviceLayout{
	models.ServiceCruise: {
		title: "크루즈",
		fields: []displayField{
			{key: "cruiseName", label: "크루즈명", candidates: []alias.Field{alias.FieldCruiseName}},
			{key: "roomCategory", label: "객실등급", candidates: []alias.Field{alias.FieldRoomCategory}},
			{key: "roomCount", label: "객실수", candidates: []alias.Field{alias.FieldRoomCount}, numeric: true},
			{key: "schedule", label: "일정", candidates: []alias.Field{alias.FieldSchedule}},
			{key: "checkIn", label: "체크인", candidates: []alias.Field{alias.FieldCheckIn}},
			{key: "adults", label: "성인", candidates: []alias.Field{alias.FieldAdults}, numeric: true},
			{key: "children", label: "아동", candidates: []alias.Field{alias.FieldChildren}, numeric: true},
			{key: "toddlers", label: "유아", candidates: []alias.Field{alias.FieldToddlers}, numeric: true},
			{key: "remark", label: "비고", candidates: []alias.Field{alias.FieldRemark}},
		},
		mergeKeys: []string{"cruiseName", "roomCategory"},
	},
	models.ServiceHotel: {
		title: "호텔",
		fields: []displayField{
			{key: "hotelName", label: "호텔명", candidates: []alias.Field{alias.FieldHotelName}},
			{key: "roomCategory", label: "객실타입", candidates: []alias.Field{alias.FieldRoomCategory}},
			{key: "roomCount", label: "객실수", candidates: []alias.Field{alias.FieldRoomCount}, numeric: true},
			{key: "checkIn", label: "체크인", candidates: []alias.Field{alias.FieldCheckIn}},
			{key: "checkOut", label: "체크아웃", candidates: []alias.Field{alias.FieldCheckOut}},
			{key: "nights", label: "박수", candidates: []alias.Field{alias.FieldNights}},
			{key: "adults", label: "성인", candidates: []alias.Field{alias.FieldAdults}, numeric: true},
			{key: "children", label: "아동", candidates: []alias.Field{alias.FieldChildren}, numeric: true},
			{key: "toddlers", label: "유아", candidates: []alias.Field{alias.FieldToddlers}, numeric: true},
			{key: "remark", label: "비고", candidates: []alias.Field{alias.FieldRemark}},
		},
	},
	models.ServiceTransfer: {
		title: "공항픽업",
		fields: []displayField{
			{key: "route", label: "구간", candidates: []alias.Field{alias.FieldRoute}},
			{key: "pickupAt", label: "픽업일시", candidates: []alias.Field{alias.FieldPickupAt}},
			{key: "vehicleCount", label: "차량수", candidates: []alias.Field{alias.FieldVehicleCount}, numeric: true},
			{key: "headcount", label: "인원", candidates: []alias.Field{alias.FieldHeadcount}, numeric: true},
			{key: "remark", label: "비고", candidates: []alias.Field{alias.FieldRemark}},
		},
	},
	models.ServiceRentcar: {
		title: "렌터카",
		fields: []displayField{
			{key: "carModel", label: "차종", candidates: []alias.Field{alias.FieldCarModel}},
			{key: "rentalDate", label: "대여일", candidates: []alias.Field{alias.FieldRentalDate}},
			{key: "returnDate", label: "반납일", candidates: []alias.Field{alias.FieldReturnDate}},
			{key: "vehicleCount", label: "차량수", candidates: []alias.Field{alias.FieldVehicleCount}, numeric: true},
			{key: "headcount", label: "인원", candidates: []alias.Field{alias.FieldHeadcount}, numeric: true},
			{key: "remark", label: "비고", candidates: []alias.Field{alias.FieldRemark}},
		},
	},
	models.ServiceTour: {
		title: "투어",
		fields: []displayField{
			{key: "tourName", label: "투어명", candidates: []alias.Field{alias.FieldTourName}},
			{key: "tourDate", label: "이용일", candidates: []alias.Field{alias.FieldTourDate}},
			{key: "quantity", label: "수량", candidates: []alias.Field{alias.FieldQuantity, alias.FieldHeadcount}, numeric: true},
			{key: "remark", label: "비고", candidates: []alias.Field{alias.FieldRemark}},
		},
	},
}

type Normalizer struct {
	aliases *alias.Resolver
}

func NewNormalizer(aliases *alias.Resolver) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Sections maps the matched rows of every bookable service into display
// sections, merging duplicates where the service's layout says so. Section
// and item order follow first appearance in the match set, so the output is
// stable for a given grouping regardless of how rows were permuted.
func (n *Normalizer) Sections(rows []models.MatchedRow) []models.Section {
	bySvc := make(map[models.Service][]models.MatchedRow)
	for _, r := range rows {
		bySvc[r.Service] = append(bySvc[r.Service], r)
	}

	var out []models.Section
	for _, svc := range models.BookableServices() {
		svcRows := bySvc[svc]
		if len(svcRows) == 0 {
			continue
		}
		layout := layouts[svc]
		items := n.normalize(svc, layout, svcRows)
		if layout.mergeKeys != nil {
			items = merge(layout, items)
		}
		out = append(out, models.Section{Service: svc, Title: layout.title, Items: items})
	}
	return out
}

func (n *Normalizer) normalize(svc models.Service, layout serviceLayout, rows []models.MatchedRow) []models.Item {
	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		item := models.Item{Service: svc, MergeCount: 1}
		for _, f := range layout.fields {
			item.Fields = append(item.Fields, models.ItemField{
				Key:   f.key,
				Label: f.label,
				Value: n.aliases.CellAny(row, f.candidates...),
			})
		}
		items = append(items, item)
	}
	return items
}

// merge groups items by their equivalence key and collapses each group into
// one item: numeric fields are summed, everything else keeps the first-seen
// value, and the merge count annotates how many source rows were folded in.
// Grouping depends only on the key, so the summed values are independent of
// input row order.
func merge(layout serviceLayout, items []models.Item) []models.Item {
	numeric := make(map[string]bool)
	for _, f := range layout.fields {
		if f.numeric {
			numeric[f.key] = true
		}
	}

	type group struct {
		item models.Item
		sums map[string]decimal.Decimal
	}
	var order []string
	groups := make(map[string]*group)

	for _, item := range items {
		key := mergeKey(layout, item)
		g, ok := groups[key]
		if !ok {
			g = &group{item: cloneItem(item), sums: make(map[string]decimal.Decimal)}
			for _, f := range item.Fields {
				if numeric[f.Key] {
					g.sums[f.Key] = pricing.ParseCount(f.Value)
				}
			}
			groups[key] = g
			order = append(order, key)
			continue
		}

		g.item.MergeCount++
		for _, f := range item.Fields {
			if numeric[f.Key] {
				g.sums[f.Key] = g.sums[f.Key].Add(pricing.ParseCount(f.Value))
			}
		}
	}

	out := make([]models.Item, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if g.item.MergeCount > 1 {
			for i, f := range g.item.Fields {
				if !numeric[f.Key] {
					continue
				}
				g.item.Fields[i].Value = fmt.Sprintf("%s (%s)", g.sums[f.Key].String(), Annotation(g.item.MergeCount))
			}
		}
		out = append(out, g.item)
	}
	return out
}

// Annotation is the merge marker shown next to consolidated counters, e.g.
// "2 merged" when two source rows were folded into one item.
func Annotation(count int) string {
	return fmt.Sprintf("%d merged", count)
}

func mergeKey(layout serviceLayout, item models.Item) string {
	vals := make(map[string]string, len(item.Fields))
	for _, f := range item.Fields {
		vals[f.Key] = f.Value
	}
	key := ""
	for _, k := range layout.mergeKeys {
		key += vals[k] + "\x00"
	}
	return key
}

func cloneItem(item models.Item) models.Item {
	out := item
	out.Fields = make([]models.ItemField, len(item.Fields))
	copy(out.Fields, item.Fields)
	return out
}
