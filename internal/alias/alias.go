package alias

import (
	"strings"

	"tourdesk/pkg/models"
)

// Field is a stable logical name for a piece of reservation data,
// independent of how any particular source sheet spells its column header.
type Field string

const (
	FieldOrderID     Field = "orderId"
	FieldReservedAt  Field = "reservedAt"
	FieldKoreanName  Field = "koreanName"
	FieldEnglishName Field = "englishName"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldMessengerID Field = "messengerId"

	FieldCruiseName   Field = "cruiseName"
	FieldRoomCategory Field = "roomCategory"
	FieldRoomCount    Field = "roomCount"
	FieldSchedule     Field = "schedule"
	FieldCheckIn      Field = "checkIn"
	FieldCheckOut     Field = "checkOut"
	FieldNights       Field = "nights"

	FieldAdults       Field = "adults"
	FieldChildren     Field = "children"
	FieldToddlers     Field = "toddlers"
	FieldTotalPersons Field = "totalPersons"
	FieldQuantity     Field = "quantity"
	FieldHeadcount    Field = "headcount"
	FieldVehicleCount Field = "vehicleCount"

	FieldHotelName  Field = "hotelName"
	FieldRoute      Field = "route"
	FieldPickupAt   Field = "pickupAt"
	FieldCarModel   Field = "carModel"
	FieldRentalDate Field = "rentalDate"
	FieldReturnDate Field = "returnDate"
	FieldTourName   Field = "tourName"
	FieldTourDate   Field = "tourDate"

	FieldUnitPrice  Field = "unitPrice"
	FieldTotalPrice Field = "totalPrice"
	FieldCurrency   Field = "currency"
	FieldRate       Field = "rate"
	FieldDeposit    Field = "deposit"
	FieldDiscount   Field = "discount"
	FieldBalance    Field = "balance"
	FieldRemark     Field = "remark"
)

// groups maps each canonical field to its known header spellings, in
// priority order. The sheets are maintained by hand per service, so the same
// logical column shows up under several Korean and English spellings.
// Static configuration: looked up, never mutated at runtime.
var groups = map[Field][]string{
	FieldOrderID:     {"주문번호", "예약번호", "오더번호", "order no", "order id", "orderno"},
	FieldReservedAt:  {"예약일", "예약일자", "신청일", "booking date", "reserved at"},
	FieldKoreanName:  {"한글이름", "한글 이름", "예약자명", "성명", "이름", "korean name"},
	FieldEnglishName: {"영문이름", "영문 이름", "영문명", "english name"},
	FieldEmail:       {"이메일", "메일주소", "email", "e-mail"},
	FieldPhone:       {"전화번호", "연락처", "휴대폰", "phone"},
	FieldMessengerID: {"카톡아이디", "카카오톡 아이디", "카카오톡id", "kakao id", "messenger id"},

	FieldCruiseName:   {"크루즈명", "크루즈", "선박명", "cruise name", "cruise"},
	FieldRoomCategory: {"객실등급", "객실타입", "룸카테고리", "room category", "room type"},
	FieldRoomCount:    {"객실수", "객실 수", "룸수", "room count", "rooms"},
	FieldSchedule:     {"일정", "여행일정", "schedule", "itinerary"},
	FieldCheckIn:      {"체크인", "체크인날짜", "입실일", "check-in", "check in"},
	FieldCheckOut:     {"체크아웃", "퇴실일", "check-out", "check out"},
	FieldNights:       {"박수", "숙박일수", "nights"},

	FieldAdults:       {"성인", "성인수", "대인", "adults", "adult"},
	FieldChildren:     {"아동", "아동수", "소아", "children", "child"},
	FieldToddlers:     {"유아", "유아수", "toddlers", "toddler"},
	FieldTotalPersons: {"총인원", "총 인원", "전체인원", "total pax", "total persons"},
	FieldQuantity:     {"수량", "quantity", "qty"},
	FieldHeadcount:    {"인원", "인원수", "headcount", "pax"},
	FieldVehicleCount: {"차량수", "차량대수", "vehicle count", "vehicles"},

	FieldHotelName:  {"호텔명", "호텔", "hotel name", "hotel"},
	FieldRoute:      {"노선", "구간", "픽업장소", "route", "pickup"},
	FieldPickupAt:   {"픽업일시", "픽업시간", "pickup time"},
	FieldCarModel:   {"차종", "차량모델", "car model"},
	FieldRentalDate: {"대여일", "인수일", "rental date"},
	FieldReturnDate: {"반납일", "return date"},
	FieldTourName:   {"투어명", "상품명", "tour name", "tour"},
	FieldTourDate:   {"투어일", "이용일", "tour date"},

	FieldUnitPrice:  {"단가", "1인요금", "unit price"},
	FieldTotalPrice: {"금액", "총금액", "합계", "요금", "total", "amount"},
	FieldCurrency:   {"통화", "화폐", "결제통화", "currency"},
	FieldRate:       {"환율", "적용환율", "exchange rate"},
	FieldDeposit:    {"예약금", "계약금", "deposit"},
	FieldDiscount:   {"할인", "할인금액", "discount"},
	FieldBalance:    {"잔금", "balance"},
	FieldRemark:     {"비고", "요청사항", "특이사항", "remark", "note"},
}

// Normalize trims a header and collapses internal whitespace runs to a
// single space. Case is preserved; comparisons fold case separately.
func Normalize(header string) string {
	return strings.Join(strings.Fields(header), " ")
}

func foldKey(s string) string {
	return strings.ToLower(Normalize(s))
}

// Resolver answers "which column of this sheet holds canonical field X".
// The zero configuration uses only the built-in alias groups; overrides from
// YAML/CSV config layer on top without touching the built-ins.
type Resolver struct {
	extra  map[Field][]string               // extra spellings, checked before built-ins
	pinned map[models.Service]map[Field]int // column index pinned per source
}

func NewResolver() *Resolver {
	return &Resolver{
		extra:  make(map[Field][]string),
		pinned: make(map[models.Service]map[Field]int),
	}
}

// Resolve scans the alias group for field against the normalized headers in
// alias-priority order and returns the first matching column index. A false
// result is ordinary data, not an error: callers treat missing fields as
// optional.
func (r *Resolver) Resolve(field Field, headers []string) (int, bool) {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = foldKey(h)
	}
	for _, spelling := range r.spellings(field) {
		want := foldKey(spelling)
		for i, key := range keys {
			if key == want {
				return i, true
			}
		}
	}
	return 0, false
}

// ResolveAny returns the first resolvable field of a candidate list.
func (r *Resolver) ResolveAny(fields []Field, headers []string) (int, bool) {
	for _, f := range fields {
		if i, ok := r.Resolve(f, headers); ok {
			return i, true
		}
	}
	return 0, false
}

// Cell resolves field against the row's own headers and returns the trimmed
// cell value, or "" when the field is absent. Pinned column overrides for
// the row's source win over alias lookup.
func (r *Resolver) Cell(row models.MatchedRow, field Field) string {
	if cols, ok := r.pinned[row.Service]; ok {
		if i, ok := cols[field]; ok {
			return row.Cell(i)
		}
	}
	if i, ok := r.Resolve(field, row.Headers); ok {
		return row.Cell(i)
	}
	return ""
}

// CellAny returns the first non-empty value among candidate fields.
func (r *Resolver) CellAny(row models.MatchedRow, fields ...Field) string {
	for _, f := range fields {
		if v := r.Cell(row, f); v != "" {
			return v
		}
	}
	return ""
}

func (r *Resolver) spellings(field Field) []string {
	base := groups[field]
	ex := r.extra[field]
	if len(ex) == 0 {
		return base
	}
	out := make([]string, 0, len(ex)+len(base))
	out = append(out, ex...)
	out = append(out, base...)
	return out
}

// KnownField reports whether name is a configured canonical field.
func KnownField(name string) (Field, bool) {
	f := Field(name)
	if _, ok := groups[f]; ok {
		return f, true
	}
	return "", false
}
