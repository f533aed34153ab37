package render

// DefaultTemplate is the built-in confirmation document used when no
// template file is configured. Field names follow the consolidated order's
// field map.
const DefaultTemplate = `===============================
예약 확인서 (Reservation Confirmation)
===============================

주문번호: {{ orderId }}
예약일: {{ reservedAt }}
예약자: {{ koreanName }} ({{ englishName }})
이메일: {{ email }}
연락처: {{ phone }}
카톡: {{ messengerId }}

인원: 성인 {{ adults }} / 아동 {{ children }} / 유아 {{ toddlers }} (총 {{ totalPersons }})

[크루즈]
{{ cruiseSection }}

[호텔]
{{ hotelSection }}

[공항픽업]
{{ transferSection }}

[렌터카]
{{ rentcarSection }}

[투어]
{{ tourSection }}

-------------------------------
통화별 합계:
{{ subtotals }}

총 합계: {{ grandTotal }}
===============================
`
