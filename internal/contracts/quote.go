package contracts

import "time"

// QuotePoint is one daily close for the tracked instrument.
// ⭐ SSOT: 시세 데이터 타입
// One sample per trading day; weekend/holiday gaps are expected and are not
// errors.
type QuotePoint struct {
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Close     float64   `json:"close"`
	PctChange *float64  `json:"pct_change,omitempty"` // 전일 대비 %, 첫 샘플은 nil
}

// DatedValue is one (date, value) sample of a daily series, the unit the
// correlator pairs across series.
type DatedValue struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
