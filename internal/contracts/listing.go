package contracts

import "time"

// RawListing is one marketplace observation exactly as the scraper saw it.
// ⭐ SSOT: 스크레이퍼 → 스코어링 입력 타입
// Immutable after scrape. Duplicate IDs across different observation dates are
// valid re-observations, not errors.
type RawListing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"` // 없을 수 있음 (검색 API가 생략)
	Designer    string    `json:"designer,omitempty"`
	Price       float64   `json:"price"`
	Sold        bool      `json:"sold"`
	SoldPrice   *float64  `json:"sold_price,omitempty"` // Sold=true일 때만
	URL         string    `json:"url"`
	ObservedAt  time.Time `json:"observed_at"`
}

// FeatureSet is the structured signal extraction for one listing.
// Derived and ephemeral: re-extracting from identical text always yields the
// same set. Persisted alongside the score for auditability only.
type FeatureSet struct {
	BlackLeather      bool `json:"is_black_leather"`
	BikerSilhouette   bool `json:"is_biker_silhouette"`
	AsymmetricZip     bool `json:"has_asymmetric_zip"`
	BandCollar        bool `json:"has_band_collar"`
	AspirationalBrand bool `json:"is_aspirational_brand"`
	TechCEO           bool `json:"mentions_tech_ceo"`
	SubjectDirect     bool `json:"mentions_subject_directly"`
	BrownTanSuede     bool `json:"is_brown_tan_suede"`
	SuedeMention      bool `json:"mentions_suede"` // 스웨이드 가중 패널티 판정용
}

// Any reports whether at least one signal fired.
func (f FeatureSet) Any() bool {
	return f.BlackLeather || f.BikerSilhouette || f.AsymmetricZip ||
		f.BandCollar || f.AspirationalBrand || f.TechCEO ||
		f.SubjectDirect || f.BrownTanSuede || f.SuedeMention
}

// ScoredListing is one scored daily snapshot of a listing.
// One record exists per (ID, ObservedOn) pair; re-observing the same listing
// on a later date appends a new record, it never overwrites history.
type ScoredListing struct {
	ID          string     `json:"id"`
	ObservedOn  time.Time  `json:"observed_on"` // 날짜 단위 스냅샷 키
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Designer    string     `json:"designer"`
	Price       float64    `json:"price"`
	Sold        bool       `json:"is_sold"`
	SoldPrice   *float64   `json:"sold_price,omitempty"`
	Score       int        `json:"jensen_score"`
	Features    FeatureSet `json:"features"`
	URL         string     `json:"url"`
	ScrapedAt   time.Time  `json:"scraped_at"`
}

// Score bands for presentation. Negative totals fall in BandLow.
const (
	BandLow    = "low"          // score < 5
	BandWarm   = "warm"         // 5 <= score < 10
	BandJensen = "jensen_coded" // score >= 10
)

// Band buckets the affinity score for display.
func (s *ScoredListing) Band() string {
	switch {
	case s.Score >= 10:
		return BandJensen
	case s.Score >= 5:
		return BandWarm
	default:
		return BandLow
	}
}

// SkipReason explains why a malformed listing was dropped before scoring.
// Malformed input never fails a batch; it is skipped and counted.
type SkipReason string

const (
	SkipMissingID       SkipReason = "missing_id"
	SkipMissingPrice    SkipReason = "missing_price"
	SkipMissingObserved SkipReason = "missing_observed_at"
)
