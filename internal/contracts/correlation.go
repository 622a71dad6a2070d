package contracts

// CorrelationStatus tells callers whether the coefficients are usable.
type CorrelationStatus string

const (
	// CorrelationOK - coefficients computed from a sufficient paired sample.
	CorrelationOK CorrelationStatus = "ok"
	// CorrelationInsufficientData - fewer than 3 paired samples after the
	// date inner-join; no coefficient is emitted.
	CorrelationInsufficientData CorrelationStatus = "insufficient_data"
	// CorrelationUndefined - zero variance in either joined series; the
	// coefficient is mathematically undefined, not 0 and not ±1.
	CorrelationUndefined CorrelationStatus = "undefined"
)

// CorrelationResult is the lead-lag analysis between the listing series and
// the quote series. Recomputed on every request; never persisted.
// ⭐ SSOT: 상관관계 분석 결과 타입
type CorrelationResult struct {
	Status      CorrelationStatus `json:"status"`
	Headline    string            `json:"headline,omitempty"`
	LeadDays    int               `json:"lead_days"`
	Pairs       int               `json:"pairs"`
	R           *float64          `json:"r,omitempty"`
	RSquared    *float64          `json:"r_squared,omitempty"`
	PValue      *float64          `json:"p_value,omitempty"`
	Methodology string            `json:"methodology,omitempty"`
	Disclaimer  string            `json:"disclaimer,omitempty"`
	Insights    []string          `json:"insights"`
}

// Significant reports whether the computed p-value clears alpha.
// Returns false whenever the result carries no usable coefficients.
func (c *CorrelationResult) Significant(alpha float64) bool {
	if c.Status != CorrelationOK || c.PValue == nil {
		return false
	}
	return *c.PValue < alpha
}
