package jensen

import "github.com/wonny/jhlj/backend/internal/contracts"

// rule is one row of the scoring table: a named predicate over the
// FeatureSet and the weight it contributes when it fires.
type rule struct {
	name      string
	predicate func(contracts.FeatureSet) bool
	weight    int
}

// scoreRules is the fixed weighted rule table. Rows are independent and
// additive; mutual exclusion lives in the predicates, not in control flow.
// The brown/tan penalty and the suede penalty are exclusive by construction:
// suede takes the stronger penalty, never both.
// ⭐ SSOT: Jensen 점수 가중치 테이블
var scoreRules = []rule{
	{"black_leather", func(f contracts.FeatureSet) bool { return f.BlackLeather }, 2},
	{"biker_silhouette", func(f contracts.FeatureSet) bool { return f.BikerSilhouette }, 3},
	{"asymmetric_zip", func(f contracts.FeatureSet) bool { return f.AsymmetricZip }, 2},
	{"band_collar", func(f contracts.FeatureSet) bool { return f.BandCollar }, 1},
	{"aspirational_brand", func(f contracts.FeatureSet) bool { return f.AspirationalBrand }, 2},
	{"tech_ceo", func(f contracts.FeatureSet) bool { return f.TechCEO }, 5},
	{"subject_direct", func(f contracts.FeatureSet) bool { return f.SubjectDirect }, 10},
	{"brown_tan", func(f contracts.FeatureSet) bool { return f.BrownTanSuede && !f.SuedeMention }, -2},
	{"suede", func(f contracts.FeatureSet) bool { return f.BrownTanSuede && f.SuedeMention }, -3},
}

// RuleHit records one fired rule, for audit logs and score explanations.
type RuleHit struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Score sums the weights of every fired rule. The result is an unclamped
// integer; negative totals are valid and preserved.
func Score(f contracts.FeatureSet) int {
	total := 0
	for _, r := range scoreRules {
		if r.predicate(f) {
			total += r.weight
		}
	}
	return total
}

// Breakdown returns the fired rules in table order.
func Breakdown(f contracts.FeatureSet) []RuleHit {
	var hits []RuleHit
	for _, r := range scoreRules {
		if r.predicate(f) {
			hits = append(hits, RuleHit{Name: r.name, Weight: r.weight})
		}
	}
	return hits
}
