package jensen

import (
	"strings"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// Fixed matching vocabularies, evaluated in fixed group order:
// color > silhouette > hardware > collar > brand > theme.
// ⭐ SSOT: 시그널 어휘 정의는 여기서만
var (
	brownTanVocab   = []string{"brown", "tan", "suede"}
	silhouetteVocab = []string{"biker", "moto", "motorcycle", "cafe racer"}
	hardwareVocab   = []string{"asymmetric", "asymmetrical"}
	collarVocab     = []string{"band collar", "mandarin collar"}
	techVocab       = []string{"tech", "ceo"}
	subjectVocab    = []string{"nvidia", "jensen"}

	// aspirationalBrands is matched against the designer field only.
	aspirationalBrands = []string{
		"schott", "allsaints", "the kooples", "acne studios",
		"saint laurent", "ysl", "yves saint laurent", "rick owens",
		"celine", "tom ford", "hermes", "prada", "gucci", "balenciaga",
		"chrome hearts", "belstaff", "brunello cucinelli", "loro piana",
		"undercover", "julius", "fendi", "dior", "berluti", "isaia",
		"brioni", "kiton",
	}
)

// Extract converts listing text into a FeatureSet by case-insensitive
// substring matching. Pure: identical text always yields an identical set.
// A missing description is an empty string, never an error; no text at all
// yields the zero FeatureSet.
func Extract(title, description, designer string) contracts.FeatureSet {
	text := strings.ToLower(title + " " + description)
	brand := strings.ToLower(designer)

	fs := contracts.FeatureSet{}

	// Color group. Black wins over brown/tan/suede when both appear;
	// the penalty flags stay unset in that case.
	black := strings.Contains(text, "black") && strings.Contains(text, "leather")
	if black {
		fs.BlackLeather = true
	} else if containsAny(text, brownTanVocab) {
		fs.BrownTanSuede = true
		fs.SuedeMention = strings.Contains(text, "suede")
	}

	fs.BikerSilhouette = containsAny(text, silhouetteVocab)
	fs.AsymmetricZip = containsAny(text, hardwareVocab)
	fs.BandCollar = containsAny(text, collarVocab)
	fs.AspirationalBrand = containsAny(brand, aspirationalBrands)
	fs.TechCEO = containsAny(text, techVocab)
	fs.SubjectDirect = containsAny(text, subjectVocab)

	return fs
}

// Validate rejects a listing before scoring when a required field is absent.
// The second return is false for a well-formed listing.
func Validate(l *contracts.RawListing) (contracts.SkipReason, bool) {
	if strings.TrimSpace(l.ID) == "" {
		return contracts.SkipMissingID, true
	}
	if l.Price <= 0 {
		return contracts.SkipMissingPrice, true
	}
	if l.ObservedAt.IsZero() {
		return contracts.SkipMissingObserved, true
	}
	return "", false
}

func containsAny(s string, vocab []string) bool {
	for _, kw := range vocab {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
