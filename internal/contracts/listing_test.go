package contracts

import (
	"encoding/json"
	"testing"
	"time"
)

func TestScoredListing_Band(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  string
	}{
		{"negative score is low", -3, BandLow},
		{"zero is low", 0, BandLow},
		{"four is low", 4, BandLow},
		{"five is warm", 5, BandWarm},
		{"nine is warm", 9, BandWarm},
		{"ten is jensen coded", 10, BandJensen},
		{"seventeen is jensen coded", 17, BandJensen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &ScoredListing{Score: tt.score}
			if got := l.Band(); got != tt.want {
				t.Errorf("Band() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFeatureSet_Any(t *testing.T) {
	var empty FeatureSet
	if empty.Any() {
		t.Error("empty FeatureSet should report Any() = false")
	}

	one := FeatureSet{BandCollar: true}
	if !one.Any() {
		t.Error("FeatureSet with one flag should report Any() = true")
	}
}

func TestScoredListing_JSON(t *testing.T) {
	sold := 450.0
	original := &ScoredListing{
		ID:         "12345",
		ObservedOn: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Title:      "Schott Black Leather Biker Jacket",
		Designer:   "Schott",
		Price:      385.0,
		Sold:       true,
		SoldPrice:  &sold,
		Score:      7,
		Features: FeatureSet{
			BlackLeather:      true,
			BikerSilhouette:   true,
			AspirationalBrand: true,
		},
		URL:       "https://grailed.com/listings/12345",
		ScrapedAt: time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded ScoredListing
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID mismatch: got %s, want %s", decoded.ID, original.ID)
	}
	if decoded.Score != original.Score {
		t.Errorf("Score mismatch: got %d, want %d", decoded.Score, original.Score)
	}
	if !decoded.Features.BlackLeather {
		t.Error("Features.BlackLeather should survive the round trip")
	}
	if decoded.SoldPrice == nil || *decoded.SoldPrice != sold {
		t.Errorf("SoldPrice mismatch: got %v, want %v", decoded.SoldPrice, sold)
	}
}

func TestScrapeRun_Duration(t *testing.T) {
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	run := &ScrapeRun{StartedAt: start}

	if d := run.Duration(); d != 0 {
		t.Errorf("running ScrapeRun Duration() = %v, want 0", d)
	}

	end := start.Add(90 * time.Second)
	run.FinishedAt = &end
	if d := run.Duration(); d != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", d)
	}
}
