package contracts

import (
	"encoding/json"
	"strings"
	"testing"
)

// A window with no observations must serialize as JSON null, never as 0.
func TestMetricRow_NoDataMarshalsAsNull(t *testing.T) {
	v := 123.45
	row := MetricRow{
		Name:       "Avg Jacket Price",
		Trailing91: &v,
		Trailing28: nil,
		Trailing7:  &v,
	}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"trailing28":null`) {
		t.Errorf("nil trailing window should marshal as null, got %s", s)
	}
	if !strings.Contains(s, `"trailing91":123.45`) {
		t.Errorf("present trailing window should marshal as its value, got %s", s)
	}
	if strings.Contains(s, `"trailing28":0`) {
		t.Errorf("no-data must never be coerced to 0, got %s", s)
	}
}

func TestCorrelationResult_Significant(t *testing.T) {
	p := 0.003
	r := 0.82

	tests := []struct {
		name   string
		result *CorrelationResult
		alpha  float64
		want   bool
	}{
		{
			name:   "significant at 0.05",
			result: &CorrelationResult{Status: CorrelationOK, R: &r, PValue: &p},
			alpha:  0.05,
			want:   true,
		},
		{
			name:   "not significant at 0.001",
			result: &CorrelationResult{Status: CorrelationOK, R: &r, PValue: &p},
			alpha:  0.001,
			want:   false,
		},
		{
			name:   "insufficient data never significant",
			result: &CorrelationResult{Status: CorrelationInsufficientData},
			alpha:  0.05,
			want:   false,
		},
		{
			name:   "undefined never significant",
			result: &CorrelationResult{Status: CorrelationUndefined},
			alpha:  0.05,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Significant(tt.alpha); got != tt.want {
				t.Errorf("Significant(%v) = %v, want %v", tt.alpha, got, tt.want)
			}
		})
	}
}
