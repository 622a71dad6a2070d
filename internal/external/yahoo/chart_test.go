package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Database: config.DatabaseConfig{URL: "dummy"},
	}
	log := logger.New(cfg)
	httpClient := httputil.New(cfg, log).DisableRetry()

	return NewClient(&config.YahooConfig{
		BaseURL:   baseURL,
		UserAgent: "jhlj-test-agent",
	}, httpClient, log)
}

// Jan 15-17 2024, Tuesday close missing (null)
const sampleChart = `{
	"chart": {
		"result": [{
			"timestamp": [1705276800, 1705363200, 1705449600],
			"indicators": {
				"quote": [{
					"close": [100.0, null, 110.0]
				}]
			}
		}],
		"error": null
	}
}`

func TestParseChartResponse(t *testing.T) {
	quotes, err := parseChartResponse("NVDA", []byte(sampleChart))
	if err != nil {
		t.Fatalf("parseChartResponse() error = %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("parseChartResponse() got %d quotes, want 2 (null close skipped)", len(quotes))
	}

	first := quotes[0]
	if first.Symbol != "NVDA" {
		t.Errorf("Symbol = %s, want NVDA", first.Symbol)
	}
	wantDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", first.Date, wantDate)
	}
	if first.Close != 100.0 {
		t.Errorf("Close = %v, want 100.0", first.Close)
	}
	if first.PctChange != nil {
		t.Errorf("PctChange = %v, want nil for first point", *first.PctChange)
	}

	second := quotes[1]
	wantDate = time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	if !second.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", second.Date, wantDate)
	}
	if second.Close != 110.0 {
		t.Errorf("Close = %v, want 110.0", second.Close)
	}
	// Change is computed against the previous traded day, not the null gap
	if second.PctChange == nil {
		t.Fatal("PctChange = nil, want 10.0")
	}
	if *second.PctChange != 10.0 {
		t.Errorf("PctChange = %v, want 10.0", *second.PctChange)
	}
}

func TestParseChartResponseError(t *testing.T) {
	body := `{
		"chart": {
			"result": null,
			"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
		}
	}`

	_, err := parseChartResponse("WRONG", []byte(body))
	if err == nil {
		t.Fatal("parseChartResponse() expected error for chart error response")
	}
}

func TestParseChartResponseEmptyResult(t *testing.T) {
	body := `{"chart": {"result": [], "error": null}}`
	if _, err := parseChartResponse("NVDA", []byte(body)); err == nil {
		t.Error("parseChartResponse() expected error for empty result")
	}
}

func TestParseChartResponseInvalidJSON(t *testing.T) {
	if _, err := parseChartResponse("NVDA", []byte("<html>rate limited</html>")); err == nil {
		t.Error("parseChartResponse() expected error for invalid JSON")
	}
}

func TestFetchDailyCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/NVDA" {
			t.Errorf("path = %s, want /v8/finance/chart/NVDA", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %s, want 1d", r.URL.Query().Get("interval"))
		}
		if r.URL.Query().Get("period1") == "" || r.URL.Query().Get("period2") == "" {
			t.Error("period1/period2 params missing")
		}
		if got := r.Header.Get("User-Agent"); got != "jhlj-test-agent" {
			t.Errorf("User-Agent = %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleChart))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)

	quotes, err := c.FetchDailyCloses(context.Background(), "NVDA", from, to)
	if err != nil {
		t.Fatalf("FetchDailyCloses() error = %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("FetchDailyCloses() got %d quotes, want 2", len(quotes))
	}
}

func TestFetchLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleChart))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	latest, err := c.FetchLatest(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("FetchLatest() error = %v", err)
	}
	if latest.Close != 110.0 {
		t.Errorf("Close = %v, want 110.0", latest.Close)
	}
	if latest.PctChange == nil {
		t.Error("PctChange = nil, want 10.0")
	}
}

func TestFetchDailyClosesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.FetchDailyCloses(context.Background(), "NVDA",
		time.Now().AddDate(0, 0, -7), time.Now())
	if err == nil {
		t.Error("FetchDailyCloses() expected error on 429")
	}
}
