package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// chartResponse is the v8 chart API envelope.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"` // 휴장일은 null로 들어온다
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchDailyCloses fetches daily closes for a symbol over [from, to].
// ⭐ SSOT: Yahoo 차트 API 호출은 이 함수에서만
// Weekend and holiday gaps are normal; each returned point carries the
// day-over-day percent change, nil for the first point of the range.
func (c *Client) FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.QuotePoint, error) {
	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.baseURL, symbol, from.Unix(), to.Unix(),
	)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	quotes, err := parseChartResponse(symbol, body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(quotes),
	}).Debug("Fetched quotes")
	return quotes, nil
}

// FetchLatest fetches the most recent close with its day-over-day change.
// 최근 7일 범위를 조회해 마지막 거래일을 고른다 (연휴 대비)
func (c *Client) FetchLatest(ctx context.Context, symbol string) (*contracts.QuotePoint, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	quotes, err := c.FetchDailyCloses(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}
	return quotes[len(quotes)-1], nil
}

// parseChartResponse maps the chart JSON onto quote points.
func parseChartResponse(symbol string, body []byte) ([]*contracts.QuotePoint, error) {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, err
	}

	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s - %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	result := cr.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("missing quote indicators")
	}

	closes := result.Indicators.Quote[0].Close
	n := len(result.Timestamp)
	if len(closes) < n {
		n = len(closes)
	}

	var quotes []*contracts.QuotePoint
	var prevClose *float64
	for i := 0; i < n; i++ {
		if closes[i] == nil {
			continue
		}
		closePrice := *closes[i]

		day := time.Unix(result.Timestamp[i], 0).UTC()
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

		point := &contracts.QuotePoint{
			Symbol: symbol,
			Date:   day,
			Close:  closePrice,
		}
		if prevClose != nil && *prevClose != 0 {
			pct := (closePrice - *prevClose) / *prevClose * 100
			point.PctChange = &pct
		}
		quotes = append(quotes, point)
		prevClose = &closePrice
	}
	return quotes, nil
}
