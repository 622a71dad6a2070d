package grailed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// designerKeywords backfills the designer when the feed reports "Unknown".
var designerKeywords = []string{
	"Celine", "Tom Ford", "YSL", "Saint Laurent", "Rick Owens", "Schott", "AllSaints",
}

// searchResponse is the marketplace search envelope.
type searchResponse struct {
	Listings []searchListing `json:"listings"`
}

type searchListing struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Designer    struct {
		Name string `json:"name"`
	} `json:"designer"`
	Price     float64 `json:"price"`
	Sold      bool    `json:"sold"`
	SoldPrice float64 `json:"sold_price"`
}

// Search fetches one page of listings matching a query.
// ⭐ SSOT: Grailed 검색 호출은 이 함수에서만
// sold=true asks for recently sold listings (price realization data),
// sold=false for items currently on sale.
func (c *Client) Search(ctx context.Context, query string, sold bool) ([]*contracts.RawListing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("sold", fmt.Sprintf("%t", sold))
	params.Set("on_sale", fmt.Sprintf("%t", !sold))
	params.Set("hits", fmt.Sprintf("%d", hitsPerPage))
	params.Set("page", "1")

	fullURL := fmt.Sprintf("%s/api/listings/search?%s", c.baseURL, params.Encode())

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
		"Referer":    c.baseURL + "/",
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

	listings, err := c.parseSearchResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"query": query,
		"sold":  sold,
		"count": len(listings),
	}).Debug("Fetched listings")
	return listings, nil
}

// parseSearchResponse maps the search JSON onto raw listings.
func (c *Client) parseSearchResponse(body []byte) ([]*contracts.RawListing, error) {
	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listings := make([]*contracts.RawListing, 0, len(sr.Listings))
	for _, item := range sr.Listings {
		id := item.ID.String()

		designer := item.Designer.Name
		if designer == "" {
			designer = "Unknown"
		}
		// 피드의 디자이너가 비어 있으면 제목에서 추론
		if designer == "Unknown" {
			if hit := InferDesigner(item.Title); hit != "" {
				designer = hit
			}
		}

		raw := &contracts.RawListing{
			ID:          id,
			Title:       item.Title,
			Description: item.Description,
			Designer:    designer,
			Price:       item.Price,
			Sold:        item.Sold,
			URL:         fmt.Sprintf("%s/listings/%s", c.baseURL, id),
			ObservedAt:  now,
		}
		if item.Sold {
			soldPrice := item.SoldPrice
			raw.SoldPrice = &soldPrice
		}
		listings = append(listings, raw)
	}
	return listings, nil
}

// InferDesigner resolves a designer from title keywords. Returns "" when
// nothing matches.
func InferDesigner(title string) string {
	lower := strings.ToLower(title)
	for _, kw := range designerKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
