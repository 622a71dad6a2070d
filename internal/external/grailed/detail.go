package grailed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchDescription fetches the full description from the listing page.
// 검색 API가 description을 생략한 리스팅에만 호출 (요청 1회 추가 비용)
func (c *Client) FetchDescription(ctx context.Context, id string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait failed: %w", err)
	}

	fullURL := fmt.Sprintf("%s/listings/%s", c.baseURL, id)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "text/html",
		"Referer":    c.baseURL + "/",
	})
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body failed: %w", err)
	}

	return parseDescriptionHTML(string(body)), nil
}

// parseDescriptionHTML extracts the listing description from page HTML.
// 페이지 구조가 바뀌어도 og:description 메타 태그는 대체로 남아 있다
func parseDescriptionHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if desc := strings.TrimSpace(doc.Find(".listing-description").First().Text()); desc != "" {
		return desc
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}

	return ""
}
