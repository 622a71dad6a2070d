package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// writeExport renders the four-section CSV export: summary header, daily
// index rows, individual listings (latest snapshot each), and summary
// statistics. Blank cells mean no observation.
func writeExport(w io.Writer, daily []*contracts.DailyStat, listings []*contracts.ScoredListing, now time.Time) error {
	cw := csv.NewWriter(w)

	cw.Write([]string{"JENSEN HUANG LEATHER JACKET INDEX - DATA EXPORT"})
	cw.Write([]string{"Generated: " + now.Format(time.RFC3339)})
	cw.Write([]string{})

	cw.Write([]string{"=== DAILY INDEX DATA ==="})
	cw.Write([]string{
		"Date", "Avg Price ($)", "Median Price ($)", "Avg Sold Price ($)",
		"Total Listings", "Sold Count", "Avg Jensen Score",
		"NVDA Close ($)", "NVDA % Change",
	})
	for i := len(daily) - 1; i >= 0; i-- {
		d := daily[i]
		cw.Write([]string{
			d.DateStr,
			fmtFloat(d.AvgPrice),
			fmtFloat(d.MedianPrice),
			fmtFloat(d.AvgSoldPrice),
			blankZero(d.TotalListings),
			blankZero(d.SoldCount),
			fmtFloat(d.AvgScore),
			fmtFloat(d.QuoteClose),
			fmtFloat(d.QuotePct),
		})
	}
	cw.Write([]string{})

	cw.Write([]string{"=== INDIVIDUAL LISTINGS ==="})
	cw.Write([]string{
		"ID", "Title", "Designer", "Price ($)", "Sold Price ($)",
		"Is Sold", "Jensen Score", "Scraped At", "URL",
	})
	for _, l := range listings {
		sold := "No"
		if l.Sold {
			sold = "Yes"
		}
		cw.Write([]string{
			l.ID,
			l.Title,
			l.Designer,
			fmt.Sprintf("%.2f", l.Price),
			fmtFloat(l.SoldPrice),
			sold,
			strconv.Itoa(l.Score),
			l.ScrapedAt.UTC().Format(time.RFC3339),
			l.URL,
		})
	}
	cw.Write([]string{})

	cw.Write([]string{"=== SUMMARY STATISTICS ==="})
	cw.Write([]string{"Metric", "Value"})
	writeSummaryStats(cw, daily, listings)

	cw.Flush()
	return cw.Error()
}

func writeSummaryStats(cw *csv.Writer, daily []*contracts.DailyStat, listings []*contracts.ScoredListing) {
	var sold, sumScore, maxScore int
	var sumPrice, minPrice, maxPrice float64
	for i, l := range listings {
		if l.Sold {
			sold++
		}
		sumPrice += l.Price
		sumScore += l.Score
		if i == 0 || l.Price < minPrice {
			minPrice = l.Price
		}
		if i == 0 || l.Price > maxPrice {
			maxPrice = l.Price
		}
		if i == 0 || l.Score > maxScore {
			maxScore = l.Score
		}
	}

	n := len(listings)
	cw.Write([]string{"Total Listings Tracked", strconv.Itoa(n)})
	cw.Write([]string{"Total Sold", strconv.Itoa(sold)})
	if n > 0 {
		cw.Write([]string{"Average Price ($)", fmt.Sprintf("%.2f", sumPrice/float64(n))})
		cw.Write([]string{"Min Price ($)", fmt.Sprintf("%.2f", minPrice)})
		cw.Write([]string{"Max Price ($)", fmt.Sprintf("%.2f", maxPrice)})
		cw.Write([]string{"Average Jensen Score", fmt.Sprintf("%.2f", float64(sumScore)/float64(n))})
		cw.Write([]string{"Max Jensen Score", strconv.Itoa(maxScore)})
	} else {
		cw.Write([]string{"Average Price ($)", "N/A"})
		cw.Write([]string{"Min Price ($)", "N/A"})
		cw.Write([]string{"Max Price ($)", "N/A"})
		cw.Write([]string{"Average Jensen Score", "N/A"})
		cw.Write([]string{"Max Jensen Score", "N/A"})
	}

	if len(daily) > 0 {
		cw.Write([]string{"Data Start Date", daily[0].DateStr})
		cw.Write([]string{"Data End Date", daily[len(daily)-1].DateStr})
	} else {
		cw.Write([]string{"Data Start Date", "N/A"})
		cw.Write([]string{"Data End Date", "N/A"})
	}
}

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}

// blankZero renders counts the way the daily table does: zero on a day
// with no observations is shown as blank, not 0.
func blankZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
