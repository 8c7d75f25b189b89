package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/ratelimit"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

var (
	itemIDPattern = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d+)`)
	pricePattern  = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`)
)

// SoldConfig configures a SoldScraper.
type SoldConfig struct {
	BaseURL    string // defaults to https://www.ebay.com
	CategoryID string
	HTTPClient *http.Client
}

// SoldScraper reads completed, sold listings from eBay's search pages. The
// Browse API only exposes active listings, so realized prices come from HTML.
type SoldScraper struct {
	pacer      *ratelimit.Pacer
	httpClient *http.Client
	baseURL    string
	categoryID string
	now        func() time.Time
}

// NewSoldScraper creates a scraper. Every page fetch waits on pacer first.
func NewSoldScraper(pacer *ratelimit.Pacer, config SoldConfig) *SoldScraper {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	if pacer == nil {
		pacer = ratelimit.NewPacer(0, 1)
	}
	base := strings.TrimRight(config.BaseURL, "/")
	if base == "" {
		base = "https://www.ebay.com"
	}
	category := config.CategoryID
	if category == "" {
		category = defaultCategoryID
	}
	return &SoldScraper{
		pacer:      pacer,
		httpClient: client,
		baseURL:    base,
		categoryID: category,
		now:        time.Now,
	}
}

func (s *SoldScraper) Name() string { return "sold" }

func (s *SoldScraper) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("_nkw", q.Keywords)
	params.Set("_sacat", s.categoryID)
	params.Set("LH_Sold", "1")
	params.Set("LH_Complete", "1")
	params.Set("_ipg", "120")
	if q.MinPrice > 0 {
		params.Set("_udlo", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("_udhi", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/sch/i.html?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing sold search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sold search returned status %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing sold results: %w", err)
	}

	listings := parseSoldItems(doc, s.now())
	if q.Limit > 0 && len(listings) > q.Limit {
		listings = listings[:q.Limit]
	}
	return listings, nil
}

// parseSoldItems reads result rows. Placeholder rows, rows without an item
// id and price ranges ("$10.00 to $20.00") are skipped.
func parseSoldItems(doc *goquery.Document, now time.Time) []model.Listing {
	var listings []model.Listing
	doc.Find("li.s-item, li.s-card").Each(func(i int, row *goquery.Selection) {
		title := strings.TrimSpace(row.Find(".s-item__title, .s-card__title").First().Text())
		title = strings.TrimPrefix(title, "New Listing")
		title = strings.TrimSpace(title)
		if title == "" || strings.EqualFold(title, "Shop on eBay") {
			return
		}

		href, _ := row.Find("a.s-item__link, a.su-link").First().Attr("href")
		m := itemIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}

		priceText := row.Find(".s-item__price, .s-card__price").First().Text()
		if strings.Contains(priceText, " to ") {
			return
		}
		price, ok := parsePrice(priceText)
		if !ok {
			return
		}

		listings = append(listings, model.Listing{
			ID:     m[1],
			Title:  title,
			Price:  price,
			URL:    stripQuery(href),
			SeenAt: now,
		})
	})
	return listings
}

func parsePrice(text string) (float64, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}

func stripQuery(href string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		return href[:i]
	}
	return href
}
