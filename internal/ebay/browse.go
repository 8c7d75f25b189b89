package ebay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/ratelimit"
)

const (
	browseSearchPath   = "/buy/browse/v1/item_summary/search"
	defaultMarketplace = "EBAY_US"
	maxBrowseLimit     = 200
)

var errUnauthorized = errors.New("ebay: unauthorized")

// BrowseConfig configures a BrowseClient.
type BrowseConfig struct {
	Sandbox     bool
	BaseURL     string // overrides the API host, for tests
	Marketplace string // defaults to EBAY_US
	CategoryID  string // defaults to sports trading card singles
	HTTPClient  *http.Client
}

// BrowseClient searches active fixed-price listings with the Browse API.
type BrowseClient struct {
	tokens      *TokenSource
	pacer       *ratelimit.Pacer
	httpClient  *http.Client
	searchURL   string
	marketplace string
	categoryID  string
	now         func() time.Time
}

// browseResponse is the subset of item_summary/search the client reads.
type browseResponse struct {
	Total         int `json:"total"`
	ItemSummaries []struct {
		ItemID string `json:"itemId"`
		Title  string `json:"title"`
		Price  *struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"price"`
		ItemWebURL string `json:"itemWebUrl"`
	} `json:"itemSummaries"`
	Errors []struct {
		ErrorID int    `json:"errorId"`
		Message string `json:"message"`
	} `json:"errors"`
}

// NewBrowseClient creates a client. Every call waits on pacer first.
func NewBrowseClient(tokens *TokenSource, pacer *ratelimit.Pacer, config BrowseConfig) *BrowseClient {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if pacer == nil {
		pacer = ratelimit.NewPacer(0, 1)
	}
	marketplace := config.Marketplace
	if marketplace == "" {
		marketplace = defaultMarketplace
	}
	category := config.CategoryID
	if category == "" {
		category = defaultCategoryID
	}
	return &BrowseClient{
		tokens:      tokens,
		pacer:       pacer,
		httpClient:  client,
		searchURL:   apiBaseURL(config.Sandbox, config.BaseURL) + browseSearchPath,
		marketplace: marketplace,
		categoryID:  category,
		now:         time.Now,
	}
}

func (c *BrowseClient) Name() string { return "browse" }

// Available reports whether the client has credentials.
func (c *BrowseClient) Available() bool {
	return c.tokens.Configured()
}

func (c *BrowseClient) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	if !c.Available() {
		return nil, ErrNotConfigured
	}

	listings, err := c.search(ctx, q)
	if errors.Is(err, errUnauthorized) {
		// The token may have been revoked early; retry once with a new one.
		c.tokens.Invalidate()
		listings, err = c.search(ctx, q)
	}
	return listings, err
}

func (c *BrowseClient) search(ctx context.Context, q Query) ([]model.Listing, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+c.params(q).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eBay API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var parsed browseResponse
	jsonErr := json.Unmarshal(body, &parsed)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errUnauthorized
	case resp.StatusCode != http.StatusOK:
		if jsonErr == nil && len(parsed.Errors) > 0 {
			msg := parsed.Errors[0].Message
			if strings.Contains(msg, "exceeded the number of times") {
				return nil, ErrRateLimited
			}
			return nil, fmt.Errorf("eBay API error (%d): %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("eBay API returned status %d", resp.StatusCode)
	case jsonErr != nil:
		return nil, fmt.Errorf("parse eBay response: %w", jsonErr)
	}

	now := c.now()
	listings := make([]model.Listing, 0, len(parsed.ItemSummaries))
	for _, item := range parsed.ItemSummaries {
		if item.Price == nil || item.Price.Currency != "USD" {
			continue
		}
		price, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil || price <= 0 {
			continue // Skip malformed items
		}
		listings = append(listings, model.Listing{
			ID:     item.ItemID,
			Title:  item.Title,
			Price:  price,
			URL:    item.ItemWebURL,
			SeenAt: now,
		})
	}
	return listings, nil
}

func (c *BrowseClient) params(q Query) url.Values {
	filters := []string{"buyingOptions:{FIXED_PRICE}"}
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		lo, hi := "", ""
		if q.MinPrice > 0 {
			lo = strconv.FormatFloat(q.MinPrice, 'f', -1, 64)
		}
		if q.MaxPrice > 0 {
			hi = strconv.FormatFloat(q.MaxPrice, 'f', -1, 64)
		}
		filters = append(filters, fmt.Sprintf("price:[%s..%s]", lo, hi), "priceCurrency:USD")
	}

	limit := q.Limit
	if limit <= 0 || limit > maxBrowseLimit {
		limit = 50
	}

	params := url.Values{}
	params.Set("q", q.Keywords)
	params.Set("category_ids", c.categoryID)
	params.Set("filter", strings.Join(filters, ","))
	params.Set("limit", strconv.Itoa(limit))
	return params
}
