package ebay

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soldPage = `<html><body><ul class="srp-results">
<li class="s-item">
  <div class="s-item__title"><span>Shop on eBay</span></div>
  <span class="s-item__price">$20.00</span>
  <a class="s-item__link" href="https://ebay.com/itm/123456?hash=x"></a>
</li>
<li class="s-item">
  <div class="s-item__title"><span>New Listing2023 Prizm Victor Wembanyama #136 Silver RC</span></div>
  <span class="s-item__price">$1,049.99</span>
  <a class="s-item__link" href="https://www.ebay.com/itm/314159265358?hash=item49&amp;var=0"></a>
</li>
<li class="s-item">
  <div class="s-item__title">2023 Prizm Wembanyama #136 Base</div>
  <span class="s-item__price">$10.00 to $20.00</span>
  <a class="s-item__link" href="https://www.ebay.com/itm/271828182845"></a>
</li>
<li class="s-item">
  <div class="s-item__title">2023 Select Wembanyama Concourse</div>
  <span class="s-item__price">$45.50</span>
  <a class="s-item__link" href="https://www.ebay.com/itm/2023-Select-Wembanyama/161803398874?epid=1"></a>
</li>
<li class="s-item">
  <div class="s-item__title">No link here</div>
  <span class="s-item__price">$45.50</span>
</li>
</ul></body></html>`

func TestSoldScraper_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sch/i.html", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "wembanyama prizm", q.Get("_nkw"))
		assert.Equal(t, "1", q.Get("LH_Sold"))
		assert.Equal(t, "1", q.Get("LH_Complete"))
		assert.Equal(t, defaultCategoryID, q.Get("_sacat"))
		assert.Equal(t, "40", q.Get("_udlo"))
		assert.Empty(t, q.Get("_udhi"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, soldPage)
	}))
	defer server.Close()

	scraper := NewSoldScraper(nil, SoldConfig{BaseURL: server.URL})
	listings, err := scraper.Search(context.Background(), Query{Keywords: "wembanyama prizm", MinPrice: 40})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "314159265358", listings[0].ID)
	assert.Equal(t, "2023 Prizm Victor Wembanyama #136 Silver RC", listings[0].Title)
	assert.Equal(t, 1049.99, listings[0].Price)
	assert.Equal(t, "https://www.ebay.com/itm/314159265358", listings[0].URL)

	assert.Equal(t, "161803398874", listings[1].ID)
	assert.Equal(t, 45.5, listings[1].Price)
}

func TestSoldScraper_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, soldPage)
	}))
	defer server.Close()

	listings, err := NewSoldScraper(nil, SoldConfig{BaseURL: server.URL}).
		Search(context.Background(), Query{Keywords: "x", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestSoldScraper_Status(t *testing.T) {
	tests := []struct {
		status int
		limit  bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewSoldScraper(nil, SoldConfig{BaseURL: server.URL}).
				Search(context.Background(), Query{Keywords: "x"})
			require.Error(t, err)
			if tt.limit {
				assert.ErrorIs(t, err, ErrRateLimited)
			} else {
				assert.NotErrorIs(t, err, ErrRateLimited)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"$12.34", 12.34, true},
		{"$1,234", 1234, true},
		{"US $ 99.00", 99, true},
		{"$0.00", 0, false},
		{"free", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parsePrice(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
