package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/cardsnipe/internal/model"
)

func sampleResult() *model.ScanResult {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.ScanResult{
		ID:         "scan-1",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Deals: []model.Deal{
			{
				Listing: model.Listing{
					ID:     "1",
					Title:  "=HYPERLINK(\"http://evil\") 2023 Prizm Wembanyama #136 Silver",
					Price:  60,
					URL:    "https://www.ebay.com/itm/1",
					Player: "Victor Wembanyama",
				},
				ReferencePrice: 100,
				PercentUnder:   40,
				Confidence:     model.ConfidenceHigh,
				CompsUsed:      5,
				TopComps: []model.CompSummary{
					{Title: "2023 Prizm Wembanyama Silver", Price: 98, Score: 85},
					{Title: "2023 Prizm Wemby #136 Silver RC", Price: 100, Score: 80},
				},
			},
		},
		Stats: model.ScanStats{PlayersScanned: 1, ListingsChecked: 3, Deals: 1},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult().Deals))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, CSVHeaders, records[0])

	row := records[1]
	assert.Equal(t, "Victor Wembanyama", row[0])
	assert.True(t, strings.HasPrefix(row[1], "'="), "title is escaped")
	assert.Equal(t, "$60.00", row[2])
	assert.Equal(t, "$100.00", row[3])
	assert.Equal(t, "40.00", row[4])
	assert.Equal(t, "high", row[5])
	assert.Equal(t, "5", row[6])
	assert.Equal(t, "https://www.ebay.com/itm/1", row[7])
	assert.Equal(t, "2023 Prizm Wembanyama Silver ($98.00, score 85) | 2023 Prizm Wemby #136 Silver RC ($100.00, score 80)", row[8])
}

func TestWriteCSV_NoDeals(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(CSVHeaders, ",")+"\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded model.ScanResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "scan-1", decoded.ID)
	require.Len(t, decoded.Deals, 1)
	assert.Equal(t, 40.0, decoded.Deals[0].PercentUnder)
	assert.Contains(t, buf.String(), `"scanId": "scan-1"`)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Scan scan-1: 1 players, 3 listings checked, 1 deals (42s)")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "$100.00")
}

func TestWriteSummary_NoDeals(t *testing.T) {
	result := sampleResult()
	result.Deals = nil

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, result))
	assert.NotContains(t, buf.String(), "UNDER")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
