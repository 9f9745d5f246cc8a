// Package valet fetches exchange-rate series from the central bank's CSV
// endpoints. The legacy and current eras expose differently-shaped files
// with fixed header-skip counts; both are normalized to tidy tables keyed
// on a shared date column before the caller stitches them.
package valet

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"statfeed/domain/table"
	"statfeed/internal/errors"
)

// DefaultBaseURL is the central bank's Valet API root.
const DefaultBaseURL = "https://www.bankofcanada.ca/valet"

const (
	// Fixed preamble sizes of the two CSV shapes; the header row follows.
	legacyHeaderSkip  = 8
	currentHeaderSkip = 39

	// currentGroup is the grouped series carrying the current-era rates.
	currentGroup = "FX_RATES_MONTHLY"

	dateLayout = "2006-01-02"
)

// Client fetches rate CSVs over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Valet client. An empty baseURL selects production.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LegacyRates fetches one legacy-era series per code over [start, end] and
// inner-joins them on date. Codes map series code to output column name.
// Column order follows the sorted code list so runs are deterministic.
func (c *Client) LegacyRates(ctx context.Context, codes map[string]string, start, end time.Time) (*table.Table, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	var merged *table.Table
	for _, code := range sorted {
		query := url.Values{}
		query.Set("start_date", start.Format(dateLayout))
		query.Set("end_date", end.Format(dateLayout))
		body, err := c.get(ctx, fmt.Sprintf("/observations/%s/csv?%s", url.PathEscape(code), query.Encode()))
		if err != nil {
			return nil, err
		}

		series, err := parseSeriesCSV(body, legacyHeaderSkip, map[string]string{code: codes[code]})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse legacy series %s", code)
		}
		if merged == nil {
			merged = series
		} else {
			merged = merged.MergeOnDate(series)
		}
	}
	return merged.SortByDate(), nil
}

// CurrentRates fetches the current-era grouped CSV from start onward,
// keeping only the coded columns renamed per the mapping.
func (c *Client) CurrentRates(ctx context.Context, codes map[string]string, start time.Time) (*table.Table, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query := url.Values{}
	query.Set("start_date", start.Format(dateLayout))
	body, err := c.get(ctx, fmt.Sprintf("/observations/group/%s/csv?%s", currentGroup, query.Encode()))
	if err != nil {
		return nil, err
	}

	series, err := parseSeriesCSV(body, currentHeaderSkip, codes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse current rates")
	}
	return series.SortByDate(), nil
}

func (c *Client) get(ctx context.Context, pathAndQuery string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Transport("HTTP request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport("failed to read response body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Transport(fmt.Sprintf("rate source returned HTTP %d", resp.StatusCode), nil)
	}
	return body, nil
}

// parseSeriesCSV skips the fixed preamble, reads the header row, and keeps
// the date column plus every column named in codes (renamed to its mapped
// label). Rows with unparseable dates or values are skipped.
func parseSeriesCSV(body []byte, skipLines int, codes map[string]string) (*table.Table, error) {
	lines := strings.Split(string(body), "\n")
	if len(lines) <= skipLines {
		return nil, errors.MalformedResponse(
			fmt.Sprintf("CSV has %d lines, expected a header after %d preamble lines", len(lines), skipLines))
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[skipLines:], "\n")))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.MalformedResponse("CSV header is unreadable: " + err.Error())
	}

	dateCol := -1
	valueCols := make(map[int]string) // column index -> output name
	var order []string
	for i, name := range header {
		name = strings.TrimSpace(name)
		if strings.EqualFold(name, "date") {
			dateCol = i
			continue
		}
		if label, ok := codes[name]; ok {
			valueCols[i] = label
			order = append(order, label)
		}
	}
	if dateCol < 0 {
		return nil, errors.MalformedResponse("CSV header carries no date column")
	}
	if len(valueCols) == 0 {
		return nil, errors.MalformedResponse("CSV header carries none of the requested series")
	}

	t := table.New(nil, order)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if dateCol >= len(record) {
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(record[dateCol]))
		if err != nil {
			continue
		}
		values := make(map[string]float64, len(valueCols))
		for i, label := range valueCols {
			if i >= len(record) {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64); err == nil {
				values[label] = v
			}
		}
		if len(values) == 0 {
			continue
		}
		t.Append(table.Row{Labels: map[string]string{}, Date: date, Values: values})
	}
	return t, nil
}
