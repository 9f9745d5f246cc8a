package wds

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"statfeed/domain/cube"
	"statfeed/internal/errors"
)

// refPeriodLayout is the provider's reference-period date format.
const refPeriodLayout = "2006-01-02"

// Observations fetches every vector's data points over [start, end] in one
// range query. Vector ids are sorted before the request so identical inputs
// produce identical requests. Data points whose value is missing or
// non-numeric are skipped.
func (c *Client) Observations(ctx context.Context, vectorIDs []int64, start, end time.Time) (map[int64][]cube.Observation, error) {
	if len(vectorIDs) == 0 {
		return nil, errors.InvalidQuery("no vector ids to fetch")
	}

	sorted := append([]int64(nil), vectorIDs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	quoted := make([]string, len(sorted))
	for i, id := range sorted {
		quoted[i] = fmt.Sprintf("%q", fmt.Sprintf("%d", id))
	}

	query := url.Values{}
	query.Set("vectorIds", strings.Join(quoted, ","))
	query.Set("startRefPeriod", start.Format(refPeriodLayout))
	query.Set("endReferencePeriod", end.Format(refPeriodLayout))

	body, err := c.getJSON(ctx, "/getDataFromVectorByReferencePeriodRange?"+query.Encode())
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errors.MalformedResponse("observation response is not a list")
	}

	observations := make(map[int64][]cube.Observation, len(sorted))
	for _, item := range parsed.Array() {
		vectorID := item.Get("object.vectorId").Int()
		if vectorID == 0 {
			continue
		}
		var points []cube.Observation
		for _, pt := range item.Get("object.vectorDataPoint").Array() {
			value := pt.Get("value")
			if value.Type != gjson.Number {
				continue
			}
			refPer, err := time.Parse(refPeriodLayout, pt.Get("refPer").String())
			if err != nil {
				return nil, errors.MalformedResponse(
					fmt.Sprintf("vector %d carries unparseable reference period %q", vectorID, pt.Get("refPer").String()))
			}
			points = append(points, cube.Observation{RefPeriod: refPer, Value: value.Float()})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].RefPeriod.Before(points[j].RefPeriod) })
		observations[vectorID] = points
	}
	return observations, nil
}
