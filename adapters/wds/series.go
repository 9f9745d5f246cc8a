package wds

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"statfeed/domain/cube"
	"statfeed/internal/errors"
)

// ResolveVectors translates coordinates to vector ids in one batched call.
//
// An empty coordinate list is a caller precondition violation and returns
// INVALID_QUERY without touching the network. Coordinates the provider
// answers with the null-vector sentinel (vectorId 0) are excluded; if the
// whole batch resolves to nothing usable the call fails with
// UNRESOLVABLE_SELECTION, signalling under- or mis-specified dimensions.
func (c *Client) ResolveVectors(ctx context.Context, pid cube.ProductID, coords []cube.Coordinate) (map[int64]string, error) {
	if len(coords) == 0 {
		return nil, errors.InvalidQuery("no coordinates to resolve; specify all required dimensions")
	}

	payload := make([]map[string]interface{}, len(coords))
	for i, coord := range coords {
		payload[i] = map[string]interface{}{
			"productId":  int(pid),
			"coordinate": string(coord),
		}
	}

	body, err := c.postJSON(ctx, "/getSeriesInfoFromCubePidCoord", payload)
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errors.MalformedResponse("series info response is not a list")
	}

	vectors := make(map[int64]string)
	for _, item := range parsed.Array() {
		vectorID := item.Get("object.vectorId").Int()
		if vectorID == 0 {
			continue
		}
		// Identifier and title pass through verbatim.
		vectors[vectorID] = item.Get("object.SeriesTitleEn").String()
	}

	if len(vectors) == 0 {
		return nil, errors.UnresolvableSelection(
			fmt.Sprintf("none of %d coordinates resolved to a vector; specify all required dimensions", len(coords)))
	}
	return vectors, nil
}
