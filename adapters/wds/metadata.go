package wds

import (
	"context"

	"github.com/tidwall/gjson"

	"statfeed/domain/cube"
	"statfeed/internal/errors"
)

// CubeMetadata fetches the dimension catalogue for a product id.
//
// Error mapping follows the provider contract: non-2xx -> TRANSPORT_ERROR,
// a response that is not a non-empty list -> MALFORMED_RESPONSE, an
// item-level status other than the success marker -> PROVIDER_ERROR
// carrying the status text and payload.
func (c *Client) CubeMetadata(ctx context.Context, pid cube.ProductID) (cube.Metadata, error) {
	payload := []map[string]interface{}{{"productId": int(pid)}}
	body, err := c.postJSON(ctx, "/getCubeMetadata", payload)
	if err != nil {
		return cube.Metadata{}, err
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() || len(parsed.Array()) == 0 {
		return cube.Metadata{}, errors.MalformedResponse("metadata response is not a non-empty list")
	}

	item := parsed.Array()[0]
	if status := item.Get("status").String(); status != statusSuccess {
		return cube.Metadata{}, errors.Provider(status, item.Get("object").Raw)
	}

	meta := cube.Metadata{
		ProductID:  pid,
		Dimensions: make(map[string]cube.Dimension),
	}
	for _, dim := range item.Get("object.dimension").Array() {
		members := make(map[string]string)
		for _, m := range dim.Get("member").Array() {
			members[m.Get("memberNameEn").String()] = m.Get("memberId").String()
		}
		name := dim.Get("dimensionNameEn").String()
		meta.Dimensions[name] = cube.Dimension{
			Name:     name,
			Position: int(dim.Get("dimensionPositionId").Int()),
			Members:  members,
		}
	}

	if len(meta.Dimensions) == 0 {
		return cube.Metadata{}, errors.MalformedResponse("metadata object carries no dimensions")
	}
	if err := meta.Validate(); err != nil {
		return cube.Metadata{}, errors.MalformedResponse("invalid dimension catalogue: " + err.Error())
	}
	return meta, nil
}
