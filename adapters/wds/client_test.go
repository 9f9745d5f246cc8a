package wds

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statfeed/domain/cube"
	"statfeed/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second)
}

func TestCubeMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/getCubeMetadata", r.URL.Path)

		var payload []map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload, 1)
		assert.Equal(t, 12100168, payload[0]["productId"])

		w.Write([]byte(`[{
			"status": "SUCCESS",
			"object": {
				"productId": 12100168,
				"dimension": [
					{
						"dimensionNameEn": "Geography",
						"dimensionPositionId": 1,
						"member": [
							{"memberId": 1, "memberNameEn": "Canada"},
							{"memberId": 6, "memberNameEn": "Quebec"}
						]
					},
					{
						"dimensionNameEn": "Trade",
						"dimensionPositionId": 2,
						"member": [{"memberId": 1, "memberNameEn": "Import"}]
					}
				]
			}
		}]`))
	})

	meta, err := client.CubeMetadata(context.Background(), 12100168)
	require.NoError(t, err)

	assert.Equal(t, cube.ProductID(12100168), meta.ProductID)
	require.Len(t, meta.Dimensions, 2)
	assert.Equal(t, 1, meta.Dimensions["Geography"].Position)
	assert.Equal(t, "6", meta.Dimensions["Geography"].Members["Quebec"])
	assert.Equal(t, "1", meta.Dimensions["Trade"].Members["Import"])
}

func TestCubeMetadataProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"status": "FAILED", "object": "Cube not found"}]`))
	})

	_, err := client.CubeMetadata(context.Background(), 99999999)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeProvider))
	assert.Contains(t, err.Error(), "FAILED")
}

func TestCubeMetadataMalformedResponse(t *testing.T) {
	for name, body := range map[string]string{
		"object instead of list": `{"status": "SUCCESS"}`,
		"empty list":             `[]`,
		"no dimensions":          `[{"status": "SUCCESS", "object": {"dimension": []}}]`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})

			_, err := client.CubeMetadata(context.Background(), 12100168)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.CodeMalformedResponse))
		})
	}
}

func TestCubeMetadataHTTPErrorIsTransport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})

	_, err := client.CubeMetadata(context.Background(), 12100168)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTransport))
}

func TestCubeMetadataConnectionRefusedIsTransport(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, time.Second)

	_, err := client.CubeMetadata(context.Background(), 12100168)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTransport))
}

func TestResolveVectors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getSeriesInfoFromCubePidCoord", r.URL.Path)

		var payload []map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload, 2)
		assert.Equal(t, "1.1.0.0.0.0.0.0.0.0", payload[0]["coordinate"])

		w.Write([]byte(`[
			{"status": "SUCCESS", "object": {"vectorId": 1001, "SeriesTitleEn": "Canada;Import"}},
			{"status": "SUCCESS", "object": {"vectorId": 1002, "SeriesTitleEn": "Canada;Export"}}
		]`))
	})

	vectors, err := client.ResolveVectors(context.Background(), 12100168, []cube.Coordinate{
		"1.1.0.0.0.0.0.0.0.0",
		"1.2.0.0.0.0.0.0.0.0",
	})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{
		1001: "Canada;Import",
		1002: "Canada;Export",
	}, vectors)
}

func TestResolveVectorsEmptyInputIsInvalidQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty coordinate list")
	})

	_, err := client.ResolveVectors(context.Background(), 12100168, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidQuery))
}

func TestResolveVectorsSkipsNullVectorSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"status": "SUCCESS", "object": {"vectorId": 0, "SeriesTitleEn": ""}},
			{"status": "SUCCESS", "object": {"vectorId": 42, "SeriesTitleEn": "Quebec;Import"}}
		]`))
	})

	vectors, err := client.ResolveVectors(context.Background(), 12100168, []cube.Coordinate{
		"9.1.0.0.0.0.0.0.0.0",
		"6.1.0.0.0.0.0.0.0.0",
	})
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{42: "Quebec;Import"}, vectors)
}

func TestResolveVectorsAllSentinelsIsUnresolvable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"status": "SUCCESS", "object": {"vectorId": 0}}]`))
	})

	_, err := client.ResolveVectors(context.Background(), 12100168, []cube.Coordinate{"9.9.0.0.0.0.0.0.0.0"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnresolvableSelection))
}

func TestObservations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/getDataFromVectorByReferencePeriodRange", r.URL.Path)

		query := r.URL.Query()
		// Ids are sorted and individually quoted regardless of input order.
		assert.Equal(t, `"1001","1002"`, query.Get("vectorIds"))
		assert.Equal(t, "2020-01-01", query.Get("startRefPeriod"))
		assert.Equal(t, "2020-12-31", query.Get("endReferencePeriod"))

		w.Write([]byte(`[
			{"status": "SUCCESS", "object": {"vectorId": 1001, "vectorDataPoint": [
				{"refPer": "2020-02-01", "value": 110.0},
				{"refPer": "2020-01-01", "value": 100.0}
			]}},
			{"status": "SUCCESS", "object": {"vectorId": 1002, "vectorDataPoint": [
				{"refPer": "2020-01-01", "value": null},
				{"refPer": "2020-02-01", "value": 55.5}
			]}}
		]`))
	})

	start, _ := time.Parse("2006-01-02", "2020-01-01")
	end, _ := time.Parse("2006-01-02", "2020-12-31")

	obs, err := client.Observations(context.Background(), []int64{1002, 1001}, start, end)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	// Points come back sorted by reference period.
	require.Len(t, obs[1001], 2)
	assert.Equal(t, 100.0, obs[1001][0].Value)
	assert.Equal(t, "2020-01-01", obs[1001][0].RefPeriod.Format("2006-01-02"))
	assert.Equal(t, 110.0, obs[1001][1].Value)

	// The null-valued point is skipped, not zero-filled.
	require.Len(t, obs[1002], 1)
	assert.Equal(t, 55.5, obs[1002][0].Value)
}

func TestObservationsEmptyInputIsInvalidQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty vector list")
	})

	_, err := client.Observations(context.Background(), nil, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidQuery))
}

func TestObservationsBadRefPeriodIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"status": "SUCCESS", "object": {"vectorId": 7, "vectorDataPoint": [
			{"refPer": "not-a-date", "value": 1.0}
		]}}]`))
	})

	_, err := client.Observations(context.Background(), []int64{7}, time.Time{}, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeMalformedResponse))
}
