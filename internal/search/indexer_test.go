package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"property_connect_backend/internal/common"
	platformElasticsearch "property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/property"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeES answers every request with the response chosen by respond and records it.
type fakeES struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(r recordedRequest) (int, string)
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	status, resp := http.StatusOK, `{}`
	if f.respond != nil {
		status, resp = f.respond(rec)
	}
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, resp)
}

func newTestIndexer(t *testing.T, fake *fakeES) *Indexer {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewIndexer(&platformElasticsearch.ESClientWrapper{Client: client}, zap.NewNop())
}

func testProperty(id string) property.Property {
	return property.Property{
		BaseModel: common.BaseModel{ID: id},
		Title:     "Villa " + id,
		Price:     100000,
		Currency:  property.CurrencyUSD,
		Latitude:  18.0,
		Longitude: -15.0,
		Type:      property.TypeSale,
		Category:  property.CategoryHouse,
		Images:    property.StringList{"a.jpg"},
	}
}

func TestIndexer_DisabledIsNoop(t *testing.T) {
	idx := NewIndexer(nil, zap.NewNop())
	ctx := context.Background()
	p := testProperty("p1")

	assert.False(t, idx.Enabled())
	assert.NoError(t, idx.Index(ctx, &p))
	assert.NoError(t, idx.Delete(ctx, "p1"))
	assert.NoError(t, idx.BulkIndex(ctx, []property.Property{p}))
	ids, err := idx.Nearby(ctx, 18, -15, 10, 20)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexer_Index(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) { return http.StatusCreated, `{"result":"created"}` }}
	idx := newTestIndexer(t, fake)
	p := testProperty("p1")

	require.NoError(t, idx.Index(context.Background(), &p))
	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/properties/_doc/p1", req.Path)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &doc))
	assert.Equal(t, "Villa p1", doc["title"])
	assert.Equal(t, map[string]interface{}{"lat": 18.0, "lon": -15.0}, doc["geo"])
}

func TestIndexer_Delete_MissingDocumentIsOK(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) { return http.StatusNotFound, `{"result":"not_found"}` }}
	idx := newTestIndexer(t, fake)

	require.NoError(t, idx.Delete(context.Background(), "gone"))
	assert.Equal(t, http.MethodDelete, fake.requests[0].Method)
	assert.Equal(t, "/properties/_doc/gone", fake.requests[0].Path)
}

func TestIndexer_Index_ErrorStatus(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) { return http.StatusBadRequest, `{"error":"mapper_parsing_exception"}` }}
	idx := newTestIndexer(t, fake)
	p := testProperty("p1")

	assert.Error(t, idx.Index(context.Background(), &p))
}

func TestIndexer_BulkIndex(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) {
		return http.StatusOK, `{"errors":false,"items":[{"index":{"_id":"p1","status":201}},{"index":{"_id":"p2","status":201}}]}`
	}}
	idx := newTestIndexer(t, fake).WithRefresh("wait_for")

	require.NoError(t, idx.BulkIndex(context.Background(), []property.Property{testProperty("p1"), testProperty("p2")}))
	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "/_bulk", req.Path)
	assert.Contains(t, req.Query, "refresh=wait_for")

	lines := strings.Split(strings.TrimSpace(req.Body), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_index":"properties","_id":"p1"}}`, lines[0])
	assert.JSONEq(t, `{"index":{"_index":"properties","_id":"p2"}}`, lines[2])
}

func TestIndexer_BulkIndex_ItemFailures(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) {
		return http.StatusOK, `{"errors":true,"items":[{"index":{"_id":"p1","status":201}},{"index":{"_id":"p2","status":400,"error":{"type":"mapper_parsing_exception"}}}]}`
	}}
	idx := newTestIndexer(t, fake)

	err := idx.BulkIndex(context.Background(), []property.Property{testProperty("p1"), testProperty("p2")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestIndexer_Nearby(t *testing.T) {
	fake := &fakeES{respond: func(recordedRequest) (int, string) {
		return http.StatusOK, `{"hits":{"total":{"value":2},"hits":[{"_id":"near"},{"_id":"far"}]}}`
	}}
	idx := newTestIndexer(t, fake)

	ids, err := idx.Nearby(context.Background(), 18.08, -15.97, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "far"}, ids)

	req := fake.requests[0]
	assert.Equal(t, "/properties/_search", req.Path)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, float64(10), body["size"])
	filter := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].(map[string]interface{})
	geo := filter["geo_distance"].(map[string]interface{})
	assert.Equal(t, "5km", geo["distance"])
	assert.Equal(t, map[string]interface{}{"lat": 18.08, "lon": -15.97}, geo["geo"])
}
