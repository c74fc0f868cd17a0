// Package search keeps the Elasticsearch properties index in step with the database
// and answers geo-distance lookups for the map view.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	platformElasticsearch "property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/property/esutil"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// Indexer implements property.SearchIndexer. A nil client gives a disabled indexer
// whose writes are no-ops.
type Indexer struct {
	client  *platformElasticsearch.ESClientWrapper
	index   string
	refresh string
	logger  *zap.Logger
}

var _ property.SearchIndexer = (*Indexer)(nil)

// NewIndexer creates an indexer for the properties index.
func NewIndexer(client *platformElasticsearch.ESClientWrapper, logger *zap.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  platformElasticsearch.PropertiesIndexName,
		logger: logger.Named("search_indexer"),
	}
}

// WithRefresh returns a copy that passes the given refresh policy ("true", "false",
// "wait_for") on bulk requests.
func (i *Indexer) WithRefresh(refresh string) *Indexer {
	cp := *i
	cp.refresh = refresh
	return &cp
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.client != nil && i.client.Client != nil
}

func (i *Indexer) Index(ctx context.Context, p *property.Property) error {
	if !i.Enabled() {
		return nil
	}
	doc, err := esutil.PropertyToDoc(p)
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ID,
		Body:       strings.NewReader(doc),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("index property %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index property %s: %s", p.ID, res.Status())
	}
	return nil
}

// Delete removes a document. A document that is already gone is not an error.
func (i *Indexer) Delete(ctx context.Context, id string) error {
	if !i.Enabled() {
		return nil
	}
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("delete property %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete property %s from index: %s", id, res.Status())
	}
	return nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

// BulkIndex indexes one batch with a single _bulk request. Item-level failures are
// logged individually and reported as one error.
func (i *Indexer) BulkIndex(ctx context.Context, props []property.Property) error {
	if !i.Enabled() || len(props) == 0 {
		return nil
	}

	var body bytes.Buffer
	converted := 0
	for idx := range props {
		p := &props[idx]
		doc, err := esutil.PropertyToDoc(p)
		if err != nil {
			i.logger.Error("Failed to convert property to search document", zap.String("propertyID", p.ID), zap.Error(err))
			continue
		}
		fmt.Fprintf(&body, `{"index":{"_index":%q,"_id":%q}}`+"\n", i.index, p.ID)
		body.WriteString(doc)
		body.WriteByte('\n')
		converted++
	}
	if converted == 0 {
		return fmt.Errorf("no documents in batch could be converted")
	}

	res, err := esapi.BulkRequest{Body: &body, Refresh: i.refresh}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	failed := len(props) - converted
	if parsed.Errors {
		for _, item := range parsed.Items {
			if item.Index.Error != nil {
				i.logger.Error("Failed to index document in bulk batch",
					zap.String("propertyID", item.Index.ID),
					zap.Int("status", item.Index.Status),
					zap.Any("error", item.Index.Error),
				)
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d properties failed to index", failed, len(props))
	}
	return nil
}

// nearbyQuery builds a geo_distance search sorted nearest first.
func nearbyQuery(lat, lon, radiusKm float64, limit int) map[string]interface{} {
	point := map[string]interface{}{"lat": lat, "lon": lon}
	return map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": map[string]interface{}{
					"geo_distance": map[string]interface{}{
						"distance": fmt.Sprintf("%gkm", radiusKm),
						"geo":      point,
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{
				"_geo_distance": map[string]interface{}{
					"geo":   point,
					"order": "asc",
					"unit":  "km",
				},
			},
		},
	}
}

// Nearby returns the ids of properties within radiusKm of the point, nearest first.
func (i *Indexer) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]string, error) {
	if !i.Enabled() {
		return nil, nil
	}
	q, err := json.Marshal(nearbyQuery(lat, lon, radiusKm, limit))
	if err != nil {
		return nil, fmt.Errorf("marshal nearby query: %w", err)
	}
	res, err := esapi.SearchRequest{Index: []string{i.index}, Body: bytes.NewReader(q)}.Do(ctx, i.client.Client)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("nearby search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode nearby response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
