package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const PropertiesIndexName = "properties"

func keyword() map[string]interface{} { return map[string]interface{}{"type": "keyword"} }

// PropertiesMapping returns the JSON mapping for the properties index.
func PropertiesMapping() (string, error) {
	textWithKeyword := map[string]interface{}{
		"type": "text",
		"fields": map[string]interface{}{
			"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256},
		},
	}
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":        textWithKeyword,
				"description":  map[string]interface{}{"type": "text"},
				"location":     textWithKeyword,
				"geo":          map[string]interface{}{"type": "geo_point"},
				"user_id":      keyword(),
				"type":         keyword(),
				"category":     keyword(),
				"currency":     keyword(),
				"price":        map[string]interface{}{"type": "double"},
				"bedrooms":     map[string]interface{}{"type": "integer"},
				"bathrooms":    map[string]interface{}{"type": "integer"},
				"size":         map[string]interface{}{"type": "integer"},
				"views":        map[string]interface{}{"type": "integer"},
				"is_sold":      map[string]interface{}{"type": "boolean"},
				"images":       map[string]interface{}{"type": "keyword", "index": false},
				"contact_name": textWithKeyword,
				"created_at":   map[string]interface{}{"type": "date"},
				"updated_at":   map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling properties mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreatePropertiesIndexIfNotExists creates the properties index with its mapping
// unless it already exists.
func CreatePropertiesIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{PropertiesIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if properties index exists: %w", err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Info("Properties index already exists", zap.String("index_name", PropertiesIndexName))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if properties index exists: status %s", res.Status())
	}

	mappingJSON, err := PropertiesMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: PropertiesIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating properties index %s: %w", PropertiesIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create properties index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeErrorBody(createRes)),
		)
		return fmt.Errorf("failed to create properties index %s: status %s", PropertiesIndexName, createRes.Status())
	}

	log.Info("Properties index created", zap.String("index_name", PropertiesIndexName))
	return nil
}
