package esutil

import (
	"encoding/json"
	"errors"
	"fmt"

	"property_connect_backend/internal/property"
)

// PropertyToDoc converts a property into its search document. The coordinates are stored
// as a geo_point under "geo" so distance queries can use them.
func PropertyToDoc(p *property.Property) (string, error) {
	if p == nil {
		return "", errors.New("property cannot be nil")
	}

	doc := map[string]interface{}{
		"title":        p.Title,
		"description":  p.Description,
		"location":     p.Location,
		"user_id":      p.UserID,
		"type":         string(p.Type),
		"category":     string(p.Category),
		"currency":     string(p.Currency),
		"price":        p.Price,
		"views":        p.Views,
		"is_sold":      p.IsSold,
		"images":       []string(p.Images),
		"contact_name": p.ContactName,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
		"geo": map[string]float64{
			"lat": p.Latitude,
			"lon": p.Longitude,
		},
	}
	if p.Bedrooms != nil {
		doc["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		doc["bathrooms"] = *p.Bathrooms
	}
	if p.Size != nil {
		doc["size"] = *p.Size
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("error marshalling property to JSON for ES: %w", err)
	}
	return string(b), nil
}
