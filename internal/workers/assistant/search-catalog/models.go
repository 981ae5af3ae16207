package searchcatalog

import "product-assistant/internal/models"

type Input struct {
	Filters    models.SearchFilters `json:"filters"`
	Collection string               `json:"collection,omitempty"`
}

type Output struct {
	Results []map[string]interface{} `json:"results"`
	Mode    models.SearchMode        `json:"mode"`
	Total   int                      `json:"total"`
}
