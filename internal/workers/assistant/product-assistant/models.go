package productassistant

import "product-assistant/internal/models"

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	Results    []map[string]interface{}    `json:"results"`
	Message    string                      `json:"message"`
	State      models.PipelineState        `json:"state"`
	Mode       models.SearchMode           `json:"mode,omitempty"`
	Attributes models.StructuredAttributes `json:"attributes"`
}
