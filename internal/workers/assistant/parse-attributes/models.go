package parseattributes

import (
	"encoding/json"

	"product-assistant/internal/models"
)

type Input struct {
	// RawResponse must be a JSON string; anything else is a parse failure.
	RawResponse json.RawMessage `json:"rawResponse"`
}

type Output struct {
	Attributes models.StructuredAttributes `json:"attributes"`
	MoveOn     bool                        `json:"moveOn"`
}
