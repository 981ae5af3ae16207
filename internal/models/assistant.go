package models

// PipelineState is the per-request decision state of the assistant.
type PipelineState string

const (
	StateAwaitingAttributes PipelineState = "AwaitingAttributes"
	StateReadyToSearch      PipelineState = "ReadyToSearch"
	StateFollowUpRequested  PipelineState = "FollowUpRequested"
)

// SearchConfirmation is returned as the message whenever a search ran.
const SearchConfirmation = "Search results for your query"

// SearchRequest is the inbound request body.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse is the inbound boundary's success body.
type SearchResponse struct {
	Results []map[string]interface{} `json:"results"`
	Message string                   `json:"message"`
}

// ErrorResponse is returned when the request cannot be served.
type ErrorResponse struct {
	Error string `json:"error"`
}
