package models

// ListResponse is the standard response format for list endpoints.
// Includes the total match count and the effective sort for the client.
type ListResponse[T any] struct {
	Items         []T    `json:"items"`
	Total         int    `json:"total"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
	HasMore       bool   `json:"has_more"`
	Sort          string `json:"sort,omitempty"`
	ActiveFilters int    `json:"active_filters"`
}

// HealthResponse reports collection sizes.
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]int `json:"data"`
}

// GenerateRequest asks for code generation for a namespace.
type GenerateRequest struct {
	NamespaceID string `json:"namespace_id"`
}
