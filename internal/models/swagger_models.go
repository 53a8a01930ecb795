package models

// HTTPError represents an HTTP error response
// swagger:model HTTPError
type HTTPError struct {
	// HTTP status code
	Code int `json:"code"`
	// Error message
	Message string `json:"message"`
}

// ExpandMeta describes how an expansion was run
// swagger:model ExpandMeta
type ExpandMeta struct {
	// Fullname of the expanded thing
	Name string `json:"name"`
	// Branching cap, omitted when unbounded
	Limit *int `json:"limit,omitempty"`
	// Depth cap, omitted when unbounded
	Depth *int `json:"depth,omitempty"`
	// Materialized things before expansion
	NodesBefore int `json:"nodes_before"`
	// Materialized things after expansion
	NodesAfter int `json:"nodes_after"`
	// Processing time in milliseconds
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// ExpandResponse represents a response for the expand endpoint
// swagger:model ExpandResponse
type ExpandResponse struct {
	// Expanded copy of the thing
	Thing *Thing `json:"thing"`
	// Metadata about the expansion
	Meta ExpandMeta `json:"meta"`
}

// ActionResponse represents a response for the one-shot action endpoints
// swagger:model ActionResponse
type ActionResponse struct {
	// Action that was applied
	Action string `json:"action"`
	// Thing after the action
	Thing *Thing `json:"thing"`
}
