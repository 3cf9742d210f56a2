package models

import "time"

// HealthResponse represents a basic health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                 // Database connection status
	Latency   time.Duration `json:"latency" example:"1ms"`                    // Database ping latency
	Error     string        `json:"error,omitempty" example:""`               // Error message if any
}

// MessageWithFacts joins a stored message with its extracted facts for API reads.
// Fact columns are nullable because a message that failed extraction is still
// recorded and visible without facts.
type MessageWithFacts struct {
	ID            int64      `db:"id" json:"id"`
	Subject       string     `db:"subject" json:"subject"`
	Sender        string     `db:"sender" json:"sender"`
	Folder        string     `db:"folder" json:"folder"`
	ReceivedAt    time.Time  `db:"received_at" json:"received_at"`
	BodyText      string     `db:"body_text" json:"body_text"`
	PrimaryType   *string    `db:"primary_type" json:"primary_type,omitempty"`
	Intent        *string    `db:"intent" json:"intent,omitempty"`
	Urgency       *string    `db:"urgency" json:"urgency,omitempty"`
	Sentiment     *string    `db:"sentiment" json:"sentiment,omitempty"`
	WaitingOn     *string    `db:"waiting_on" json:"waiting_on,omitempty"`
	NeedsResponse *bool      `db:"needs_response" json:"needs_response,omitempty"`
	DueBy         *time.Time `db:"due_by" json:"due_by,omitempty"`
	Summary       *string    `db:"summary" json:"summary,omitempty"`
	RisksJSON     *string    `db:"risks_json" json:"-"`
	BlockersJSON  *string    `db:"blockers_json" json:"-"`
	Risks         []Risk     `json:"risks,omitempty"`
	Blockers      []Blocker  `json:"blockers,omitempty"`
}

// SearchRequest represents the request body for the semantic search endpoint
type SearchRequest struct {
	Query  string `json:"query"`
	Folder string `json:"folder,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SearchResponse represents the response from the semantic search endpoint
type SearchResponse struct {
	Results []MessageWithFacts `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// ConfigResponse represents a single app_config entry
type ConfigResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ConfigUpdateRequest represents the request body for writing a config entry
type ConfigUpdateRequest struct {
	Value string `json:"value"`
}

// ModelsResponse lists the model ids available on the active AI provider
type ModelsResponse struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
	Error    string   `json:"error,omitempty"`
}

// DraftResponse represents the response from the reply draft endpoint
type DraftResponse struct {
	Draft string `json:"draft"`
	Error string `json:"error,omitempty"`
}

// SyncResponse represents the response from the manual resync endpoint
type SyncResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// SentimentCount is one slice of the sentiment breakdown
type SentimentCount struct {
	Sentiment string `db:"sentiment" json:"sentiment"`
	Count     int64  `db:"count" json:"count"`
}

// StatsResponse represents aggregate pipeline statistics
type StatsResponse struct {
	TotalMessages int64            `json:"total_messages"`
	Sentiments    []SentimentCount `json:"sentiments"`
}
