// ABOUTME: Health and Stats payloads reported by the engine
// ABOUTME: Field names match the HTTP JSON contract
package models

// Health status values
const (
	HealthInitializing = "initializing"
	HealthHealthy      = "healthy"
	HealthNotReady     = "not_ready"
)

// Health reports engine readiness
type Health struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Message string `json:"message"`
}

// Stats describes the populated index
type Stats struct {
	Ready          bool   `json:"ready"`
	Count          int    `json:"count"`
	CollectionName string `json:"collection_name,omitempty"`
	DataFile       string `json:"data_file,omitempty"`
}
