/*
Package storage provides data models for the search analytics log.
*/
package storage

import "time"

// SearchRecord represents an executed search for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the normalized query for privacy.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of repositories fetched.
	ResultsCount int `json:"results_count"`

	// TotalCount is the total reported by the API.
	TotalCount int `json:"total_count"`
}
