package models

import "time"

// TrackRecord is one entry in a fetched listing. Index is 1-based and follows provider order across pages.
type TrackRecord struct {
	Index      int       `json:"index"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Artists    string    `json:"artists"`
	Popularity int       `json:"popularity,omitempty"`
	AddedAt    time.Time `json:"added_at,omitzero"`
}

// TrackIDs returns the ids of records in order.
func TrackIDs(records []TrackRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

// BatchRunResult accumulates the outcome of one batched mutation.
type BatchRunResult struct {
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`
	Batches      int `json:"batches"`
}

// OK reports whether no batch failed.
func (r BatchRunResult) OK() bool {
	return r.ErrorCount == 0
}
