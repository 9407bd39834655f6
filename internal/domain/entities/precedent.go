package entities

import "time"

// Precedent is a signed-off narrative kept for similarity search.
type Precedent struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Narrative string    `json:"narrative"`
	Score     float32   `json:"score,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
