package domain

// Recommendation pairs an exercise with a heuristic score and a
// display-only reason. It is derived per request, never persisted.
type Recommendation struct {
	Exercise *Exercise `json:"exercise"`
	Score    float64   `json:"score"`
	Reason   string    `json:"reason"`
}
