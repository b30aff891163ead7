package models

import "time"

// Price is a single observed price point. Immutable once produced.
type Price struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}
