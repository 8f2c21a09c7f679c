package common

import "time"

type ApiContextKeyType string

const RequestIdKey = ApiContextKeyType("request_id")

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	DatabaseConnected = "connected"
	DatabaseError     = "error"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// StorageFailureMessage is the body of every 500 caused by the store.
const StorageFailureMessage = "Error: storage failure"
