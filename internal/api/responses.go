// Package api holds the response envelopes shared by every HTTP handler.
package api

type ErrorResponse struct {
	Error string `json:"error" example:"tip amount must be positive"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
