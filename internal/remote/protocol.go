// Package remote defines the protocol types and client for listq-server
// communication.
package remote

import "github.com/kaurvahtra/listq/internal/models"

// ItemsResponse wraps a list of items.
type ItemsResponse struct {
	Items []*models.Item `json:"items"`
}

// ErrorResponse is the structured error format returned by the server.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
