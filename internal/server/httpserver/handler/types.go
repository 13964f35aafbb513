package handler

import (
	"time"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
)

// Response is the standard JSON response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Build             buildinfo.Info `json:"build"`
	Keys              int            `json:"keys"`
	ActiveConnections int            `json:"active_connections"`
	Uptime            string         `json:"uptime"`
}
