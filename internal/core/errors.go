package core

import (
	"errors"
	"fmt"
)

// Error codes for client-facing errors.
const (
	ErrCodeDelivery = "delivery_failed"
	ErrCodeServer   = "server_error"
)

var (
	ErrEmptyAuthor  = errors.New("author is required")
	ErrEmptyText    = errors.New("message text is required")
	ErrSendInFlight = errors.New("a send is already in flight")
	ErrClientClosed = errors.New("client closed")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// ServerError builds the notice for an error event pushed by the server.
func ServerError(msg string) *CoreError {
	if msg == "" {
		msg = "server reported an error"
	}
	return coreError(ErrCodeServer, msg)
}

// DeliveryError reports a failed direct write to the Message Store.
type DeliveryError struct {
	StatusCode int    // zero when the request never got a response
	Body       string // trimmed response body excerpt
	Err        error
}

func (e *DeliveryError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("message not delivered: status %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("message not delivered: status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("message not delivered: %v", e.Err)
	default:
		return "message not delivered"
	}
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Code returns the client-facing error code.
func (e *DeliveryError) Code() string {
	return ErrCodeDelivery
}
