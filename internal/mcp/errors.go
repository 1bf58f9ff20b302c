// Package mcp implements the Model Context Protocol server exposing the
// Query Orchestrator to AI clients (Claude Code, Cursor, and similar).
package mcp

import (
	"context"
	"errors"
	"fmt"

	iperrors "github.com/ipassist/retrieval-core/internal/errors"
)

// Standard JSON-RPC error codes, plus a few domain-specific ones reserved
// in the same -320xx range the protocol uses for server-defined errors.
const (
	ErrCodeCorpusAbsent  = -32001
	ErrCodeDependency    = -32002
	ErrCodeTimeout       = -32003
	ErrCodeInvalidFilter = -32004

	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal retrieval errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var re *iperrors.RetrievalError
	if errors.As(err, &re) {
		return mapRetrievalError(re)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapRetrievalError(re *iperrors.RetrievalError) *MCPError {
	message := re.Message
	if re.Suggestion != "" {
		message = fmt.Sprintf("%s %s", message, re.Suggestion)
	}

	switch re.Category {
	case iperrors.CategoryConfig:
		if re.Code == iperrors.ErrCodeCorpusAbsent {
			return &MCPError{Code: ErrCodeCorpusAbsent, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	case iperrors.CategoryDependency:
		return &MCPError{Code: ErrCodeDependency, Message: message}
	case iperrors.CategoryValidation:
		switch re.Code {
		case iperrors.ErrCodeInvalidFilter:
			return &MCPError{Code: ErrCodeInvalidFilter, Message: message}
		default:
			return &MCPError{Code: ErrCodeInvalidParams, Message: message}
		}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

// NewInvalidParamsError creates an error for invalid tool parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for an unknown tool name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("Tool '%s' not found.", name)}
}
