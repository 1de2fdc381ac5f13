package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DefaultLanguage is the language answers are produced in unless a request asks otherwise.
const DefaultLanguage = "en"

var validate = validator.New()

// QueryRequest is a question asked against the uploaded documents.
type QueryRequest struct {
	Query     string `json:"query" validate:"required"`
	Language  string `json:"language,omitempty" validate:"omitempty,max=16"`
	// SessionID is accepted for client bookkeeping and may be empty; nothing is keyed on it.
	SessionID string `json:"session_id"`
}

// Validate checks required fields and fills in the default language.
func (q *QueryRequest) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid query request: %w", err)
	}
	if q.Language == "" {
		q.Language = DefaultLanguage
	}
	return nil
}

// QueryResponse is the grounded answer to a QueryRequest.
type QueryResponse struct {
	Response     string   `json:"response"`
	Sources      []string `json:"sources"`
	ResponseTime float64  `json:"response_time"`
}

// SummaryRequest asks for a summary of one stored document.
type SummaryRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
}

// Validate checks that a document id was given.
func (s *SummaryRequest) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid summary request: %w", err)
	}
	return nil
}

// SummaryResponse carries a generated document summary.
type SummaryResponse struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
}
