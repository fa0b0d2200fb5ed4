package chi

import (
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type documentResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Filename        string    `json:"filename"`
	MediaType       string    `json:"media_type"`
	SizeBytes       int64     `json:"size_bytes"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	EmployeeVisible bool      `json:"employee_visible"`
	CustomerVisible bool      `json:"customer_visible"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
	Total int                `json:"total"`
}

type processResponse struct {
	Success      bool `json:"success"`
	ChunksStored int  `json:"chunks_stored"`
}

type embeddingsResponse struct {
	Success             bool `json:"success"`
	EmbeddingsGenerated int  `json:"embeddings_generated"`
}

type queryRequest struct {
	Question     string `json:"question"`
	RequesterID  string `json:"requester_id"`
	CustomerMode bool   `json:"customer_mode"`
}

type queryResponse struct {
	Answer  string          `json:"answer"`
	Sources []domain.Source `json:"sources"`
}

type historyItem struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	Items []historyItem `json:"items"`
	Total int           `json:"total"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToResponse(d domain.Document) documentResponse {
	return documentResponse{
		ID:              d.ID,
		OwnerID:         d.OwnerID,
		Filename:        d.Filename,
		MediaType:       d.MediaType,
		SizeBytes:       d.SizeBytes,
		Status:          string(d.Status),
		ErrorMessage:    d.ErrorMessage,
		EmployeeVisible: d.EmployeeVisible,
		CustomerVisible: d.CustomerVisible,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
