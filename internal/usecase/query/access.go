package query

import "github.com/kognita-cloud/ragdex/internal/domain"

// Mode selects the access scope of a question.
type Mode string

const (
	// ModeOwner scopes search to the requester's own documents.
	ModeOwner Mode = "owner"
	// ModeEmployee widens ModeOwner with documents shared to employees.
	ModeEmployee Mode = "employee"
	// ModeCustomer scopes search to customer-shared documents only,
	// regardless of ownership.
	ModeCustomer Mode = "customer"
)

// visibleDocuments filters docs down to what the requester may search.
// Only completed documents are ever visible; anything mid-pipeline or
// failed is excluded in every mode.
func visibleDocuments(docs []domain.Document, mode Mode, requesterID string) []domain.Document {
	visible := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if d.Status != domain.StatusCompleted {
			continue
		}
		if allowed(d, mode, requesterID) {
			visible = append(visible, d)
		}
	}
	return visible
}

func allowed(d domain.Document, mode Mode, requesterID string) bool {
	switch mode {
	case ModeOwner:
		return d.OwnerID == requesterID
	case ModeEmployee:
		return d.OwnerID == requesterID || d.EmployeeVisible
	case ModeCustomer:
		return d.CustomerVisible
	default:
		return false
	}
}
