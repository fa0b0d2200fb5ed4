package document

import (
	"strconv"
	"time"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

// buildFields flattens a domain Document into an HSET field map.
func buildFields(doc *domain.Document) map[string]string {
	return map[string]string{
		"owner_id":         doc.OwnerID,
		"filename":         doc.Filename,
		"media_type":       doc.MediaType,
		"size_bytes":       strconv.FormatInt(doc.SizeBytes, 10),
		"storage_path":     doc.StoragePath,
		"status":           string(doc.Status),
		"error_message":    doc.ErrorMessage,
		"owner_visible":    strconv.FormatBool(doc.OwnerVisible),
		"employee_visible": strconv.FormatBool(doc.EmployeeVisible),
		"customer_visible": strconv.FormatBool(doc.CustomerVisible),
		"created_at":       doc.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":       doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// parseFields rebuilds a domain Document from a hash field map.
func parseFields(id string, m map[string]string) domain.Document {
	size, _ := strconv.ParseInt(m["size_bytes"], 10, 64)
	ownerVisible, _ := strconv.ParseBool(m["owner_visible"])
	employeeVisible, _ := strconv.ParseBool(m["employee_visible"])
	customerVisible, _ := strconv.ParseBool(m["customer_visible"])
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"])

	return domain.Document{
		ID:              id,
		OwnerID:         m["owner_id"],
		Filename:        m["filename"],
		MediaType:       m["media_type"],
		SizeBytes:       size,
		StoragePath:     m["storage_path"],
		Status:          domain.Status(m["status"]),
		ErrorMessage:    m["error_message"],
		OwnerVisible:    ownerVisible,
		EmployeeVisible: employeeVisible,
		CustomerVisible: customerVisible,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}
