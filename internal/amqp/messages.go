package amqp

import (
	"encoding/json"
	"time"
)

// ReportGeneratedMessage announces a finished loan report. It carries the
// headline figures, not the PDF.
type ReportGeneratedMessage struct {
	ReportID            string    `json:"report_id"`
	GeneratedAt         time.Time `json:"generated_at"`
	SizeBytes           int       `json:"size_bytes"`
	TotalActiveLoans    int       `json:"total_active_loans"`
	TotalCompletedLoans int       `json:"total_completed_loans"`
	BookSize            int       `json:"book_size"`
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON creates a message from JSON bytes
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
