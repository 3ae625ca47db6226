package model

import "time"

// UploadStatus is the lifecycle state of an ingestion batch.
type UploadStatus string

const (
	// UploadPending means the batch was created but parsing has not finished.
	UploadPending UploadStatus = "pending"
	// UploadCompleted means all records were parsed and staged.
	UploadCompleted UploadStatus = "completed"
	// UploadFailed means parsing failed; no records from the batch persist.
	UploadFailed UploadStatus = "failed"
	// UploadCancelled means the operator aborted the batch mid-flight.
	UploadCancelled UploadStatus = "cancelled"
)

// UploadBatch groups every transaction staged from one ingestion run so a
// bad upload can be rolled back as a unit.
type UploadBatch struct {
	CreatedAt   time.Time
	CompletedAt *time.Time
	ID          string // UUID assigned at creation
	SourceFile  string
	BankCode    string
	Status      UploadStatus
	Message     string
	RecordCount int
}
