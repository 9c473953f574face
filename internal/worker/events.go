package worker

// IngestTaskPayload is the NSQ message published for each uploaded
// document and consumed by the ingest worker.
type IngestTaskPayload struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	FilePath   string `json:"file_path"`
	FileName   string `json:"file_name"`

	CorrelationID string `json:"correlation_id"`
}
