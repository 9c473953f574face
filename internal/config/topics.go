package config

const (
	// TopicIngestTask is the NSQ topic carrying document ingestion tasks.
	TopicIngestTask = "ingest.task"
)
