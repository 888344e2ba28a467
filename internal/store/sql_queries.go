package store

const queueTable = "sync_queue"

// queueColumns is the column order used by every SELECT and by [scanOperation].
var queueColumns = []string{
	"id",
	"endpoint",
	"method",
	"payload",
	"fingerprint",
	"enqueued_at",
	"max_retries",
	"status",
	"retry_count",
	"last_error",
	"synced_at",
}

// FIFO by enqueue time. UUIDv7 ids break ties between writes stored in the
// same nanosecond.
var queueOrder = []string{"enqueued_at ASC", "id ASC"}
