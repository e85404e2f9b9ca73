package bus

import "time"

// Event kinds published in this process. Subscribers filter by
// namespace prefix, e.g. "search." receives every search event.
const (
	KindCorpusMessage       = "corpus.message"
	KindCorpusBatch         = "corpus.batch"
	KindMessageUpserted     = "message.upserted"
	KindSearchStatusChanged = "search.status_changed"
	KindSearchCompleted     = "search.completed"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
