package kafka

// Kafka topics
const (
	TopicFavoriteEvents = "favorite-events"
)

// Header keys carried on every favorite event message
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)
