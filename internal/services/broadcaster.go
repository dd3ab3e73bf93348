package services

type Broadcaster interface {
	BroadcastEvent(eventType string, data interface{})
}

// NopBroadcaster drops every event. Used when no hub is running.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastEvent(string, interface{}) {}
