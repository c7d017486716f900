package pubsub

// PubSubClient publishes tournament events and decodes pushed payloads.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
