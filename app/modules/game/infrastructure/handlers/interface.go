package gamehandlers

import "github.com/ThreeDotsLabs/watermill/message"

// Handlers consumes game events.
type Handlers interface {
	HandleGameCompleted(msg *message.Message) error
	HandleRoundAdded(msg *message.Message) error
}
