package stream

import (
	"fmt"

	"github.com/bytedance/sonic"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/rs/zerolog/log"
)

// Control message types.
const (
	MsgPlay   = "play"
	MsgPause  = "pause"
	MsgStop   = "stop"
	MsgToggle = "toggle"
	MsgSeek   = "seek"
	MsgStep   = "step"
	MsgStart  = "start"
	MsgEnd    = "end"
)

// ControlMessage drives playback from a remote client.
type ControlMessage struct {
	Type  string  `json:"type"`
	Frame float64 `json:"frame,omitempty"`
	Delta int     `json:"delta,omitempty"`
}

// DecodeControlMessage parses a control payload.
func DecodeControlMessage(payload []byte) (ControlMessage, error) {
	var msg ControlMessage
	if err := sonic.ConfigStd.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("%w: malformed control message: %v", keyframe.ErrInvalidArgument, err)
	}
	return msg, nil
}

// A ControlHandler acts on decoded control messages.
type ControlHandler interface {
	Apply(msg ControlMessage) error
}

// Control listens for playback commands on the control topic.
type Control struct {
	config  Config
	client  mqtt.Client
	handler ControlHandler
}

// NewControl creates a Control that forwards messages to handler.
func NewControl(config Config, client mqtt.Client, handler ControlHandler) *Control {
	c := new(Control)
	c.config = config
	c.client = client
	c.handler = handler
	return c
}

func (c *Control) handleClientMessages(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Uint16("id", msg.MessageID()).Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("Received control message")

	message, err := DecodeControlMessage(msg.Payload())
	if err != nil {
		log.Warn().Err(err).Msg("Dropping control message")
		return
	}
	if err := c.handler.Apply(message); err != nil {
		log.Warn().Err(err).Str("type", message.Type).Msg("Control message rejected")
	}
}

// Subscribe registers for control messages. Call it from the connect
// handler so the subscription survives reconnects.
func (c *Control) Subscribe() error {
	token := c.client.Subscribe(c.config.Mqtt.Topics.Control, c.config.Mqtt.Qos, c.handleClientMessages)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.config.Mqtt.Topics.Control, token.Error())
	}
	log.Info().Str("topic", c.config.Mqtt.Topics.Control).Msg("Subscribed to control topic")
	return nil
}
