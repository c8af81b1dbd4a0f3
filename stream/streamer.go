package stream

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Streamer that streams binary frames to MQTT subscribers.
type Streamer struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(config Config, client mqtt.Client) *Streamer {
	s := new(Streamer)
	s.client = client
	s.topic = config.Mqtt.Topics.Frames
	s.qos = config.Mqtt.Qos
	return s
}

// SendFrame sends a frame as binary over MQTT.
func (s *Streamer) SendFrame(f *Frame) error {
	if !s.client.IsConnected() {
		return nil
	}

	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	token := s.client.Publish(s.topic, s.qos, false, b)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish frame %.2f: %w", f.Number, token.Error())
	}
	log.Trace().Float64("frame", f.Number).Int("bytes", len(b)).Msg("Frame published")
	return nil
}
