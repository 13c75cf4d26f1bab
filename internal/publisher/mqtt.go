package publisher

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/neelabalan/growatt-dashboard/internal/config"
	"github.com/neelabalan/growatt-dashboard/pkg/models"
)

// MQTTPublisher pushes the latest power reading to an MQTT broker as a
// retained message, for Home Assistant style consumers.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

// New connects to the broker and returns a publisher for the plant's
// power topic.
func New(cfg config.MQTTConfig, plantID string, logger *zap.Logger) (*MQTTPublisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("MQTT broker address is required when enabled")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID("growatt-dashboard")
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{
		client: client,
		topic:  fmt.Sprintf("%s/%s/power", cfg.GetTopicPrefix(), plantID),
		logger: logger,
	}, nil
}

type powerPayload struct {
	Watts float64 `json:"watts"`
	Time  string  `json:"time"`
}

// PublishPower sends a power reading as retained JSON.
func (p *MQTTPublisher) PublishPower(sample models.PowerSample) error {
	body, err := json.Marshal(powerPayload{
		Watts: sample.Watts,
		Time:  sample.Time.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", p.topic, token.Error())
	}

	p.logger.Debug("published power reading",
		zap.String("topic", p.topic),
		zap.Float64("watts", sample.Watts))
	return nil
}

// Close disconnects from the MQTT broker
func (p *MQTTPublisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
