// Package mqttpub pushes freshly fetched prices onto an MQTT broker, so home
// automation setups can react to the current spot price without polling the
// HTTP API.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/powerhour/spotprices-go/config"
	"github.com/powerhour/spotprices-go/markup"
)

const connectTimeout = 10 * time.Second

type Publisher struct {
	client mqtt.Client
	logger *slog.Logger
	prefix string
}

func New(cnfg config.AppConfigMqtt) *Publisher {
	logger := slog.Default().With("module", "mqttpub")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cnfg.Host, cnfg.Port))
	opts.SetClientID("spotprices")
	opts.SetUsername(cnfg.Username)
	opts.SetPassword(cnfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	return &Publisher{
		client: mqtt.NewClient(opts),
		logger: logger,
		prefix: cnfg.GetTopicPrefix(),
	}
}

func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout connecting to MQTT broker")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}

type pricePayload struct {
	Time          string  `json:"time"`
	LocalTime     string  `json:"localTime"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Currency      string  `json:"currency"`
}

// PublishCurrentPrice publishes the current-hour price for a country as a
// retained message on {prefix}/{country}/current.
func (p *Publisher) PublishCurrentPrice(countryCode, currency string, point markup.FinalPricePoint) error {
	payload, err := json.Marshal(pricePayload{
		Time:          point.Time.UTC().Format(time.RFC3339),
		LocalTime:     point.LocalTime,
		Price:         point.FinalPrice,
		OriginalPrice: point.OriginalPrice,
		Currency:      currency,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal price payload: %w", err)
	}

	topic := fmt.Sprintf("%s/%s/current", p.prefix, countryCode)
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("timeout publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("published current price",
		slog.String("topic", topic),
		slog.Float64("price", point.FinalPrice))
	return nil
}
