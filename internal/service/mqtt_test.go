package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeClient implements the parts of mqtt.Client the uplink uses.
type fakeClient struct {
	mqtt.Client
	opts       *mqtt.ClientOptions
	connected  bool
	connectErr error
	publishErr error
	published  []published
}

func (c *fakeClient) Connect() mqtt.Token {
	if c.connectErr != nil {
		return &fakeToken{err: c.connectErr}
	}
	c.connected = true
	return &fakeToken{}
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Disconnect(uint) { c.connected = false }

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	}
	c.published = append(c.published, published{topic: topic, retained: retained, payload: body})
	return &fakeToken{err: c.publishErr}
}

func newTestMqtt(cfg config.MQTTConfig) (*MqttService, *fakeClient) {
	fc := &fakeClient{}
	s := NewMqttService(cfg, func(opts *mqtt.ClientOptions) mqtt.Client {
		fc.opts = opts
		return fc
	}, logger.Noop())
	return s, fc
}

func TestMqtt_PublishRequiresConnection(t *testing.T) {
	s, _ := newTestMqtt(config.DefaultConfig().MQTT)

	r := s.Publish("x", []byte("y"))
	assert.Equal(t, CodeNotConnected, r.Code)
	assert.Equal(t, "MQTT not connected", r.Message)
}

func TestMqtt_ConnectPublishDisconnect(t *testing.T) {
	cfg := config.DefaultConfig().MQTT
	cfg.Username = "panel"
	s, fc := newTestMqtt(cfg)

	require.True(t, s.Connect().IsSuccess())
	require.NotNil(t, fc.opts)
	require.Len(t, fc.opts.Servers, 1)
	assert.Equal(t, "tcp://mqtt.example.com:1883", fc.opts.Servers[0].String())
	assert.Equal(t, "imx6ull_001", fc.opts.ClientID)
	assert.Equal(t, "panel", fc.opts.Username)

	st := s.Status().Data
	assert.True(t, st.Connected)
	assert.NotEmpty(t, st.ConnectedAt)

	require.True(t, s.Publish("site/a", []byte("1")).IsSuccess())
	assert.Equal(t, 1, s.Status().Data.Published)

	require.True(t, s.Disconnect().IsSuccess())
	assert.False(t, s.Status().Data.Connected)
	assert.False(t, fc.connected)

	topics := make([]string, 0, len(fc.published))
	for _, p := range fc.published {
		topics = append(topics, p.topic)
	}
	assert.Equal(t, []string{"fieldmon/imx6ull_001/status", "site/a", "fieldmon/imx6ull_001/status"}, topics)
}

func TestMqtt_ConnectFailure(t *testing.T) {
	s, fc := newTestMqtt(config.DefaultConfig().MQTT)
	fc.connectErr = errors.New("connection refused")

	r := s.Connect()
	assert.Equal(t, CodeIOFailure, r.Code)
	assert.Contains(t, r.Message, "connection refused")
	assert.False(t, s.Status().Data.Connected)
}

func TestMqtt_TLSScheme(t *testing.T) {
	cfg := config.DefaultConfig().MQTT
	cfg.TLS = true
	cfg.Port = 8883
	s, fc := newTestMqtt(cfg)

	require.True(t, s.Connect().IsSuccess())
	assert.Equal(t, "ssl://mqtt.example.com:8883", fc.opts.Servers[0].String())
	assert.NotNil(t, fc.opts.TLSConfig)
}

func TestMqtt_SaveConfig(t *testing.T) {
	s, fc := newTestMqtt(config.DefaultConfig().MQTT)
	require.True(t, s.Connect().IsSuccess())

	cfg := s.LoadConfig().Data
	cfg.Broker = ""
	assert.Equal(t, CodeInvalid, s.SaveConfig(cfg).Code)
	assert.True(t, fc.connected, "rejected config keeps the connection")

	cfg.Broker = "broker.plant"
	require.True(t, s.SaveConfig(cfg).IsSuccess())
	assert.False(t, s.Status().Data.Connected)
	assert.Equal(t, "broker.plant", s.LoadConfig().Data.Broker)
}

func TestMqtt_PublishReadings(t *testing.T) {
	readings := []RegisterReading{{Address: 0, Name: "Register 0", Value: 21.5, Unit: "℃", Timestamp: "10:00:00"}}

	t.Run("disabled is a silent success", func(t *testing.T) {
		s, fc := newTestMqtt(config.DefaultConfig().MQTT)
		require.True(t, s.Connect().IsSuccess())
		fc.published = nil

		assert.True(t, s.PublishReadings("sid", 1, readings).IsSuccess())
		assert.Empty(t, fc.published)
	})

	t.Run("enabled publishes json", func(t *testing.T) {
		cfg := config.DefaultConfig().MQTT
		cfg.PublishReadings = true
		s, fc := newTestMqtt(cfg)

		assert.True(t, s.PublishReadings("sid", 1, readings).IsSuccess(), "disconnected is not an error")

		require.True(t, s.Connect().IsSuccess())
		fc.published = nil
		require.True(t, s.PublishReadings("sid", 2, readings).IsSuccess())
		require.Len(t, fc.published, 1)
		assert.Equal(t, "fieldmon/readings/2", fc.published[0].topic)

		var msg ReadingsMessage
		require.NoError(t, json.Unmarshal(fc.published[0].payload, &msg))
		assert.Equal(t, "sid", msg.SessionID)
		assert.Equal(t, 2, msg.DeviceID)
		require.Len(t, msg.Readings, 1)
		assert.Equal(t, 21.5, msg.Readings[0].Value)
	})

	t.Run("publish error surfaces", func(t *testing.T) {
		cfg := config.DefaultConfig().MQTT
		cfg.PublishReadings = true
		s, fc := newTestMqtt(cfg)
		require.True(t, s.Connect().IsSuccess())
		fc.publishErr = errors.New("queue full")

		assert.Equal(t, CodeIOFailure, s.PublishReadings("sid", 1, readings).Code)
	})
}
