package service

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
)

const mqttTimeout = 5 * time.Second

// MqttStatus is what the MQTT settings page shows.
type MqttStatus struct {
	Connected   bool
	Broker      string
	ClientID    string
	ConnectedAt string
	Published   int
}

// ReadingsMessage is the JSON body published for each successful poll.
type ReadingsMessage struct {
	SessionID string            `json:"session_id"`
	DeviceID  int               `json:"device_id"`
	Time      string            `json:"time"`
	Readings  []readingsPayload `json:"readings"`
}

type readingsPayload struct {
	Address int     `json:"address"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
}

// ClientFactory builds a paho client; tests swap in a fake.
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// MqttService is the uplink to the site broker.
type MqttService struct {
	newClient ClientFactory
	log       logger.Logger
	now       func() time.Time

	mu          sync.Mutex
	cfg         config.MQTTConfig
	client      mqtt.Client
	connectedAt time.Time
	published   int
}

// NewMqttService returns a disconnected uplink. factory may be nil to use
// paho's client.
func NewMqttService(cfg config.MQTTConfig, factory ClientFactory, log logger.Logger) *MqttService {
	if factory == nil {
		factory = mqtt.NewClient
	}
	if log == nil {
		log = logger.Noop()
	}
	return &MqttService{newClient: factory, log: log, now: time.Now, cfg: cfg}
}

// LoadConfig returns the broker settings.
func (s *MqttService) LoadConfig() Result[config.MQTTConfig] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return OK(s.cfg)
}

// SaveConfig stores broker settings. A live connection is dropped so the
// next Connect uses the new settings.
func (s *MqttService) SaveConfig(cfg config.MQTTConfig) Result[Empty] {
	if cfg.Broker == "" {
		return Fail[Empty](CodeInvalid, "Broker address is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Fail[Empty](CodeInvalid, "Port must be 1-65535")
	}
	s.Disconnect()
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return Done()
}

// Connect dials the broker and waits up to five seconds.
func (s *MqttService) Connect() Result[Empty] {
	s.mu.Lock()
	if s.connectedLocked() {
		s.mu.Unlock()
		return Done()
	}
	cfg := s.cfg
	s.mu.Unlock()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttTimeout)
	opts.SetWill(statusTopic(cfg), `{"status":"offline"}`, 1, true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warn("mqtt connection lost: %v", err)
	})

	client := s.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return Fail[Empty](CodeIOFailure, "Timed out connecting to %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return Fail[Empty](CodeIOFailure, "MQTT connect failed: %v", err)
	}

	s.mu.Lock()
	s.client = client
	s.connectedAt = s.now()
	s.mu.Unlock()
	s.log.Info("mqtt connected to %s as %s", cfg.Broker, cfg.ClientID)
	client.Publish(statusTopic(cfg), 1, true, `{"status":"online"}`)
	return Done()
}

// Disconnect closes the connection if there is one.
func (s *MqttService) Disconnect() Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return Done()
	}
	if s.client.IsConnected() {
		s.client.Publish(statusTopic(s.cfg), 1, true, `{"status":"offline"}`).WaitTimeout(time.Second)
		s.client.Disconnect(250)
	}
	s.client = nil
	s.log.Info("mqtt disconnected")
	return Done()
}

// Status reports the connection state.
func (s *MqttService) Status() Result[MqttStatus] {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := MqttStatus{
		Connected: s.connectedLocked(),
		Broker:    s.cfg.Broker,
		ClientID:  s.cfg.ClientID,
		Published: s.published,
	}
	if st.Connected {
		st.ConnectedAt = s.connectedAt.Format("2006-01-02 15:04:05")
	}
	return OK(st)
}

// Publish sends payload at QoS 1. It fails with code 1 while disconnected.
func (s *MqttService) Publish(topic string, payload []byte) Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connectedLocked() {
		return Fail[Empty](CodeNotConnected, "MQTT not connected")
	}
	token := s.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return Fail[Empty](CodeIOFailure, "Publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return Fail[Empty](CodeIOFailure, "Publish to %s failed: %v", topic, err)
	}
	s.published++
	return Done()
}

// PublishReadings forwards one poll result to <topic>/<deviceID> when the
// uplink is enabled and connected. Disabled or disconnected uplinks are a
// silent success so polling never depends on the broker.
func (s *MqttService) PublishReadings(sessionID string, deviceID int, readings []RegisterReading) Result[Empty] {
	s.mu.Lock()
	enabled := s.cfg.PublishReadings && s.connectedLocked()
	topic := fmt.Sprintf("%s/%d", s.cfg.Topic, deviceID)
	s.mu.Unlock()
	if !enabled {
		return Done()
	}

	msg := ReadingsMessage{SessionID: sessionID, DeviceID: deviceID, Time: s.now().Format(time.RFC3339)}
	for _, r := range readings {
		msg.Readings = append(msg.Readings, readingsPayload{Address: r.Address, Name: r.Name, Value: r.Value, Unit: r.Unit})
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return Fail[Empty](CodeInvalid, "Cannot encode readings: %v", err)
	}
	return s.Publish(topic, body)
}

func (s *MqttService) connectedLocked() bool {
	return s.client != nil && s.client.IsConnected()
}

func statusTopic(cfg config.MQTTConfig) string {
	return fmt.Sprintf("fieldmon/%s/status", cfg.ClientID)
}
