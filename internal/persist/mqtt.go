package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix roots the topics MQTTSink publishes to.
const DefaultTopicPrefix = "conceptlink/sessions"

// publisher is the subset of paho.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// MQTTSink publishes each record as JSON for live dashboards. Topics are
// <prefix>/<session id>/<kind>.
type MQTTSink struct {
	client publisher
	prefix string
	qos    byte
}

// MQTTOptions configures DialMQTT.
type MQTTOptions struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Username    string
	Password    string
}

// DialMQTT connects to the broker and returns a sink publishing to it.
func DialMQTT(opts MQTTOptions) (*MQTTSink, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker URL is required")
	}
	if opts.ClientID == "" {
		opts.ClientID = fmt.Sprintf("conceptlink-%d", time.Now().UnixNano())
	}
	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)
	if opts.Username != "" {
		co.SetUsername(opts.Username).SetPassword(opts.Password)
	}

	client := paho.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", opts.Broker, err)
	}
	return newMQTTSink(client, opts.TopicPrefix, opts.QoS), nil
}

func newMQTTSink(client publisher, prefix string, qos byte) *MQTTSink {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTTSink{client: client, prefix: strings.TrimSuffix(prefix, "/"), qos: qos}
}

func (m *MQTTSink) Name() string { return "mqtt" }

// Topic returns the topic rec is published to.
func (m *MQTTSink) Topic(rec Record) string {
	return m.prefix + "/" + rec.SessionID + "/" + string(rec.Kind)
}

func (m *MQTTSink) Write(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	token := m.client.Publish(m.Topic(rec), m.qos, false, body)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mqtt publish: %w", ctx.Err())
	}
}

func (m *MQTTSink) Close() error {
	m.client.Disconnect(250)
	return nil
}
