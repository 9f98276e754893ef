package persist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/conceptlink/internal/game"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func completedToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	token        paho.Token
	sent         []published
	disconnected bool
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	f.sent = append(f.sent, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return f.token
}

func (f *fakePublisher) Disconnect(uint) { f.disconnected = true }

func TestMQTTSinkPublishesJSON(t *testing.T) {
	pub := &fakePublisher{token: completedToken(nil)}
	sink := newMQTTSink(pub, "lab/sessions/", 1)

	rec, _ := FromChange(eventChange(3))
	require.NoError(t, sink.Write(context.Background(), rec))
	require.Len(t, pub.sent, 1)
	assert.Equal(t, "lab/sessions/s-1/interaction", pub.sent[0].topic)
	assert.Equal(t, byte(1), pub.sent[0].qos)

	var decoded Record
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &decoded))
	assert.Equal(t, rec.ID, decoded.ID)
	assert.Equal(t, int64(3), decoded.Event.Seq)

	require.NoError(t, sink.Close())
	assert.True(t, pub.disconnected)
}

func TestMQTTSinkDefaultPrefix(t *testing.T) {
	sink := newMQTTSink(&fakePublisher{}, "", 0)
	assert.Equal(t, "conceptlink/sessions/x/analytics", sink.Topic(Record{SessionID: "x", Kind: KindAnalytics}))
}

func TestMQTTSinkErrors(t *testing.T) {
	rec, _ := FromChange(eventChange(1))

	failing := newMQTTSink(&fakePublisher{token: completedToken(errors.New("not connected"))}, "", 0)
	assert.ErrorContains(t, failing.Write(context.Background(), rec), "not connected")

	pending := &fakeToken{done: make(chan struct{})}
	stalled := newMQTTSink(&fakePublisher{token: pending}, "", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, stalled.Write(ctx, rec), context.Canceled)
}

func TestDialMQTTRequiresBroker(t *testing.T) {
	_, err := DialMQTT(MQTTOptions{})
	assert.Error(t, err)
}

func TestRecordPayload(t *testing.T) {
	rec, _ := FromChange(eventChange(2))
	b, err := recordPayload(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"connection_attempted"`)

	sum, _ := FromChange(game.Change{Kind: game.ChangeCompleted, SessionID: "s", Summary: &game.Summary{Score: 12, Reason: game.CompletedByFinish}})
	b, err = recordPayload(sum)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"score":12`)

	_, err = recordPayload(Record{Kind: "bogus"})
	assert.Error(t, err)
}
