package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	topic   string
	body    []byte
	err     error
	stopped bool
}

func (p *fakePublisher) Publish(topic string, body []byte) error {
	p.topic = topic
	p.body = body
	return p.err
}

func (p *fakePublisher) Stop() { p.stopped = true }

func TestNSQNotifierPublishesJSON(t *testing.T) {
	log, _ := test.NewNullLogger()
	pub := &fakePublisher{}
	n := newNSQNotifier(pub, "", log)

	err := n.Notify(context.Background(), Message{
		Kind:    "booking.extended",
		Channel: ChannelEvent,
		To:      "customer-1",
		Data:    map[string]string{"booking_id": "b1"},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, pub.topic)

	var got Message
	require.NoError(t, json.Unmarshal(pub.body, &got))
	assert.Equal(t, "booking.extended", got.Kind)
	assert.Equal(t, "b1", got.Data["booking_id"])
	assert.False(t, got.CreatedAt.IsZero())

	n.Close()
	assert.True(t, pub.stopped)
}

func TestNSQNotifierErrors(t *testing.T) {
	log, _ := test.NewNullLogger()
	pub := &fakePublisher{err: assert.AnError}
	n := newNSQNotifier(pub, "custom", log)

	err := n.Notify(context.Background(), Message{Kind: "x"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "custom", pub.topic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, Message{}), context.Canceled)
}

func TestLogNotifier(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := NewLogNotifier(log)

	require.NoError(t, n.Notify(context.Background(), Message{
		Kind:    "password_reset.code",
		Channel: ChannelSMS,
		To:      "+639171234567",
		Subject: "verification code",
		Data:    map[string]string{"code": "123456"},
	}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, ChannelSMS, entry.Data["channel"])
	assert.Equal(t, "123456", entry.Data["data.code"])
}

func TestParseChannel(t *testing.T) {
	c, ok := ParseChannel("email")
	assert.True(t, ok)
	assert.Equal(t, ChannelEmail, c)

	_, ok = ParseChannel("event")
	assert.False(t, ok)
}
