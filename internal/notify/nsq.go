package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
)

// publisher is the part of *nsq.Producer the notifier needs.
type publisher interface {
	Publish(topic string, body []byte) error
	Stop()
}

// NSQNotifier publishes JSON messages to an NSQ topic.
type NSQNotifier struct {
	producer publisher
	topic    string
	log      logrus.FieldLogger
}

// NewNSQNotifier connects a producer to nsqd and verifies it answers.
func NewNSQNotifier(addr, topic string, log logrus.FieldLogger) (*NSQNotifier, error) {
	cfg := nsq.NewConfig()
	cfg.DialTimeout = 5 * time.Second

	producer, err := nsq.NewProducer(addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ producer: %w", err)
	}
	producer.SetLoggerLevel(nsq.LogLevelWarning)

	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("failed to ping NSQ daemon: %w", err)
	}

	return newNSQNotifier(producer, topic, log), nil
}

func newNSQNotifier(p publisher, topic string, log logrus.FieldLogger) *NSQNotifier {
	if topic == "" {
		topic = DefaultTopic
	}
	return &NSQNotifier{producer: p, topic: topic, log: log}
}

func (n *NSQNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := n.producer.Publish(n.topic, body); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	n.log.WithFields(logrus.Fields{"topic": n.topic, "kind": msg.Kind}).Debug("published notification")
	return nil
}

// Close stops the producer, flushing in-flight publishes.
func (n *NSQNotifier) Close() {
	n.producer.Stop()
}
