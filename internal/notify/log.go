package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes messages to the log instead of delivering them.
// It is used when no nsqd address is configured.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	fields := logrus.Fields{
		"kind":    msg.Kind,
		"channel": msg.Channel,
		"to":      msg.To,
	}
	for k, v := range msg.Data {
		fields["data."+k] = v
	}
	n.log.WithFields(fields).Info(msg.Subject)
	return nil
}
