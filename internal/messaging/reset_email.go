package messaging

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-user-auth/internal/logger"
	"github.com/segmentio/kafka-go"
)

// MessageTypeResetPassword is the message type consumed by the downstream mailer.
const MessageTypeResetPassword = "reset_password"

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// emailMessage is the payload handed to the mailer queue.
type emailMessage struct {
	To            string `json:"to"`
	Token         string `json:"token"`
	Type          string `json:"type"`
	CorrelationID string `json:"correlationId"`
}

// EmailPublisher publishes email delivery requests to Kafka. Delivery is
// asynchronous; the publisher only waits for the broker's publish ack.
type EmailPublisher struct {
	writer KafkaWriter
}

// NewEmailPublisher creates a new EmailPublisher.
func NewEmailPublisher(writer KafkaWriter) *EmailPublisher {
	return &EmailPublisher{writer: writer}
}

// Publish enqueues a message for the given recipient and returns the
// correlation id assigned to it. A broker failure is returned to the caller.
func (p *EmailPublisher) Publish(ctx context.Context, to, token, messageType string) (string, error) {
	correlationID := uuid.NewString()

	payload := emailMessage{
		To:            to,
		Token:         token,
		Type:          messageType,
		CorrelationID: correlationID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorw("failed to marshal email message", "correlation_id", correlationID, "error", err)
		return "", err
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish email message", "correlation_id", correlationID, "to", to, "error", err)
		return "", err
	}

	logger.Log.Infow("email message published", "correlation_id", correlationID, "type", messageType)
	return correlationID, nil
}
