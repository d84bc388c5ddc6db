package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKafkaWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error { return nil }

func TestPublish_Success(t *testing.T) {
	writer := &fakeKafkaWriter{}
	publisher := NewEmailPublisher(writer)

	correlationID, err := publisher.Publish(context.Background(), "john@example.com", "reset-token", MessageTypeResetPassword)
	require.NoError(t, err)
	require.NotEmpty(t, correlationID)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, correlationID, string(msg.Key))

	var payload struct {
		To            string `json:"to"`
		Token         string `json:"token"`
		Type          string `json:"type"`
		CorrelationID string `json:"correlationId"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "john@example.com", payload.To)
	assert.Equal(t, "reset-token", payload.Token)
	assert.Equal(t, "reset_password", payload.Type)
	assert.Equal(t, correlationID, payload.CorrelationID)
}

func TestPublish_BrokerError(t *testing.T) {
	brokerErr := errors.New("broker unreachable")
	publisher := NewEmailPublisher(&fakeKafkaWriter{err: brokerErr})

	correlationID, err := publisher.Publish(context.Background(), "john@example.com", "reset-token", MessageTypeResetPassword)
	assert.ErrorIs(t, err, brokerErr)
	assert.Empty(t, correlationID)
}

func TestPublish_UniqueCorrelationIDs(t *testing.T) {
	writer := &fakeKafkaWriter{}
	publisher := NewEmailPublisher(writer)

	first, err := publisher.Publish(context.Background(), "john@example.com", "t1", MessageTypeResetPassword)
	require.NoError(t, err)
	second, err := publisher.Publish(context.Background(), "john@example.com", "t2", MessageTypeResetPassword)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
