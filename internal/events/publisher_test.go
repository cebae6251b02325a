package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-forms/internal/config"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_RecordCreated(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)

	err := p.PublishRecordCreated(context.Background(), RecordCreated{
		SubmissionID: "sub-1",
		DatabaseID:   "db-1",
		PageID:       "page-1",
		TraceID:      "trace-1",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "db-1", string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "record.created", string(msg.Headers[0].Value))
	assert.Equal(t, "trace-1", string(msg.Headers[1].Value))

	var ev RecordCreated
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, TypeRecordCreated, ev.Type)
	assert.Equal(t, "page-1", ev.PageID)
	assert.False(t, ev.OccurredAt.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("broker down")})
	err := p.PublishRecordCreated(context.Background(), RecordCreated{DatabaseID: "db-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(config.EventsConfig{})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
}

func TestNew_RequiresBrokers(t *testing.T) {
	_, err := New(config.EventsConfig{Enabled: true, Topic: "t"})
	require.Error(t, err)
}
