package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "potterdex/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestAppendProducesJSONRecord(t *testing.T) {
	producer := &fakeProducer{}
	store := NewWithProducer(producer, "potterdex.audit")

	event := audit.Event{
		Category:  audit.CategoryData,
		Action:    string(audit.EventCharacterDeleted),
		Subject:   "65a1f0c2e4b0a1b2c3d4e5f6",
		RequestID: "req-1",
	}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "potterdex.audit", rec.Topic)
	assert.Equal(t, []byte(event.Subject), rec.Key)

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event.Action, decoded.Action)
	assert.Equal(t, event.RequestID, decoded.RequestID)

	require.Len(t, rec.Headers, 2)
	assert.Equal(t, "action", rec.Headers[0].Key)
	assert.Equal(t, []byte(event.Action), rec.Headers[0].Value)
}

func TestAppendSurfacesProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	store := NewWithProducer(producer, "potterdex.audit")

	err := store.Append(context.Background(), audit.Event{Action: string(audit.EventCharacterInserted)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unreachable")
}

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(nil, "potterdex.audit")
	require.Error(t, err)
}

func TestCloseClosesProducer(t *testing.T) {
	producer := &fakeProducer{}
	NewWithProducer(producer, "t").Close()
	assert.True(t, producer.closed)
}
