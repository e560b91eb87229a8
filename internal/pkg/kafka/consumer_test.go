package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	queue     []kafkago.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(offsets ...int64) (*Consumer, *fakeReader) {
	r := &fakeReader{}
	for _, o := range offsets {
		r.queue = append(r.queue, kafkago.Message{Topic: "booking.events", Offset: o})
	}
	c := newConsumer(r, zap.NewNop())
	c.retryBackoff = 0
	return c, r
}

func TestConsume_CommitsHandledMessages(t *testing.T) {
	c, r := newTestConsumer(0, 1, 2)
	ctx, cancel := context.WithCancel(context.Background())

	var seen []int64
	err := c.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		seen = append(seen, msg.Offset)
		if msg.Offset == 2 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, seen)
	assert.Equal(t, []int64{0, 1, 2}, r.committed)
}

func TestConsume_RetriesTransientFailure(t *testing.T) {
	c, r := newTestConsumer(0, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	err := c.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		if msg.Offset == 0 {
			calls++
			if calls < 2 {
				return errors.New("temporary")
			}
			return nil
		}
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []int64{0, 1}, r.committed)
}

func TestConsume_StopsWithoutCommittingPastFailure(t *testing.T) {
	c, r := newTestConsumer(0, 1, 2)
	boom := errors.New("boom")

	var seen []int64
	err := c.Consume(context.Background(), func(_ context.Context, msg kafkago.Message) error {
		seen = append(seen, msg.Offset)
		if msg.Offset == 1 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{0, 1, 1, 1}, seen)
	assert.Equal(t, []int64{0}, r.committed)
	assert.Len(t, r.queue, 1, "messages after the failure are not fetched")
}
