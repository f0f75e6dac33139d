package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecord) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *ackRecord) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecord) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeSender struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeSender) DialAndSend(messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func newWorker(s sender) *worker {
	return &worker{
		from:   "noreply@example.com",
		sender: s,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func delivery(t *testing.T, body any) (amqp.Delivery, *ackRecord) {
	t.Helper()

	var raw []byte
	switch b := body.(type) {
	case []byte:
		raw = b
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}

	ack := &ackRecord{}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: raw}, ack
}

func accountMail() domain.MailMessage {
	return domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   "wxm@example.com",
		Data: domain.CreateUserMailData{FullName: "王小明", Username: "wangxiaoming", Password: "secret"},
	}
}

func TestWorker_Handle(t *testing.T) {
	t.Run("sends the mail and acks", func(t *testing.T) {
		s := &fakeSender{}
		d, ack := delivery(t, accountMail())

		newWorker(s).handle(d)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		require.Len(t, s.sent, 1)
	})

	t.Run("drops bodies that are not json", func(t *testing.T) {
		s := &fakeSender{}
		d, ack := delivery(t, []byte("not json"))

		newWorker(s).handle(d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
		assert.Empty(t, s.sent)
	})

	t.Run("drops unknown mail kinds", func(t *testing.T) {
		s := &fakeSender{}
		d, ack := delivery(t, domain.MailMessage{Type: "change_email", To: "a@example.com"})

		newWorker(s).handle(d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("requeues when the smtp server fails", func(t *testing.T) {
		s := &fakeSender{err: errors.New("smtp: 421 try again later")}
		d, ack := delivery(t, accountMail())

		newWorker(s).handle(d)

		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
		assert.False(t, ack.acked)
	})
}

func TestWorker_Consume(t *testing.T) {
	t.Run("returns when the channel is closed", func(t *testing.T) {
		s := &fakeSender{}
		deliveries := make(chan amqp.Delivery, 2)
		d1, ack1 := delivery(t, accountMail())
		d2, ack2 := delivery(t, accountMail())
		deliveries <- d1
		deliveries <- d2
		close(deliveries)

		newWorker(s).consume(context.Background(), deliveries)

		assert.True(t, ack1.acked)
		assert.True(t, ack2.acked)
		assert.Len(t, s.sent, 2)
	})

	t.Run("returns when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			newWorker(&fakeSender{}).consume(ctx, make(chan amqp.Delivery))
			close(done)
		}()

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("consume did not stop after cancel")
		}
	})
}
