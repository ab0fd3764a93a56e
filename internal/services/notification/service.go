// Package notification tells downstream consumers when a payment request
// reaches a terminal state. Delivery is best effort and never blocks the
// ledger.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// Event types
const (
	EventRequestApproved = "wallet.request.approved"
	EventRequestRejected = "wallet.request.rejected"
)

const defaultTimeout = 5 * time.Second

// TerminalEvent describes a request that was approved or rejected.
type TerminalEvent struct {
	EventType   string             `json:"event_type"`
	RequestID   string             `json:"request_id"`
	UserID      string             `json:"user_id"`
	Type        models.RequestType `json:"type"`
	Status      models.Status      `json:"status"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    models.Currency    `json:"currency"`
	Reason      string             `json:"reason,omitempty"`
	User        models.UserDetails `json:"user"`
	VerifiedBy  string             `json:"verified_by"`
	OccurredAt  time.Time          `json:"occurred_at"`
	BalanceNow  *decimal.Decimal   `json:"balance_after,omitempty"`
	BalanceUnit models.Currency    `json:"balance_currency,omitempty"`
}

// EventFor builds the terminal event for a request that just transitioned.
func EventFor(r *models.PaymentRequest, wallet *models.Wallet) TerminalEvent {
	evt := TerminalEvent{
		RequestID:  r.RequestID,
		UserID:     r.UserID,
		Type:       r.Type,
		Status:     r.Status,
		Amount:     r.Amount,
		Currency:   r.Currency,
		Reason:     r.RejectionReason,
		User:       r.UserDetails,
		OccurredAt: time.Now().UTC(),
	}
	if r.VerifiedBy != nil {
		evt.VerifiedBy = *r.VerifiedBy
	}
	if r.VerifiedAt != nil {
		evt.OccurredAt = *r.VerifiedAt
	}
	if r.Status == models.StatusApproved {
		evt.EventType = EventRequestApproved
	} else {
		evt.EventType = EventRequestRejected
	}
	if wallet != nil {
		bal := wallet.Balance
		evt.BalanceNow = &bal
		evt.BalanceUnit = wallet.Currency
	}
	return evt
}

// Notifier delivers terminal events.
type Notifier interface {
	Notify(ctx context.Context, evt TerminalEvent) error
}

// LogNotifier only logs events. It is used when no broker is configured.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logger.Discard()
	}
	return &LogNotifier{log: logger.For(log, "notification")}
}

func (n *LogNotifier) Notify(_ context.Context, evt TerminalEvent) error {
	n.log.WithFields(logrus.Fields{
		"event":      evt.EventType,
		"request_id": evt.RequestID,
		"user_id":    evt.UserID,
		"amount":     evt.Amount.StringFixed(2),
		"currency":   evt.Currency,
	}).Info("notify user of request outcome")
	return nil
}

// MessageWriter is the subset of *kafka.Writer used here.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes events keyed by user so one user's events stay
// ordered within a partition.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(w MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

// NewKafkaWriter returns a writer for the terminal-event topic.
func NewKafkaWriter(brokers []string, topic string, log logrus.FieldLogger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Errorf("kafka: "+msg, args...)
		}),
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, evt TerminalEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.UserID),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventType, err)
	}
	return nil
}

// Dispatcher sends events in the background. Errors are logged and counted,
// never returned to the caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	log      logrus.FieldLogger
	metrics  metrics.Collector
	wg       sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, log logrus.FieldLogger, m metrics.Collector) *Dispatcher {
	if n == nil {
		n = NewLogNotifier(log)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		log:      logger.For(log, "notification"),
		metrics:  metrics.OrNoop(m),
	}
}

// Dispatch returns immediately. The event is delivered on its own goroutine
// with its own deadline, detached from the caller's context.
func (d *Dispatcher) Dispatch(evt TerminalEvent) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.WithField("panic", r).Error("notifier panicked")
				d.metrics.RecordNotificationFailure(evt.EventType)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifier.Notify(ctx, evt); err != nil {
			d.metrics.RecordNotificationFailure(evt.EventType)
			d.log.WithError(err).WithFields(logrus.Fields{
				"event":      evt.EventType,
				"request_id": evt.RequestID,
			}).Warn("notification failed")
		}
	}()
}

// Wait blocks until every dispatched event has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
