package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"canteen/internal/domain/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	ExchangeOrderEvents = "canteen_order_events"
	publishTimeout      = 5 * time.Second
)

// AMQPPublisher は注文イベントを fanout exchange に流す。
type AMQPPublisher struct {
	url string
	log *logrus.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewAMQPPublisher(url string, log *logrus.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, log: log}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := openChannel(conn)
	if err != nil {
		conn.Close()
		return err
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// チャネルを開いて exchange を宣言する
func openChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		ExchangeOrderEvents, // name
		"fanout",            // type
		true,                // durable
		false,               // auto-deleted
		false,               // internal
		false,               // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return ch, nil
}

// 接続が切れていれば張り直し、チャネルだけ閉じていれば開き直す。
func (p *AMQPPublisher) ensureChannel() error {
	if p.conn == nil || p.conn.IsClosed() {
		p.log.Warn("amqp connection closed, reconnecting")
		return p.connect()
	}
	if p.channel == nil || p.channel.IsClosed() {
		p.log.Warn("amqp channel closed, reopening")
		ch, err := openChannel(p.conn)
		if err != nil {
			return err
		}
		p.channel = ch
	}
	return nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event model.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureChannel(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		ExchangeOrderEvents,
		string(event.Type), // routing key（fanoutでは無視される）
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// LogPublisher はブローカーなしの環境用。ログに出すだけ。
type LogPublisher struct {
	log *logrus.Logger
}

func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event model.OrderEvent) error {
	p.log.WithFields(logrus.Fields{
		"event_id": event.EventID,
		"type":     event.Type,
		"order_id": event.OrderID,
		"student":  event.StudentRef,
	}).Info("order event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
