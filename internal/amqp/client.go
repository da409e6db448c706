package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rabbitmq/amqp091-go"

	"billhub/internal/log"
)

// Config describes the broker topology.
type Config struct {
	URL          string
	Exchange     string
	Queue        string
	DialAttempts uint
}

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       *log.Logger
}

type dialFunc func(url string) (*amqp091.Connection, error)

// NewClient dials the broker, retrying with exponential backoff, and declares
// the exchange and queue.
func NewClient(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	logger = logger.WithComponent(log.ComponentAMQP)
	conn, err := dialWithBackoff(ctx, amqp091.Dial, cfg, backoff.NewExponentialBackOff(), logger)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: cfg.Exchange,
		queueName:    cfg.Queue,
		logger:       logger,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func dialWithBackoff(ctx context.Context, dial dialFunc, cfg Config, b backoff.BackOff, logger *log.Logger) (*amqp091.Connection, error) {
	attempts := cfg.DialAttempts
	if attempts == 0 {
		attempts = 5
	}
	try := 0
	return backoff.Retry(ctx, func() (*amqp091.Connection, error) {
		try++
		conn, err := dial(cfg.URL)
		if err != nil {
			logger.WarnContext(ctx, "AMQP dial failed", "attempt", try, log.FieldError, err)
			return nil, err
		}
		return conn, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(attempts))
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// one queue receives both event kinds
	for _, key := range []string{RoutingBillRequested, RoutingBillPaid} {
		if err := c.channel.QueueBind(c.queueName, key, c.exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind queue to %s: %w", key, err)
		}
	}

	return nil
}

// PublishBillEvent publishes ev using its type as routing key.
func (c *Client) PublishBillEvent(ctx context.Context, ev *BillEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		ev.Type,        // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.InfoContext(ctx, "Published bill event",
		log.FieldRoutingKey, ev.Type,
		log.FieldBillID, ev.BillID,
		"exchange", c.exchangeName)

	return nil
}

// ConsumeBillEvents delivers events to handler until ctx is done. Malformed
// messages are dropped; handler failures are requeued.
func (c *Client) ConsumeBillEvents(ctx context.Context, handler func(context.Context, *BillEvent) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming bill events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			handleDelivery(ctx, c.logger, delivery, handler)
		}
	}
}

// acknowledger is the part of amqp091.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, logger *log.Logger, d amqp091.Delivery, handler func(context.Context, *BillEvent) error) {
	settle(ctx, logger, d.Body, &d, handler)
}

func settle(ctx context.Context, logger *log.Logger, body []byte, ack acknowledger, handler func(context.Context, *BillEvent) error) {
	msg, err := BillEventFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to unmarshal message", log.FieldError, err)
		_ = ack.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to handle message",
			log.FieldError, err,
			log.FieldRoutingKey, msg.Type,
			log.FieldBillID, msg.BillID)
		_ = ack.Nack(false, true)
		return
	}

	_ = ack.Ack(false)
	logger.DebugContext(ctx, "Processed bill event", log.FieldRoutingKey, msg.Type, log.FieldBillID, msg.BillID)
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
