package notification

import (
	"context"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

const routingKeyPrefix = "notice."

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrPublisherClosed is returned when Notify is called after Close.
var ErrPublisherClosed = errors.New("notice publisher is closed")

// envelope is the message body published for every notice.
type envelope struct {
	Notice
	Text string `json:"text"`
}

// Publisher publishes rendered notices to a durable RabbitMQ topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// DialPublisher connects to the broker at url and declares the exchange.
func DialPublisher(url string, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	if err = channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = channel.Close()
		_ = conn.Close()

		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Notify publishes the notice as a persistent message routed by its kind.
func (p *Publisher) Notify(ctx context.Context, notice Notice) error {
	if p.channel == nil || p.channel.IsClosed() {
		return ErrPublisherClosed
	}

	publishing, err := Encode(notice)
	if err != nil {
		return err
	}

	if err = p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(notice.Kind), false, false, publishing); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error

	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}

	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}

	return errors.Join(errs...)
}

// RoutingKey is the topic under which notices of the kind are published.
func RoutingKey(kind Kind) string {
	return routingKeyPrefix + string(kind)
}

// Encode builds the AMQP message for the notice.
func Encode(notice Notice) (amqp.Publishing, error) {
	body, err := jsonAPI.Marshal(envelope{Notice: notice, Text: Render(notice)})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal notice: %w", err)
	}

	return amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		DeliveryMode:    amqp.Persistent,
		MessageId:       notice.ID.String(),
		Timestamp:       notice.OccurredAt.UTC(),
		Type:            string(notice.Kind),
		Body:            body,
	}, nil
}
