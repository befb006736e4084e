// Package service publishes domain events to RabbitMQ. Errors are logged
// and returned so request handlers can fire and forget without the broker
// being able to fail a user-facing request.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/kasistays/kasistays/internal/queue"
)

// PublishBookingConfirmed publishes a BookingConfirmedEvent to the
// booking.confirmed queue. The message is marked persistent so it survives
// a broker restart; the queue declare is idempotent and matches the
// consumer's.
func PublishBookingConfirmed(ctx context.Context, event queue.BookingConfirmedEvent) error {
    conn, err := amqp.Dial(queue.BrokerURL())
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(
        "booking.confirmed", // name
        true,                // durable
        false,               // autoDelete
        false,               // exclusive
        false,               // noWait
        nil,                 // args
    ); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                  // default exchange
        "booking.confirmed", // routing key = queue name
        false,               // mandatory
        false,               // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }

    return nil
}
