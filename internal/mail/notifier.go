// Package mail composes confirmation and recovery messages and publishes
// them as jobs on the mail.send queue.  Delivery itself happens in the
// queue consumer; from the caller's perspective a successful publish is a
// successful send.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/auth-service/internal/queue"
)

// Publisher hands a composed mail job to the delivery pipeline.  The
// production implementation publishes to RabbitMQ; tests substitute a
// recorder.
type Publisher interface {
	Publish(ctx context.Context, job q.MailJob) error
}

// Notifier composes the outbound messages and hands them to its Publisher.
type Notifier struct {
	pub        Publisher
	uiEndpoint string
}

// NewNotifier wires a Notifier to the RabbitMQ publisher.
func NewNotifier(amqpURL, uiEndpoint string) *Notifier {
	return &Notifier{pub: &amqpPublisher{url: amqpURL}, uiEndpoint: uiEndpoint}
}

// SendConfirmation queues the registration confirmation mail carrying the
// one-time code and a direct confirmation link.
func (n *Notifier) SendConfirmation(ctx context.Context, email, name, code string) error {
	link := fmt.Sprintf("%s/confirm?email=%s&code=%s",
		n.uiEndpoint, url.QueryEscape(email), url.QueryEscape(code))
	greeting := "there"
	if name != "" {
		greeting = name
	}
	return n.pub.Publish(ctx, q.MailJob{
		To:      email,
		Subject: "Confirm your registration",
		HTML: fmt.Sprintf("<p>Dear %s, your confirmation code is <b>%s</b>.</p><p>To confirm your registration, please click: <a href=%q>CONFIRM</a></p>",
			greeting, code, link),
		Kind: "confirmation",
	})
}

// SendRecoveryInstructions queues the password recovery mail.  The
// requesting device's user-agent is included so the owner can recognize a
// request they did not make.
func (n *Notifier) SendRecoveryInstructions(ctx context.Context, email, userAgent, code string) error {
	link := fmt.Sprintf("%s/password?email=%s&code=%s&recovery=true",
		n.uiEndpoint, url.QueryEscape(email), url.QueryEscape(code))
	return n.pub.Publish(ctx, q.MailJob{
		To:      email,
		Subject: "Recovering access to your account",
		HTML: fmt.Sprintf("<p>Access recovery was requested from %s.</p><p>Your recovery code is <b>%s</b>. To recover access, please click: <a href=%q>RECOVER</a></p>",
			userAgent, code, link),
		Kind: "recovery",
	})
}

// amqpPublisher publishes mail jobs to RabbitMQ.  Messages are persistent
// so they survive broker restarts.
type amqpPublisher struct {
	url string
}

// Publish opens a short-lived connection, declares the durable queue
// (idempotent) and publishes the job.  Errors are logged and returned so
// callers can surface a delivery failure without this package panicking.
func (p *amqpPublisher) Publish(ctx context.Context, job q.MailJob) error {
	conn, err := amqp.Dial(p.url)
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
		q.MailQueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(job)
	if err != nil {
		log.Printf("rabbitmq: marshal mail job failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",              // default exchange
		q.MailQueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
