// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// MailQueueName is the durable queue mail jobs are published to and
// consumed from.
const MailQueueName = "mail.send"

// MailJob is published for every outbound notification.  It contains the
// fully composed message so the consumer can deliver it without querying
// any other service.
type MailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Kind    string `json:"kind"` // confirmation | recovery
}
