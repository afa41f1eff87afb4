package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "net/smtp"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// SMTPConfig carries the relay settings the consumer delivers with.  An
// empty Host disables real delivery; jobs are then appended to
// logs/mail.log so local development still shows what would have been sent.
type SMTPConfig struct {
    Host string
    Port string
    User string
    Pass string
}

// StartMailConsumer connects to RabbitMQ, declares the mail.send queue
// (durable), and starts consuming jobs.  Each job is delivered over SMTP or
// logged when no relay is configured.  The function runs a reconnect loop
// and keeps running after broker failures; malformed or undeliverable
// messages are rejected without requeue so the queue never loops on a bad
// payload.
func StartMailConsumer(amqpURL string, smtpCfg SMTPConfig) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(amqpURL)
        if err != nil {
            log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, smtpCfg); err != nil {
            log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection, smtpCfg SMTPConfig) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("mail-consumer: set QoS failed: %v", err)
    }

    _, err = ch.QueueDeclare(MailQueueName, true, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(MailQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body, smtpCfg); err != nil {
            log.Printf("mail-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, smtpCfg SMTPConfig) error {
    var job MailJob
    if err := json.Unmarshal(body, &job); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if smtpCfg.Host == "" {
        return logMail(job)
    }
    return sendMail(job, smtpCfg)
}

func sendMail(job MailJob, cfg SMTPConfig) error {
    msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
        cfg.User, job.To, job.Subject, job.HTML)
    auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
    addr := cfg.Host + ":" + cfg.Port
    if err := smtp.SendMail(addr, auth, cfg.User, []string{job.To}, []byte(msg)); err != nil {
        return fmt.Errorf("smtp send: %w", err)
    }
    return nil
}

func logMail(job MailJob) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "mail.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] %s mail | to=%s | subject=%q\n%s\n",
        time.Now().UTC().Format(time.RFC3339), job.Kind, job.To, job.Subject, job.HTML)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
