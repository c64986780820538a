package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/joho/godotenv"
	"github.com/wneessen/go-mail"

	"github.com/evia-dev/comedor-access/backend/internal/config"
	"github.com/evia-dev/comedor-access/backend/internal/dispatcher"
	"github.com/evia-dev/comedor-access/backend/internal/domain"
	"github.com/evia-dev/comedor-access/backend/internal/utils"
)

func main() {
	/**********************************************
	 * create logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * load configuration
	 **********************************************/
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * create mail client
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("failed to connect to mail server", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * connect to rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		dispatcher.QueueName, // queue name
		true,                 // durable
		false,                // do not auto-delete when unused
		false,                // not exclusive
		false,                // wait for the broker to confirm
		nil,                  // no extra arguments
	)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("failed to consume queue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tmpl, err := template.ParseFiles("./templates/shift_alert_email.html")
	if err != nil {
		logger.Error("failed to parse alert template", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("event received", slog.String("message", string(msg.Body)))

				event := domain.ShiftEvent{}
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					logger.Error("failed to decode event", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("failed to set sender", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(cfg.Email.AdminAddress); err != nil {
					logger.Error("failed to set recipient", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				data := domain.ShiftAlertMailData{
					EventType:        string(event.Type),
					ShiftName:        event.ShiftName,
					StartTime:        utils.FormatMinute(event.StartMinute),
					EndTime:          utils.FormatMinute(event.EndMinute),
					ThresholdMinutes: event.ThresholdMinutes,
					At:               event.At.Format(time.RFC3339),
				}
				if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
					logger.Error("failed to set mail body", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				switch event.Type {
				case domain.EventShiftStarted:
					m.Subject("Comedor - turno " + event.ShiftName + " iniciado")
				case domain.EventShiftEndingSoon:
					m.Subject("Comedor - turno " + event.ShiftName + " por terminar")
				case domain.EventShiftEnded:
					m.Subject("Comedor - turno " + event.ShiftName + " finalizado")
				default:
					logger.Error("unsupported event type", slog.String("type", string(event.Type)))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("failed to send mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // requeue so the alert is not lost
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	<-sigChan
	logger.Info("shutting down alert consumer...")
	cancel()
	wg.Wait()
}
