package consumers

import (
	"encoding/json"
	"log"

	"cart-service/config"
	"cart-service/database"
	"cart-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

func StartCheckoutConsumer(ch *amqp.Channel, cfg *config.Config) {
	msgs, err := ch.Consume(
		cfg.CheckoutQueue,
		"cart-service", // consumer tag
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	go func() {
		for msg := range msgs {
			processCheckoutMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"cart-service-dlq", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processCheckoutMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.CheckoutEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid message format: %s", msg.Body)
		if err := msg.Nack(false, false); err != nil {
			return
		}
		return
	}

	log.Printf("Processing checkout event: user=%d type=%s total=%d", event.UserID, event.Type, event.Total)

	switch event.Type {
	case "submitted":
		handleSubmitted(event)
	case "reconcile":
		handleReconcile(event)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	if err := msg.Ack(false); err != nil {
		return
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	if database.DB != nil {
		_, err := database.DB.Exec(
			"INSERT INTO dead_letters (body) VALUES (?)",
			string(msg.Body),
		)
		if err != nil {
			log.Printf("Failed to record dead letter: %v", err)
		}
	}
	if err := msg.Ack(false); err != nil {
		return
	}
}

// handleSubmitted records the confirmed submission for reconciliation.
// The cart itself is never persisted; only the fact of the order is.
func handleSubmitted(event models.CheckoutEvent) {
	_, err := database.DB.Exec(
		"INSERT INTO submitted_orders (user_id, total, item_count, event_type, occurred) VALUES (?, ?, ?, ?, ?)",
		event.UserID, event.Total, event.ItemCount, event.Type, event.Occurred,
	)
	if err != nil {
		log.Printf("Failed to record submitted order: %v", err)
	}
}

// handleReconcile verifies that a submission seen at checkout time made it
// into the audit trail.
func handleReconcile(event models.CheckoutEvent) {
	var count int
	err := database.DB.QueryRow(
		"SELECT COUNT(*) FROM submitted_orders WHERE user_id = ? AND total = ? AND occurred >= ?",
		event.UserID, event.Total, event.Occurred,
	).Scan(&count)
	if err != nil {
		log.Printf("Failed to reconcile submission: %v", err)
		return
	}
	if count == 0 {
		log.Printf("Reconcile miss: user=%d total=%d occurred=%s", event.UserID, event.Total, event.Occurred)
	}
}
