package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"npr-price-bot/internal/types"
)

// UpsertSubscriber creates the subscriber record for chatID, or overwrites
// its target price if one already exists. The whole operation runs in a
// single transaction.
func (d *DB) UpsertSubscriber(chatID int64, targetPrice float64) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO subscribers (chat_id, target_price, notification_method)
	VALUES (?, ?, ?)
	ON CONFLICT(chat_id) DO UPDATE SET target_price = excluded.target_price;`

	if _, err := tx.Exec(query, chatID, targetPrice, types.NotificationTelegram); err != nil {
		return fmt.Errorf("failed to upsert subscriber: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debugf("Subscriber upserted: ChatID: %d, TargetPrice: %f", chatID, targetPrice)
	return nil
}

// GetAllSubscribers fetches every subscriber record. Order is not significant.
func (d *DB) GetAllSubscribers() ([]types.Subscriber, error) {
	query := `SELECT id, chat_id, target_price, notification_method, created_at FROM subscribers;`

	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []types.Subscriber
	for rows.Next() {
		var sub types.Subscriber
		if err := rows.Scan(&sub.ID, &sub.ChatID, &sub.TargetPrice, &sub.NotificationMethod, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		subscribers = append(subscribers, sub)
	}

	return subscribers, rows.Err()
}
