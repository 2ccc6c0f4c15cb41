package alert

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"npr-price-bot/internal/types"
)

type SubscriberStore interface {
	GetAllSubscribers() ([]types.Subscriber, error)
}

type PriceSource interface {
	Fetch() (float64, bool)
}

type Notifier interface {
	Notify(chatID int64, price float64) error
}

// Metrics are optional counters; nil fields are simply not incremented.
type Metrics struct {
	Cycles        prometheus.Counter
	Notifications prometheus.Counter
}

// Checker is the periodic price check job: fetch the current price once,
// then alert every subscriber whose target has been met or exceeded.
type Checker struct {
	Store    SubscriberStore
	Prices   PriceSource
	Notifier Notifier
	Interval time.Duration
	Metrics  Metrics
}

// Run triggers a check cycle on every tick until ctx is cancelled. Each
// cycle runs in its own goroutine so a slow fetch or send does not delay
// the next trigger; there is intentionally no overlap guard.
func (c *Checker) Run(ctx context.Context) {
	interval := c.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	log.Info("🚀 Price check job started.")
	for {
		select {
		case <-ctx.Done():
			log.Info("Price check job stopped.")
			return
		case <-t.C:
			go c.CheckOnce()
		}
	}
}

// CheckOnce performs a single check cycle.
func (c *Checker) CheckOnce() {
	if c.Metrics.Cycles != nil {
		c.Metrics.Cycles.Inc()
	}

	log.Debug("🔄 Checking subscriber price targets...")

	currentPrice, ok := c.Prices.Fetch()
	if !ok {
		// The price client already logged the failure; skip this cycle.
		return
	}

	subscribers, err := c.Store.GetAllSubscribers()
	if err != nil {
		log.Errorf("❌ Failed to fetch subscribers from the database: %v", err)
		return
	}

	for _, sub := range subscribers {
		if sub.TargetPrice > currentPrice {
			continue
		}

		if err := c.Notifier.Notify(sub.ChatID, currentPrice); err != nil {
			log.Errorf("❌ Failed to send price alert to chat %d: %v", sub.ChatID, err)
			continue
		}

		if c.Metrics.Notifications != nil {
			c.Metrics.Notifications.Inc()
		}
		log.Debugf("✅ Price alert sent to chat %d", sub.ChatID)
	}
}
