package alert_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npr-price-bot/internal/alert"
	"npr-price-bot/internal/types"
)

type fakeStore struct {
	subs  []types.Subscriber
	err   error
	calls int
}

func (f *fakeStore) GetAllSubscribers() ([]types.Subscriber, error) {
	f.calls++
	return f.subs, f.err
}

type fakePrices struct {
	price float64
	ok    bool
}

func (f *fakePrices) Fetch() (float64, bool) {
	return f.price, f.ok
}

type notification struct {
	chatID int64
	price  float64
}

type fakeNotifier struct {
	sent    []notification
	failFor map[int64]error
}

func (f *fakeNotifier) Notify(chatID int64, price float64) error {
	if err := f.failFor[chatID]; err != nil {
		return err
	}
	f.sent = append(f.sent, notification{chatID: chatID, price: price})
	return nil
}

func subscriber(chatID int64, target float64) types.Subscriber {
	return types.Subscriber{ChatID: chatID, TargetPrice: target, NotificationMethod: types.NotificationTelegram}
}

func TestCheckOnce(t *testing.T) {
	t.Run("notifies only subscribers at or below current price", func(t *testing.T) {
		notifier := &fakeNotifier{}
		c := &alert.Checker{
			Store:    &fakeStore{subs: []types.Subscriber{subscriber(1, 100), subscriber(2, 110)}},
			Prices:   &fakePrices{price: 105.5, ok: true},
			Notifier: notifier,
		}

		c.CheckOnce()

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, notification{chatID: 1, price: 105.5}, notifier.sent[0])
	})

	t.Run("target equal to price fires", func(t *testing.T) {
		notifier := &fakeNotifier{}
		c := &alert.Checker{
			Store:    &fakeStore{subs: []types.Subscriber{subscriber(1, 100)}},
			Prices:   &fakePrices{price: 100, ok: true},
			Notifier: notifier,
		}

		c.CheckOnce()

		assert.Len(t, notifier.sent, 1)
	})

	t.Run("no price available skips the cycle", func(t *testing.T) {
		store := &fakeStore{subs: []types.Subscriber{subscriber(1, 100)}}
		notifier := &fakeNotifier{}
		c := &alert.Checker{
			Store:    store,
			Prices:   &fakePrices{ok: false},
			Notifier: notifier,
		}

		c.CheckOnce()

		assert.Zero(t, store.calls)
		assert.Empty(t, notifier.sent)
	})

	t.Run("store error aborts the cycle", func(t *testing.T) {
		notifier := &fakeNotifier{}
		c := &alert.Checker{
			Store:    &fakeStore{err: assert.AnError},
			Prices:   &fakePrices{price: 100, ok: true},
			Notifier: notifier,
		}

		c.CheckOnce()

		assert.Empty(t, notifier.sent)
	})

	t.Run("delivery failure does not abort the loop", func(t *testing.T) {
		notifier := &fakeNotifier{failFor: map[int64]error{2: assert.AnError}}
		c := &alert.Checker{
			Store: &fakeStore{subs: []types.Subscriber{
				subscriber(1, 90),
				subscriber(2, 95),
				subscriber(3, 99),
			}},
			Prices:   &fakePrices{price: 100, ok: true},
			Notifier: notifier,
		}

		c.CheckOnce()

		require.Len(t, notifier.sent, 2)
		assert.Equal(t, int64(1), notifier.sent[0].chatID)
		assert.Equal(t, int64(3), notifier.sent[1].chatID)
	})

	t.Run("each qualifying subscriber is notified once per cycle", func(t *testing.T) {
		notifier := &fakeNotifier{}
		c := &alert.Checker{
			Store: &fakeStore{subs: []types.Subscriber{
				subscriber(1, 90),
				subscriber(2, 95),
			}},
			Prices:   &fakePrices{price: 100, ok: true},
			Notifier: notifier,
		}

		c.CheckOnce()

		seen := map[int64]int{}
		for _, n := range notifier.sent {
			seen[n.chatID]++
		}
		assert.Equal(t, map[int64]int{1: 1, 2: 1}, seen)
	})

	t.Run("run triggers a cycle per tick and stops on cancellation", func(t *testing.T) {
		cycles := prometheus.NewCounter(prometheus.CounterOpts{Name: "cycles_total"})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := &alert.Checker{
			Store:    &fakeStore{},
			Prices:   &fakePrices{ok: false},
			Notifier: &fakeNotifier{},
			Interval: 5 * time.Millisecond,
			Metrics:  alert.Metrics{Cycles: cycles},
		}

		done := make(chan struct{})
		go func() {
			c.Run(ctx)
			close(done)
		}()

		assert.Eventually(t, func() bool {
			return testutil.ToFloat64(cycles) >= 2
		}, time.Second, 5*time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("run did not stop after context cancellation")
		}
	})

	t.Run("counts cycles and notifications", func(t *testing.T) {
		cycles := prometheus.NewCounter(prometheus.CounterOpts{Name: "cycles_total"})
		notifications := prometheus.NewCounter(prometheus.CounterOpts{Name: "notifications_sent"})

		c := &alert.Checker{
			Store: &fakeStore{subs: []types.Subscriber{
				subscriber(1, 90),
				subscriber(2, 95),
				subscriber(3, 200),
			}},
			Prices:   &fakePrices{price: 100, ok: true},
			Notifier: &fakeNotifier{},
			Metrics:  alert.Metrics{Cycles: cycles, Notifications: notifications},
		}

		c.CheckOnce()

		assert.Equal(t, float64(1), testutil.ToFloat64(cycles))
		assert.Equal(t, float64(2), testutil.ToFloat64(notifications))
	})
}
