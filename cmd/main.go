package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"npr-price-bot/config"
	"npr-price-bot/internal/alert"
	"npr-price-bot/internal/commands"
	"npr-price-bot/internal/database"
	"npr-price-bot/internal/price"
	"npr-price-bot/internal/telegram"
)

type BotMetrics struct {
	CommandsProcessed prometheus.Counter
	MessagesHandled   prometheus.Counter
	CheckCycles       prometheus.Counter
	NotificationsSent prometheus.Counter
}

func init() {
	config.InitConfig()
	setupLogging()
}

func NewBotMetrics() *BotMetrics {
	metrics := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nprbot",
			Subsystem: "telegram_bot",
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nprbot",
			Subsystem: "telegram_bot",
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		CheckCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nprbot",
			Subsystem: "price_check",
			Name:      "cycles_total",
			Help:      "The total number of price check cycles run",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nprbot",
			Subsystem: "price_check",
			Name:      "notifications_sent",
			Help:      "The total number of price alert notifications sent",
		}),
	}

	prometheus.MustRegister(metrics.CommandsProcessed)
	prometheus.MustRegister(metrics.MessagesHandled)
	prometheus.MustRegister(metrics.CheckCycles)
	prometheus.MustRegister(metrics.NotificationsSent)

	return metrics
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")

	token := config.GetString("telegram_bot_token")
	if token == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := config.GetString("database_path")
	if dbPath == "" {
		log.Fatal("DATABASE_PATH is required")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics := NewBotMetrics()
	loadMetricsFromDB(db, metrics)

	prices := price.NewClient()

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          token,
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	}, &commands.Handler{Store: db, Prices: prices})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	checker := &alert.Checker{
		Store:    db,
		Prices:   prices,
		Notifier: bot,
		Interval: time.Duration(config.GetInt("check_interval")) * time.Second,
		Metrics: alert.Metrics{
			Cycles:        metrics.CheckCycles,
			Notifications: metrics.NotificationsSent,
		},
	}
	go checker.Run(ctx)

	go handleUpdates(bot, bot.GetUpdatesChannel(), metrics)

	go func() {
		t := time.NewTicker(5 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				saveMetricsToDB(db, metrics)
			}
		}
	}()

	go func() {
		if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
			log.Fatalf("Failed to start metrics and health server: %v", err)
		}
	}()

	<-ctx.Done()
	saveMetricsToDB(db, metrics)
	log.Info("Metrics saved, shutting down...")
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func handleUpdates(bot *telegram.Bot, updates tgbotapi.UpdatesChannel, metrics *BotMetrics) {
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			log.Debug("Received non-command update")
			continue
		}

		metrics.MessagesHandled.Inc()
		handleCommand(bot, update, metrics)
	}
}

func handleCommand(bot *telegram.Bot, update tgbotapi.Update, metrics *BotMetrics) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      bot.HandleUpdate(update),
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		metrics.CommandsProcessed.Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func loadMetricsFromDB(db *database.DB, metrics *BotMetrics) {
	commandsProcessed, _ := db.GetMetric("commands_processed")
	messagesHandled, _ := db.GetMetric("messages_handled")
	checkCycles, _ := db.GetMetric("check_cycles")
	notificationsSent, _ := db.GetMetric("notifications_sent")

	metrics.CommandsProcessed.Add(commandsProcessed)
	metrics.MessagesHandled.Add(messagesHandled)
	metrics.CheckCycles.Add(checkCycles)
	metrics.NotificationsSent.Add(notificationsSent)

	log.Debug("Metrics loaded from database.")
}

func saveMetricsToDB(db *database.DB, metrics *BotMetrics) {
	db.SaveMetric("commands_processed", GetMetricValue(metrics.CommandsProcessed))
	db.SaveMetric("messages_handled", GetMetricValue(metrics.MessagesHandled))
	db.SaveMetric("check_cycles", GetMetricValue(metrics.CheckCycles))
	db.SaveMetric("notifications_sent", GetMetricValue(metrics.NotificationsSent))

	log.Debug("Metrics saved to database.")
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Errorf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
