// Command consumer appends movie activity events to logs/activity.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/top-movies/internal/config"
	"github.com/iliyamo/top-movies/internal/logger"
	"github.com/iliyamo/top-movies/internal/queue"
)

func main() {
	_ = godotenv.Load()
	log := logger.New("activity-consumer", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	logDir := os.Getenv("ACTIVITY_LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: config.RabbitMQURL(), LogDir: logDir, Log: log}
	log.Info("consuming", "queue", queue.ActivityQueueName, "log_dir", logDir)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
