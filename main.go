package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/cvcustomizer/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCompleter(ctx context.Context, cfg Config) (Completer, error) {
	switch cfg.Provider {
	case providerAnthropic:
		return newAnthropicCompleter(cfg.APIKey, cfg.Model), nil
	default:
		return newADKCompleter(ctx, cfg.APIKey, cfg.Model)
	}
}

// newAppConfig connects every integration the configuration names. The
// returned cleanup closes what was opened.
func newAppConfig(ctx context.Context, cfg Config, logger *logrus.Logger) (*AppConfig, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	appConfig := &AppConfig{
		Completer:         completer,
		GenerationTimeout: cfg.GenerationTimeout,
		AllowedOrigin:     cfg.AllowedOrigin,
		RABBITMQUrl:       cfg.RabbitMQUrl,
		Logger:            logger,
	}

	if cfg.DBUrl != "" {
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening db: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })
		appConfig.DB = database.New(db)
	}

	if cfg.R2 != nil {
		awsConfig, err := config.LoadDefaultConfig(ctx,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
			config.WithRegion("auto"),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("error creating aws config: %w", err)
		}
		appConfig.R2 = cfg.R2
		appConfig.AwsConfig = &awsConfig
	}

	if cfg.RabbitMQUrl != "" {
		conn, err := amqp.Dial(cfg.RabbitMQUrl)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		appConfig.RabbitConn = conn
		appConfig.Broker = &amqpBroker{conn: conn}
	}

	logger.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
		"db":       appConfig.DB != nil,
		"r2":       appConfig.R2 != nil,
		"rabbitmq": appConfig.RabbitConn != nil,
	}).Info("app configured")
	return appConfig, cleanup, nil
}
