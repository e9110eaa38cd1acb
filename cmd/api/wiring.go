package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/infrastructure/brevo"
	"github.com/lumichat/otp-api/internal/infrastructure/dynamo"
	"github.com/lumichat/otp-api/internal/infrastructure/metrics"
	"github.com/lumichat/otp-api/internal/infrastructure/mongo"
	"github.com/lumichat/otp-api/internal/infrastructure/postgres"
	"github.com/lumichat/otp-api/internal/infrastructure/redis"
	"github.com/lumichat/otp-api/internal/infrastructure/sendgrid"
	"github.com/lumichat/otp-api/internal/infrastructure/smtp"
	"github.com/lumichat/otp-api/internal/infrastructure/sns"
	transporthttp "github.com/lumichat/otp-api/internal/transport/http"
	"github.com/lumichat/otp-api/internal/transport/http/handler"
)

// buildDeps connects the configured backends. The returned func releases them.
func buildDeps(ctx context.Context, cfg *config.Config) (*transporthttp.Deps, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*transporthttp.Deps, func(), error) {
		closeAll()
		return nil, func() {}, err
	}

	deps := &transporthttp.Deps{
		Metrics: metrics.New(),
		Checks:  map[string]handler.Check{},
	}

	var dynamoClient dynamo.API
	needDynamo := cfg.UserStore == "dynamo" || (cfg.Strict() && cfg.OTPStore == "dynamo")
	if needDynamo {
		c, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		dynamoClient = c
		dynamo.Bootstrap(ctx, c, cfg.DynamoTables, cfg.Strict() && cfg.OTPStore == "dynamo")
	}

	switch cfg.UserStore {
	case "dynamo":
		deps.UserStore = dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	case "postgres":
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			return fail(err)
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, pool.Close)
		deps.Checks["postgres"] = pool.Ping
		deps.UserStore = postgres.NewUserRepo(pool)
	case "mongo":
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		coll, err := mongo.Users(ctx, client, cfg.MongoDatabase)
		if err != nil {
			return fail(err)
		}
		deps.Checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		deps.UserStore = mongo.NewUserRepo(coll)
	default:
		return fail(fmt.Errorf("unknown USER_STORE %q", cfg.UserStore))
	}

	if cfg.Strict() {
		switch cfg.OTPStore {
		case "dynamo":
			deps.CodeStore = dynamo.NewOTPCodeRepo(dynamoClient, cfg.DynamoTables.OTPCodes)
		case "redis":
			client, err := redis.NewClient(ctx, cfg)
			if err != nil {
				return fail(err)
			}
			closers = append(closers, func() { _ = client.Close() })
			deps.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			deps.CodeStore = redis.NewOTPCodeStore(client)
		default:
			return fail(fmt.Errorf("unknown OTP_STORE %q", cfg.OTPStore))
		}
	}

	if m := newMailer(cfg); m != nil {
		deps.Mailer = m
	} else {
		slog.Warn("email provider not configured, codes will not be emailed", "provider", cfg.EmailProvider)
	}

	if cfg.SNSTopicARN != "" {
		client, err := sns.NewClient(ctx, cfg)
		if err != nil {
			return fail(err)
		}
		deps.Events = sns.NewPublisher(client, cfg.SNSTopicARN)
	}

	return deps, closeAll, nil
}

// newMailer returns the configured provider, or nil when its credentials or the
// sender address are missing.
func newMailer(cfg *config.Config) transporthttp.Mailer {
	if cfg.SenderEmail == "" {
		return nil
	}
	switch cfg.EmailProvider {
	case "brevo":
		if cfg.BrevoAPIKey != "" {
			return brevo.NewClient(cfg)
		}
	case "sendgrid":
		if cfg.SendGridAPIKey != "" {
			return sendgrid.NewClient(cfg)
		}
	case "smtp":
		if cfg.SMTPHost != "" {
			return smtp.NewMailer(cfg)
		}
	}
	return nil
}
