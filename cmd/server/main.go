package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/checkinblaze/checkinblaze/core"
	"github.com/checkinblaze/checkinblaze/directory"
	"github.com/checkinblaze/checkinblaze/infrastructure/communication"
	"github.com/checkinblaze/checkinblaze/infrastructure/devops"
	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/store"
	"github.com/checkinblaze/checkinblaze/web/handlers"
	"github.com/checkinblaze/checkinblaze/web/middlewares"
)

func main() {
	_ = godotenv.Load()
	log := logging.GetLogger()

	ctx := context.Background()
	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.Auth.JWTSecret)
	if err != nil {
		log.Fatalf("decode jwt secret: %v", err)
	}

	client, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if err := client.EnsureTables(core.Tables()...); err != nil {
		log.Fatalf("migrate tables: %v", err)
	}

	audit := core.NewAuditService(client.Table(core.TableAuditLogs), log)
	checkins := core.NewCheckInService(client.Table(core.TableCheckInRecords), audit, log)
	headcount := core.NewHeadcountService(client.Table(core.TableHeadcountCampaigns), audit, log)
	prefs := core.NewPreferenceService(client.Table(core.TableUserPreferences), audit, log)

	var dir *directory.Client
	if cfg.Directory.BaseURL != "" {
		dir = directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Token)
	}

	var notifier *communication.Service
	if cfg.Slack.Token != "" || cfg.Email.Sender != "" {
		var slackClient *communication.Slack
		if cfg.Slack.Token != "" {
			slackClient = communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
				InfoChannelID:  cfg.Slack.InfoChannelID,
				ErrorChannelID: cfg.Slack.ErrorChannelID,
			})
		}
		var email *communication.EmailSender
		if cfg.Email.Sender != "" {
			email, err = communication.NewEmailSender(ctx, cfg.Email.Sender)
			if err != nil {
				log.Fatalf("init email sender: %v", err)
			}
		}
		notifier = communication.NewService(slackClient, email, log)
	}

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		handlers.RegisterCheckIns(protected, checkins, headcount, dir, log)
		handlers.RegisterHeadcount(protected, headcount, checkins, dir, notifier, log)
		handlers.RegisterPreferences(protected, prefs, log)
		handlers.RegisterAudit(protected, audit, log)
		handlers.RegisterDiagnostics(protected, checkins, log)
	}

	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func openStore(cfg *devops.Config) (*store.Client, error) {
	switch cfg.Database.Driver {
	case "mysql":
		return store.OpenMySQL(cfg.Database.DSN, cfg.Database.MaxConns)
	case "sqlite":
		return store.OpenSQLite(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
