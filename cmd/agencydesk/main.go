package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/amestudio/agencydesk/internal/ai"
	"github.com/amestudio/agencydesk/internal/alert"
	"github.com/amestudio/agencydesk/internal/calendar"
	"github.com/amestudio/agencydesk/internal/credential"
	"github.com/amestudio/agencydesk/internal/httpapi"
	"github.com/amestudio/agencydesk/internal/logging"
	"github.com/amestudio/agencydesk/internal/model"
	"github.com/amestudio/agencydesk/internal/notify"
	"github.com/amestudio/agencydesk/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		logging.Init("agencydesk", "info").WithError(err).Fatal("failed to load config")
	}

	log := logging.Init("agencydesk", cfg.LogLevel)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	center := notify.NewCenter(db, log)

	// The assistant is optional: without an API key the chat and
	// content-suggestion endpoints report "not configured".
	var assistant *ai.Assistant
	apiKey, err := credential.Get(credential.KeyAnthropicAPIKey)
	if err != nil {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey != "" {
		assistant = ai.New(apiKey, db, cfg.AI.Model, cfg.AI.MaxTokens)
	} else {
		log.Warn("no Anthropic API key found; assistant disabled")
	}

	calClient := calendar.NewClient(func() (string, error) {
		return credential.Get(credential.KeyCalendarToken)
	})

	scheduler := alert.NewScheduler(db, calClient, log, alert.Config{
		CalendarID:    cfg.Calendar.CalendarID,
		TimeZone:      cfg.Calendar.TimeZone,
		EventDuration: time.Duration(cfg.Calendar.EventDurationMin) * time.Minute,
		SweepInterval: time.Duration(cfg.Alerts.SweepIntervalSec) * time.Second,
	})
	scheduler.Start()
	defer scheduler.Stop()

	server := httpapi.NewServer(db, center, assistant, calClient, cfg.Calendar, cfg.Digest, log)

	log.WithField("addr", cfg.Server.Addr).Info("agencydesk starting")
	if err := http.ListenAndServe(cfg.Server.Addr, server.Handler()); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
