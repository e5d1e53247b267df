package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dominusativos/captazap/internal/api/router"
	"github.com/dominusativos/captazap/internal/campaign"
	appconfig "github.com/dominusativos/captazap/internal/config"
	"github.com/dominusativos/captazap/internal/conversation"
	"github.com/dominusativos/captazap/internal/correlation"
	"github.com/dominusativos/captazap/internal/http/handlers"
	"github.com/dominusativos/captazap/internal/leads"
	"github.com/dominusativos/captazap/internal/messaging"
	"github.com/dominusativos/captazap/internal/notify"
	"github.com/dominusativos/captazap/internal/observability/metrics"
	"github.com/dominusativos/captazap/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting captazap API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	campaignMetrics := metrics.NewCampaignMetrics(promReg)

	var messenger conversation.Messenger
	var sender campaign.TemplateSender
	if cfg.MetaToken != "" && cfg.PhoneNumberID != "" {
		client, err := messaging.NewMetaClient(messaging.Config{
			BaseURL:       cfg.GraphBaseURL,
			Token:         cfg.MetaToken,
			PhoneNumberID: cfg.PhoneNumberID,
			Logger:        logger,
		})
		if err != nil {
			logger.Error("failed to configure Meta client", "error", err)
			os.Exit(1)
		}
		messenger = client
		sender = client
	} else {
		logger.Warn("META_TOKEN or PHONE_NUMBER_ID missing, outbound messaging disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	correlations := correlation.NewStore(cfg.MonitorWindow, logger).
		WithSweepInterval(cfg.SweepInterval)
	go correlations.Run(ctx)

	registry := leads.NewRegistry()
	var records []*leads.Record
	if cfg.ContactsFile != "" {
		loaded, err := leads.LoadContacts(cfg.ContactsFile)
		if err != nil {
			logger.Warn("contact list not loaded", "path", cfg.ContactsFile, "error", err)
		} else {
			records = loaded
			for _, rec := range records {
				registry.Register(rec)
			}
			logger.Info("contact list loaded", "path", cfg.ContactsFile, "leads", len(records))
		}
	}

	notifier := notify.NewService(messenger, cfg.AdminPhone, logger, campaignMetrics)

	engine := conversation.NewEngine(conversation.Config{
		Messenger:    messenger,
		Notifier:     notifier,
		Correlations: correlations,
		Registry:     registry,
		Script:       buildScript(cfg),
		Logger:       logger,
		Metrics:      campaignMetrics,
	})

	if sender != nil && len(records) > 0 {
		scheduler := campaign.NewScheduler(campaign.Config{
			Sender:   sender,
			Engine:   engine,
			Registry: registry,
			Template: messaging.Template{
				Name:     cfg.TemplateName,
				Language: cfg.TemplateLang,
			},
			DelayMin: cfg.SendDelayMin,
			DelayMax: cfg.SendDelayMax,
			Logger:   logger,
			Metrics:  campaignMetrics,
		})
		go scheduler.Run(ctx, records)
	} else {
		logger.Info("campaign run skipped", "leads", len(records))
	}

	r := router.New(&router.Config{
		Logger: logger,
		Webhook: handlers.NewWebhookHandler(handlers.WebhookConfig{
			Ingester:    engine,
			VerifyToken: cfg.VerifyToken,
			Logger:      logger,
			Metrics:     campaignMetrics,
		}),
		Health:         handlers.NewHealthHandler(correlations, logger),
		MetricsHandler: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildScript starts from the stock texts and applies any overrides set
// through the environment.
func buildScript(cfg *appconfig.Config) conversation.Script {
	script := conversation.DefaultScript()
	if cfg.ScriptIntroduction != "" {
		script.Introduction = cfg.ScriptIntroduction
	}
	if cfg.ScriptClarification != "" {
		script.Clarification = cfg.ScriptClarification
	}
	if cfg.ScriptAcceptance != "" {
		script.Acceptance = cfg.ScriptAcceptance
	}
	if cfg.ScriptDetailsRequest != "" {
		script.DetailsRequest = cfg.ScriptDetailsRequest
	}
	if cfg.ScriptDetailsRepeat != "" {
		script.DetailsRepeat = cfg.ScriptDetailsRepeat
	}
	if cfg.ScriptDetailsThanks != "" {
		script.DetailsThanks = cfg.ScriptDetailsThanks
	}
	if cfg.ScriptClosing != "" {
		script.Closing = cfg.ScriptClosing
	}
	if cfg.ScriptAlreadyRegistered != "" {
		script.AlreadyRegistered = cfg.ScriptAlreadyRegistered
	}
	return script
}
