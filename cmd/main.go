package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"project_healthbot/internal/config"
	"project_healthbot/internal/entities"
	"project_healthbot/internal/infrastructure"
	"project_healthbot/internal/interfaces"
	httpapi "project_healthbot/internal/interfaces/http"
	"project_healthbot/internal/logging"
	"project_healthbot/internal/repository"
	"project_healthbot/internal/usecases"
)

const (
	languageSlotTTL = 24 * time.Hour
	shutdownGrace   = 15 * time.Second
)

type stores struct {
	subscribers interfaces.SubscriberStore
	broadcasts  interfaces.BroadcastLog
	users       interfaces.UserStore
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logging.Configure(cfg.Debug, cfg.LogToFile, cfg.LogDir, cfg.LogMaxSizeMB); err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logging.Close()
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer db.close()

	metrics := infrastructure.NewMetricsCollector()
	pool := infrastructure.NewWorkerPool(cfg.Workers, cfg.QueueSize, cfg.TaskTimeout, metrics)

	faq, err := usecases.NewDefaultFAQMatcher()
	if err != nil {
		log.Fatalf("faq table: %v", err)
	}

	var ai interfaces.AIClient
	if cfg.AIConfigured() {
		ai = infrastructure.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.HTTPTimeout)
	} else {
		log.Warn("GOOGLE_API_KEY not set, AI stage disabled")
	}
	nlu := infrastructure.NewRasaClient(cfg.RasaBaseURL, cfg.HTTPTimeout)
	chain := usecases.NewAnswerChain(faq, ai, nlu, cfg.HTTPTimeout, metrics)

	telegram := infrastructure.NewTelegramClient(cfg.TelegramBotToken, cfg.HTTPTimeout)
	if !telegram.Configured() {
		log.Warn("TELEGRAM_BOT_TOKEN not set, telegram sends will be skipped")
	}

	var whatsapp interfaces.Messenger
	var device *infrastructure.WhatsAppDeviceClient
	if cfg.WhatsAppMode == config.WhatsAppModeDevice {
		device, err = infrastructure.NewWhatsAppDeviceClient(ctx, cfg.WhatsAppDeviceStore)
		if err != nil {
			log.Fatalf("whatsapp device: %v", err)
		}
		defer device.Disconnect()
		whatsapp = device
	} else {
		cloud := infrastructure.NewWhatsAppCloudClient(cfg.WhatsAppCloudToken, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppAPIVersion, cfg.HTTPTimeout)
		if !cloud.Configured() {
			log.Warn("WhatsApp Cloud credentials not set, whatsapp sends will be skipped")
		}
		whatsapp = cloud
	}

	dispatcher := usecases.NewChannelDispatcher(whatsapp, telegram, metrics)
	engine := usecases.NewBroadcastEngine(db.subscribers, db.broadcasts, dispatcher, cfg.BroadcastConcurrency, metrics)

	sessions := infrastructure.NewSessionManager(languageSlotTTL)
	senderLimiter := infrastructure.NewMessageRateLimiter(1, 5)
	askLimiter := infrastructure.NewMessageRateLimiter(2, 10)
	go senderLimiter.Run(ctx)
	go askLimiter.Run(ctx)
	go pruneSessions(ctx, sessions)

	service := usecases.NewMessageService(chain, dispatcher, faq, sessions, senderLimiter)
	if telegram.Configured() {
		service.SetMenuSender(entities.ChannelTelegram, telegram)
	}
	ingest := httpapi.NewHandler(service, pool, metrics)

	var auth *usecases.AuthUsecase
	if cfg.AdminAuthEnabled() {
		auth = usecases.NewAuthUsecase(db.users, cfg.JWTSecret)
		if err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.WithError(err).Warn("admin account not ensured")
		}
	}

	tgInfo := httpapi.TelegramInfo{Configured: telegram.Configured()}
	if telegram.Configured() {
		tgInfo.Callbacks = telegram
	}
	if cfg.TelegramPolling && telegram.Configured() {
		poller, err := infrastructure.NewTelegramPoller(cfg.TelegramBotToken)
		if err != nil {
			log.WithError(err).Error("telegram polling disabled")
		} else {
			tgInfo.Polling = true
			tgInfo.BotName = poller.BotName
			go poller.Run(ctx, func(raw []byte) { ingest.Enqueue(entities.ChannelTelegram, raw) })
		}
	}

	deps := httpapi.RouterDeps{
		Service:             service,
		Engine:              engine,
		Auth:                auth,
		Queue:               pool,
		Metrics:             metrics,
		MetricsHandler:      metrics.Handler(),
		AskLimiter:          askLimiter,
		Middleware:          httpapi.NewMiddleware(cfg.JWTSecret),
		WhatsAppVerifyToken: cfg.WhatsAppVerifyToken,
		Telegram:            tgInfo,
	}
	if device != nil {
		device.OnMessage(func(msg entities.Message) { ingest.EnqueueMessage(msg) })
		if err := device.Connect(ctx); err != nil {
			log.WithError(err).Error("whatsapp device not connected")
		}
		deps.Device = device
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	httpapi.SetupRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("healthbot listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("worker pool shutdown")
	}
}

// openStores picks Postgres when DATABASE_URL is set and SQLite otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.UsePostgres() {
		pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("using postgres store")
		return &stores{
			subscribers: repository.NewSubscriberRepository(pg.Pool),
			broadcasts:  repository.NewBroadcastRepository(pg.Pool),
			users:       repository.NewUserRepository(pg.Pool),
			close:       pg.Close,
		}, nil
	}

	db, err := infrastructure.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.WithField("path", cfg.SQLitePath).Info("using sqlite store")
	store := repository.NewSQLiteStore(db)
	return &stores{
		subscribers: store,
		broadcasts:  store,
		users:       store,
		close:       func() { _ = db.Close() },
	}, nil
}

func pruneSessions(ctx context.Context, sessions *infrastructure.SessionManager) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(); n > 0 {
				log.WithField("expired", n).Debug("language slots pruned")
			}
		}
	}
}
