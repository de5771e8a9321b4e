package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/config"
	"github.com/arnold/lifesync-api/internal/handlers"
	"github.com/arnold/lifesync-api/internal/middleware"
	"github.com/arnold/lifesync-api/internal/routes"
	"github.com/arnold/lifesync-api/internal/services"
	"github.com/arnold/lifesync-api/internal/tracker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
)

const (
	tickInterval    = time.Minute
	shutdownTimeout = 10 * time.Second
)

func serveCmd() *cobra.Command {
	var port, bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the LifeSync HTTP API.

Examples:
  lifesync serve
  lifesync serve --port 9090 --bind 0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(func(cfg *config.Config) {
				if port != "" {
					cfg.Port = port
				}
				if bind != "" {
					cfg.BindAddr = bind
				}
			})
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides BIND_ADDR)")
	return cmd
}

func runServe(adjust func(*config.Config)) error {
	cfg, log, store, err := bootstrap(adjust)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	loc, _ := cfg.Location()
	clk := clock.NewVirtual(clock.System{Loc: loc})

	settings := services.NewSettings(store, clk, log)
	settings.Load()

	services.InitPush(cfg.FCMServiceAccount, log)

	trk := tracker.New(store, clk, log)
	trk.OnDayStart(func(alerts []tracker.Alert) {
		log.Infow("New day started", "alerts", len(alerts))
		handlers.WS.Broadcast(handlers.WSEvent{Type: handlers.EventDayStarted, Data: alerts})
		services.Push.NotifyAlerts(settings.DeviceToken(), settings.Preferences().Language, alerts)
	})
	trk.Load()

	gen := services.NewGemini(cfg.GeminiAPIKey)
	coach := services.NewCoach(store, gen, clk, log)
	coach.Load()

	auth, err := middleware.NewAuth(cfg.JWTSecret, cfg.OwnerPassphrase)
	if err != nil {
		return err
	}

	handlers.Configure(handlers.Deps{
		Tracker:  trk,
		Store:    store,
		Settings: settings,
		Coach:    coach,
		Insights: services.NewInsightService(gen, log),
		Drafter:  services.NewDrafter(gen, log),
		Auth:     auth,
		Log:      log,

		UploadDir: cfg.UploadDir,
	})

	// Apply any rollover missed while the server was down.
	trk.Tick()

	app := fiber.New(fiber.Config{
		AppName:               "LifeSync API",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Static(handlers.UploadsPath, cfg.UploadDir)
	routes.Setup(app, auth)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Roll the day over even when no requests arrive.
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				trk.Tick()
			}
		}
	}()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorw("Shutdown failed", "error", err)
		}
	}()

	log.Infow("Server starting",
		"addr", cfg.Addr(),
		"env", cfg.Env,
		"auth", auth.Enabled(),
		"push", services.Push.Enabled(),
	)
	return app.Listen(cfg.Addr())
}
