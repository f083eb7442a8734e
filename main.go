package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clan-portal/config"
	"clan-portal/events"
	"clan-portal/handlers"
	"clan-portal/middleware"
	"clan-portal/models"
	"clan-portal/services"
	"clan-portal/storage"
	"clan-portal/store"
	"clan-portal/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, dotenv, cfgErr := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if !dotenv {
		logger.Info("no .env file found, reading environment variables directly")
	}
	if cfgErr != nil {
		logger.Error("invalid configuration", "error", cfgErr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeBackend()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	bus := events.NewBus()

	clanStore := store.New(backend, "clans", "clan",
		store.WithBus[*models.Clan](bus, events.ClanChanged))
	tournamentStore := store.New(backend, "tournaments", "tournament",
		store.WithBus[*models.Tournament](bus, events.TournamentChanged))
	registrationStore := store.New(backend, "tournamentRegistrations", "registration",
		store.WithBus[*models.Registration](bus, events.TournamentChanged))
	profileStore := store.New(backend, "userProfiles", "profile",
		store.WithBus[*models.UserProfile](bus, events.ProfileChanged),
		store.WithCodec[*models.UserProfile](store.KeyedCodec[*models.UserProfile]{}))
	chatStore := store.New(backend, "clanChat", "chat",
		store.WithBus[*models.ChatMessage](bus, events.ChatMessage),
		store.WithCapacity[*models.ChatMessage](models.MaxChatMessages))

	loadStore(logger, clanStore, services.SeedClans())
	loadStore(logger, tournamentStore, services.SeedTournaments(time.Now()))
	loadStore(logger, registrationStore, nil)
	loadStore(logger, profileStore, nil)
	loadStore(logger, chatStore, nil)

	clanService := services.NewClanService(clanStore)
	tournamentService := services.NewTournamentService(tournamentStore, registrationStore)
	profileService := services.NewProfileService(profileStore)
	chatService := services.NewChatService(chatStore)
	presenceService := services.NewPresenceService(backend, bus)
	feed := services.NewActivityFeed(bus)
	counters := services.NewLiveCounters(services.DefaultOnlineNow, clanService.TotalMembers())
	voice := services.NewVoiceChannels(bus)

	if cfg.SimulationEnabled {
		sched, err := startSimulation(ctx, cfg, logger, bus, workers.Deps{
			Clans:       clanService,
			Tournaments: tournamentService,
			Profiles:    profileService,
			Presence:    presenceService,
			Chat:        chatService,
			Feed:        feed,
			Counters:    counters,
			Voice:       voice,
		})
		if err != nil {
			logger.Error("failed to start simulation", "error", err)
			os.Exit(1)
		}
		defer sched.Shutdown()
	}

	app := handlers.NewApp()
	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-User-ID, X-User-Name, X-User-Email, X-User-Platform, Cache-Control",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "storage": cfg.StorageDriver})
	})

	app.Use(middleware.GatewayAuthMiddleware(cfg.ServiceToken))
	app.Use(middleware.UserContextMiddleware())

	handlers.SetupClanRoutes(app, clanService, profileService)
	handlers.SetupTournamentRoutes(app, tournamentService, profileService)
	handlers.SetupProfileRoutes(app, profileService)
	handlers.SetupCommunityRoutes(app, handlers.Community{
		Chat:     chatService,
		Presence: presenceService,
		Feed:     feed,
		Counters: counters,
		Voice:    voice,
		Clans:    clanService,
	})
	handlers.SetupEventRoutes(app, bus, presenceService)

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		app.Use("/", filesystem.New(filesystem.Config{
			Root:   http.Dir(cfg.StaticDir),
			Index:  "index.html",
			MaxAge: 3600,
		}))
		logger.Info("serving portal frontend", "dir", cfg.StaticDir)
	}

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	logger.Info("server running",
		"addr", cfg.Addr(),
		"simulation", cfg.SimulationEnabled,
		"origins", cfg.AllowedOrigins,
		"gateway_auth", cfg.ServiceToken != "",
	)

	<-ctx.Done()
	logger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("server shutdown", "error", err)
	}
}

// openBackend returns the configured storage backend and its cleanup func.
func openBackend(ctx context.Context, cfg config.Config) (storage.Backend, func(), error) {
	noop := func() {}
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemoryBackend(), noop, nil
	case config.DriverFile:
		b, err := storage.NewFileBackend(cfg.DataDir)
		return b, noop, err
	case config.DriverPostgres:
		b, err := storage.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return b, func() {
			if err := b.Close(); err != nil {
				slog.Warn("closing database", "error", err)
			}
		}, nil
	case config.DriverR2:
		client, err := storage.NewR2Client(ctx, storage.R2Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			AccessKeySecret: cfg.R2.AccessKeySecret,
			Bucket:          cfg.R2.Bucket,
			Prefix:          cfg.R2.Prefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return storage.NewR2Backend(client, cfg.R2.Bucket, cfg.R2.Prefix), noop, nil
	case config.DriverRedis:
		rdb, err := storage.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return storage.NewRedisBackend(rdb, cfg.RedisPrefix), func() {
			if err := rdb.Close(); err != nil {
				slog.Warn("closing redis", "error", err)
			}
		}, nil
	}
	return nil, noop, errors.New("unknown storage driver " + cfg.StorageDriver)
}

// loadStore restores a collection. Corrupt data is logged and replaced by the
// seed; an unreadable backend stops the process.
func loadStore[T store.Entity](logger *slog.Logger, s *store.Store[T], seed []T) {
	err := s.Load(seed)
	if err == nil {
		logger.Debug("collection loaded", "key", s.Key(), "count", s.Len())
		return
	}
	var pe *store.PersistenceError
	if errors.As(err, &pe) && pe.Op == "decode" {
		logger.Warn("corrupt collection replaced by defaults", "key", s.Key(), "error", err)
		return
	}
	logger.Error("failed to load collection", "key", s.Key(), "error", err)
	os.Exit(1)
}

func startSimulation(ctx context.Context, cfg config.Config, logger *slog.Logger, bus *events.Bus, deps workers.Deps) (*workers.Scheduler, error) {
	seed := rand.Uint64()
	if cfg.SimulationSeed != nil {
		seed = *cfg.SimulationSeed
	}

	deps.Bus = bus
	deps.Log = logger.With("component", "simulation")
	sim := workers.NewSimulation(deps, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))

	sched, err := workers.NewScheduler(logger.With("component", "scheduler"))
	if err != nil {
		return nil, err
	}
	if err := sched.Register(sim.Tasks()...); err != nil {
		return nil, err
	}
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	logger.Info("simulation running", "seed", seed, "tasks", sched.Names())
	return sched, nil
}
