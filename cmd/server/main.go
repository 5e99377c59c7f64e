package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/taleforge/internal/common/clock"
	"github.com/KirkDiggler/taleforge/internal/common/joincode"
	"github.com/KirkDiggler/taleforge/internal/common/uuid"
	"github.com/KirkDiggler/taleforge/internal/config"
	"github.com/KirkDiggler/taleforge/internal/dice"
	"github.com/KirkDiggler/taleforge/internal/encounter"
	"github.com/KirkDiggler/taleforge/internal/handlers/api"
	"github.com/KirkDiggler/taleforge/internal/handlers/discord"
	"github.com/KirkDiggler/taleforge/internal/logging"
	"github.com/KirkDiggler/taleforge/internal/repositories/character"
	"github.com/KirkDiggler/taleforge/internal/repositories/combat"
	"github.com/KirkDiggler/taleforge/internal/repositories/events"
	"github.com/KirkDiggler/taleforge/internal/repositories/session"
	"github.com/KirkDiggler/taleforge/internal/repositories/story"
	"github.com/KirkDiggler/taleforge/internal/security"
	gameService "github.com/KirkDiggler/taleforge/internal/services/game"
	"github.com/KirkDiggler/taleforge/internal/services/messaging"
	"github.com/KirkDiggler/taleforge/internal/services/scheduler"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr()).Msg("Failed to connect to Redis")
	}

	// Initialize repositories
	sessionRepo, err := session.NewRedis(&session.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create session repository")
	}

	combatRepo, err := combat.NewRedis(&combat.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create combat repository")
	}

	characterRepo, err := character.NewRedis(&character.Config{RedisClient: redisClient})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create character repository")
	}

	var eventRepo events.Repository
	switch cfg.Events.Backend {
	case config.EventBackendSQLite:
		sqliteRepo, err := events.NewSQLite(&events.SQLiteConfig{Path: cfg.Events.SQLitePath})
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Events.SQLitePath).Msg("Failed to open event log")
		}
		defer sqliteRepo.Close()
		eventRepo = sqliteRepo
	default:
		eventRepo, err = events.NewRedis(&events.Config{RedisClient: redisClient})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create event log")
		}
	}

	storyProvider, err := story.NewFile(&story.FileConfig{Directory: cfg.Stories.Dir})
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Stories.Dir).Msg("Failed to load stories")
	}

	// The announcer is optional and must exist before the service it listens to
	var bot *discord.Bot
	var narrator messaging.Service
	var notifier gameService.Notifier
	if cfg.Discord.Token != "" {
		narrator, err = messaging.NewService(&messaging.ServiceConfig{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create messaging service")
		}

		bot, err = discord.New(&discord.Config{
			Token:            cfg.Discord.Token,
			ChannelID:        cfg.Discord.ChannelID,
			ApplicationID:    cfg.Discord.ApplicationID,
			GuildID:          cfg.Discord.GuildID,
			MessagingService: narrator,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Discord bot")
		}
		notifier = bot
	}

	gameSvc, err := gameService.New(&gameService.Config{
		DefaultMaxPlayers:  cfg.Game.DefaultMaxPlayers,
		OfflineThreshold:   cfg.Game.OfflineThreshold,
		SkipTurnHeal:       cfg.Game.SkipTurnHeal,
		UpdateRetention:    cfg.Events.UpdateRetention,
		TimelineRetention:  cfg.Events.TimelineRetention,
		SessionRepo:        sessionRepo,
		CombatRepo:         combatRepo,
		EventRepo:          eventRepo,
		CharacterRepo:      characterRepo,
		StoryProvider:      storyProvider,
		EncounterGenerator: encounter.New(),
		DiceRoller:         dice.New(&dice.Config{}),
		Clock:              clock.New(),
		UUIDGenerator:      uuid.New(),
		JoinCodeGenerator:  joincode.New(),
		Notifier:           notifier,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game service")
	}

	if bot != nil {
		bot.AddCommand(discord.NewTaleCommand(gameSvc, narrator))
		if err := bot.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start Discord bot")
		}
		defer func() {
			if err := bot.Stop(); err != nil {
				log.Error().Err(err).Msg("Error stopping Discord bot")
			}
		}()
	}

	sweeps, err := scheduler.New(&scheduler.Config{
		Sweeper:          gameSvc,
		OfflineThreshold: cfg.Game.OfflineThreshold,
		OfflineInterval:  cfg.Game.OfflineSweepInterval,
		VotingInterval:   cfg.Game.VotingSweepInterval,
		PurgeInterval:    cfg.Events.PurgeInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}

	jwtManager, err := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT manager")
	}

	router, err := api.NewRouter(&api.Config{
		Service:        gameSvc,
		TokenValidator: jwtManager,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create router")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		sweeps.Run(ctx)
	}()

	go func() {
		log.Info().Str("addr", server.Addr).Str("events", cfg.Events.Backend).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-schedulerDone

	log.Info().Msg("Server exited")
}
