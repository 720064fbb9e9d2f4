// Package main is the entry point for the casino bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/bot"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/config"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/baccarat"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/blackjack"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/connect4"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/hilo"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/keno"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/limbo"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/mines"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/handler"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/ledger"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/db"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/repository"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session/snapshot"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/timeout"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	txRepo := repository.NewTransactionRepository(dbPool.Pool)
	gameRepo := repository.NewGameRepository(dbPool.Pool)
	houseRepo := repository.NewHouseRepository(dbPool.Pool)

	// Initialize services
	minBet, maxBet := cfg.Games.Limits()
	accountService := service.NewAccountService(userRepo, txRepo, service.AccountConfig{
		InitialBalance: cfg.Ledger.Initial(),
		BonusAmount:    decimal.NewFromFloat(cfg.Bonus.Amount).Round(2),
		BonusCooldown:  time.Duration(cfg.Bonus.CooldownHours) * time.Hour,
		MinBet:         minBet,
		MaxBet:         maxBet,
	})
	transferService := service.NewTransferService(userRepo, txRepo)
	rankingService := service.NewRankingService(userRepo, gameRepo)

	// Register games
	gameRegistry := game.NewRegistry()
	factories := map[game.Kind]game.Factory{
		game.KindMines:     mines.Factory,
		game.KindKeno:      keno.Factory,
		game.KindLimbo:     limbo.Factory(&limbo.Config{HouseEdge: cfg.Games.Limbo.HouseEdge}),
		game.KindHiLo:      hilo.Factory(&hilo.Config{HouseEdge: cfg.Games.HiLo.HouseEdge}),
		game.KindConnect4:  connect4.Factory,
		game.KindBaccarat:  baccarat.Factory,
		game.KindBlackjack: blackjack.Factory,
	}
	for kind, f := range factories {
		if err := gameRegistry.Register(kind, f); err != nil {
			log.Fatal().Err(err).Str("game", string(kind)).Msg("Failed to register game")
		}
	}
	log.Info().
		Int("game_count", gameRegistry.Count()).
		Msg("Games registered")

	// Initialize bot
	telegramBot, err := bot.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	notifier := telegramBot.Notifier()

	// Session service
	opts := []session.Option{}
	if cfg.Redis.Enabled {
		store, err := snapshot.NewRedis(ctx, snapshot.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer store.Close()
		opts = append(opts, session.WithSnapshots(store))
	}

	sessions := session.NewService(session.Config{
		Timeout:          cfg.Games.Timeout(),
		Timeouts:         cfg.Games.Timeouts(),
		AutoPlayInterval: cfg.Games.AutoPlayInterval,
	}, gameRegistry, ledger.NewPostgres(userRepo, txRepo, gameRepo, houseRepo), notifier, opts...)

	if n, err := sessions.Recover(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to recover sessions")
	} else if n > 0 {
		log.Info().Int("sessions", n).Msg("Refunded sessions from previous run")
	}

	challengeTTL := time.Duration(cfg.Games.Connect4.ChallengeTimeoutSeconds) * time.Second
	challenges := handler.NewChallengeBook(sessions, timeout.New(challengeTTL), notifier)

	telegramBot.Register(&bot.Dependencies{
		AccountService:  accountService,
		TransferService: transferService,
		RankingService:  rankingService,
		Sessions:        sessions,
		Challenges:      challenges,
		UserLock:        lock.New[int64](),
	})

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown
	telegramBot.Stop()
	challenges.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	sessions.Shutdown(shutdownCtx)

	log.Info().Msg("Bot stopped gracefully")
}
