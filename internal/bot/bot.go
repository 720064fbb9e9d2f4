// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/config"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/handler"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/notify"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot       *tele.Bot
	cfg       *config.Config
	whitelist *Whitelist

	// Handlers
	accountHandler  *handler.AccountHandler
	transferHandler *handler.TransferHandler
	adminHandler    *handler.AdminHandler
	rankingHandler  *handler.RankingHandler
	gameHandler     *handler.GameHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	AccountService  *service.AccountService
	TransferService *service.TransferService
	RankingService  *service.RankingService
	Sessions        *session.Service
	Challenges      *handler.ChallengeBook
	UserLock        *lock.KeyLock[int64]
}

// New creates the Telegram client. Handlers are attached by Register once
// the services that need the bot's Notifier exist.
func New(cfg *config.Config) (*Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler returned an error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		bot:       teleBot,
		cfg:       cfg,
		whitelist: NewWhitelist(cfg),
	}, nil
}

// Notifier returns a Notifier that posts to Telegram chats.
func (b *Bot) Notifier() notify.Notifier {
	return notify.NewTelegram(b.bot)
}

// Register creates the handlers and wires middleware and commands.
func (b *Bot) Register(deps *Dependencies) {
	b.accountHandler = handler.NewAccountHandler(deps.AccountService, deps.RankingService)
	b.transferHandler = handler.NewTransferHandler(deps.AccountService, deps.TransferService, deps.UserLock)
	b.adminHandler = handler.NewAdminHandler(deps.AccountService, deps.Sessions, deps.Challenges, deps.UserLock)
	b.rankingHandler = handler.NewRankingHandler(deps.RankingService)
	b.gameHandler = handler.NewGameHandler(deps.AccountService, deps.Sessions, deps.Challenges)

	b.registerMiddleware()
	b.registerHandlers()
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(b.whitelist.Middleware())
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Account handlers
	b.bot.Handle("/start", b.accountHandler.HandleStart)
	b.bot.Handle("/balance", b.accountHandler.HandleBalance)
	b.bot.Handle("/stats", b.accountHandler.HandleStats)
	b.bot.Handle("/bonus", b.accountHandler.HandleBonus)
	b.bot.Handle("/history", b.accountHandler.HandleHistory)

	b.bot.Handle("/tip", b.transferHandler.HandleTip)
	b.bot.Handle("/leaderboard", b.rankingHandler.HandleLeaderboard)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/clear", b.adminHandler.HandleClear)
	adminGroup.Handle("/addbal", b.adminHandler.HandleAddBalance)
	adminGroup.Handle("/subbal", b.adminHandler.HandleSubBalance)
	adminGroup.Handle("/setbal", b.adminHandler.HandleSetBalance)

	g := b.gameHandler
	b.bot.Handle("/game", g.HandleGame)
	b.bot.Handle("/cashout", g.Action("cashout"))

	// Mines
	b.bot.Handle("/mines", g.HandleMines)
	b.bot.Handle("/reveal", g.HandleReveal)

	// Keno
	b.bot.Handle("/keno", g.HandleKeno)
	b.bot.Handle("/pick", g.HandlePick)
	b.bot.Handle("/clearpicks", g.Action("clear"))
	b.bot.Handle("/draw", g.Action("draw"))
	b.bot.Handle("/auto", g.HandleAuto)
	b.bot.Handle("/stop", g.Action("stop"))

	// Limbo
	b.bot.Handle("/limbo", g.HandleLimbo)
	b.bot.Handle("/target", g.HandleTarget)

	// Hi-Lo
	b.bot.Handle("/hilo", g.HandleHiLo)
	b.bot.Handle("/higher", g.Action("higher"))
	b.bot.Handle("/lower", g.Action("lower"))
	b.bot.Handle("/tie", g.Action("tie"))
	b.bot.Handle("/skip", g.Action("skip"))

	// Blackjack
	b.bot.Handle("/bj", g.HandleBlackjack)
	b.bot.Handle("/hit", g.Action("hit"))
	b.bot.Handle("/stand", g.Action("stand"))
	b.bot.Handle("/double", g.Action("double"))
	b.bot.Handle("/split", g.Action("split"))
	b.bot.Handle("/insurance", g.Action("insurance"))

	// Baccarat
	b.bot.Handle("/baccarat", g.HandleBaccarat)

	// Connect-4
	b.bot.Handle("/c4", g.HandleChallenge)
	b.bot.Handle("/accept", g.HandleAccept)
	b.bot.Handle("/decline", g.HandleDecline)
	b.bot.Handle("/roll", g.HandleRoll)
	b.bot.Handle("/drop", g.HandleDrop)
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
