package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/config"
)

// Whitelist restricts the bot to configured group chats. Users seen in an
// allowed group may also use the bot in private chat.
type Whitelist struct {
	cfg     *config.Config
	private sync.Map // int64 -> struct{}
}

// NewWhitelist creates a whitelist over cfg.
func NewWhitelist(cfg *config.Config) *Whitelist {
	return &Whitelist{cfg: cfg}
}

// AllowPrivate marks a user as allowed to use private chat.
func (w *Whitelist) AllowPrivate(userID int64) {
	w.private.Store(userID, struct{}{})
}

// PrivateAllowed checks if a user is allowed to use private chat.
func (w *Whitelist) PrivateAllowed(userID int64) bool {
	_, ok := w.private.Load(userID)
	return ok
}

// Allowed decides whether an update from chat and sender is handled.
func (w *Whitelist) Allowed(chat *tele.Chat, sender *tele.User) bool {
	if chat == nil || sender == nil {
		return false
	}

	if chat.Type == tele.ChatPrivate {
		return len(w.cfg.Whitelist.Chats) == 0 || w.PrivateAllowed(sender.ID)
	}

	if !w.cfg.IsChatAllowed(chat.ID) {
		return false
	}
	w.AllowPrivate(sender.ID)
	return true
}

// Middleware drops updates that Allowed rejects.
func (w *Whitelist) Middleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !w.Allowed(c.Chat(), c.Sender()) {
				evt := log.Debug()
				if chat := c.Chat(); chat != nil {
					evt = evt.Int64("chat_id", chat.ID)
				}
				evt.Msg("Ignoring update from non-whitelisted chat")
				return nil
			}
			return next(c)
		}
	}
}

// AdminMiddleware creates a middleware that checks if the user is an admin.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ Admins only.")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware creates a middleware that logs all incoming messages.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			chat := c.Chat()

			logEvent := log.Debug()
			if sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			logEvent.
				Str("text", c.Text()).
				Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware creates a middleware that recovers from panics.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("text", c.Text()).
						Msg("Recovered from panic in handler")
					err = c.Reply("❌ Something went wrong, please try again.")
				}
			}()
			return next(c)
		}
	}
}
