package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/service"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session"
)

// GameHandler handles game-related commands.
type GameHandler struct {
	accountService *service.AccountService
	sessions       *session.Service
	challenges     *ChallengeBook
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(
	accountService *service.AccountService,
	sessions *session.Service,
	challenges *ChallengeBook,
) *GameHandler {
	return &GameHandler{
		accountService: accountService,
		sessions:       sessions,
		challenges:     challenges,
	}
}

// ensureSender registers the sender and returns them.
func (h *GameHandler) ensureSender(ctx context.Context, c tele.Context) (*tele.User, error) {
	sender := c.Sender()
	if sender == nil {
		return nil, nil
	}
	if _, _, err := h.accountService.EnsureUser(ctx, sender.ID, displayName(sender)); err != nil {
		return nil, err
	}
	return sender, nil
}

// wager parses a bet argument and checks it against the limits and the
// player's balance.
func (h *GameHandler) wager(ctx context.Context, userID int64, arg string) (decimal.Decimal, error) {
	balance, err := h.accountService.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := parseAmount(arg, balance)
	if err != nil {
		return decimal.Zero, err
	}
	if err := h.accountService.ValidateWager(ctx, userID, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// startSolo starts a single-player game for the sender.
func (h *GameHandler) startSolo(c tele.Context, kind game.Kind, betArg string, params map[string]any) (*session.Update, bool) {
	ctx := context.Background()
	sender, err := h.ensureSender(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("Failed to ensure user")
		_ = c.Reply("❌ Operation failed, please try again later.")
		return nil, false
	}
	if sender == nil {
		return nil, false
	}

	amount, err := h.wager(ctx, sender.ID, betArg)
	if err != nil {
		_ = c.Reply(userMessage(err))
		return nil, false
	}

	upd, err := h.sessions.Start(ctx, session.Request{
		Kind:    kind,
		Players: []int64{sender.ID},
		ChatID:  c.Chat().ID,
		Wager:   amount,
		Params:  params,
	})
	if err != nil {
		_ = c.Reply(userMessage(err))
		return nil, false
	}
	return upd, true
}

// act sends one action to the sender's game and replies with the result.
func (h *GameHandler) act(c tele.Context, name string, params map[string]any) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	upd, err := h.sessions.Act(context.Background(), sender.ID, name, params)
	if err != nil {
		return c.Reply(userMessage(err))
	}
	return c.Reply(h.render(upd, sender.ID))
}

// render appends the balance to a finished game's text.
func (h *GameHandler) render(upd *session.Update, userID int64) string {
	if !upd.Resolved {
		return upd.Text
	}
	balance, err := h.accountService.GetBalance(context.Background(), userID)
	if err != nil {
		return upd.Text
	}
	return fmt.Sprintf("%s\n💰 Balance: %s", upd.Text, balance.StringFixed(2))
}

// Action returns a handler that sends a parameterless action.
func (h *GameHandler) Action(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.act(c, name, nil)
	}
}

// HandleMines handles /mines <bet> [mines].
func (h *GameHandler) HandleMines(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /mines <bet> [mines]\nMines: 3, 5, 10, 15, 20 or 24 (default 3)\nExample: /mines 5 10")
	}
	params := map[string]any{}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return c.Reply("❌ Mine count must be a number.")
		}
		params["mines"] = n
	}

	upd, ok := h.startSolo(c, game.KindMines, args[0], params)
	if !ok {
		return nil
	}
	return c.Reply(upd.Text + "\nReveal tiles 1-25 with /reveal <tile>, then /cashout.")
}

// HandleReveal handles /reveal <tile> [tile...]. Tiles are numbered 1-25.
func (h *GameHandler) HandleReveal(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	tiles, err := parseInts(c.Args())
	if err != nil || len(tiles) == 0 {
		return c.Reply("❌ Usage: /reveal <tile 1-25> [more tiles]")
	}

	var last *session.Update
	for _, t := range tiles {
		upd, err := h.sessions.Act(context.Background(), sender.ID, "reveal", map[string]any{"tile": t - 1})
		if err != nil {
			return c.Reply(userMessage(err))
		}
		last = upd
		if upd.Resolved {
			break
		}
	}
	return c.Reply(h.render(last, sender.ID))
}

// HandleKeno handles /keno <bet> [numbers...].
func (h *GameHandler) HandleKeno(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /keno <bet> [numbers 1-40]\nExample: /keno 2 7 13 21")
	}
	picks, err := parseInts(args[1:])
	if err != nil {
		return c.Reply("❌ Picks must be numbers between 1 and 40.")
	}

	upd, ok := h.startSolo(c, game.KindKeno, args[0], map[string]any{"picks": picks})
	if !ok {
		return nil
	}
	return c.Reply(upd.Text + "\n/pick <n> to toggle numbers, /draw to play, /auto <rounds> for auto-play.")
}

// HandlePick handles /pick <number> [number...].
func (h *GameHandler) HandlePick(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	nums, err := parseInts(c.Args())
	if err != nil || len(nums) == 0 {
		return c.Reply("❌ Usage: /pick <number 1-40> [more numbers]")
	}

	var last *session.Update
	for _, n := range nums {
		upd, err := h.sessions.Act(context.Background(), sender.ID, "pick", map[string]any{"number": n})
		if err != nil {
			return c.Reply(userMessage(err))
		}
		last = upd
	}
	return c.Reply(last.Text)
}

// HandleAuto handles /auto <rounds|inf>.
func (h *GameHandler) HandleAuto(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /auto <rounds>\nRounds: 1, 3, 5, 10, 25, 50, 100 or inf")
	}
	return h.act(c, "auto", map[string]any{"rounds": args[0]})
}

// HandleLimbo handles /limbo <bet> [target]. The round is played at once.
func (h *GameHandler) HandleLimbo(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /limbo <bet> [target multiplier]\nExample: /limbo 5 2.5x")
	}
	params := map[string]any{}
	if len(args) > 1 {
		params["target"] = args[1]
	}

	upd, ok := h.startSolo(c, game.KindLimbo, args[0], params)
	if !ok {
		return nil
	}
	played, err := h.sessions.ActOn(context.Background(), upd.Key, c.Sender().ID, "play", nil)
	if err != nil {
		return c.Reply(upd.Text + "\n" + userMessage(err))
	}
	return c.Reply(upd.Text + "\n" + h.render(played, c.Sender().ID))
}

// HandleTarget handles /target <multiplier> for a pending limbo round.
func (h *GameHandler) HandleTarget(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /target <multiplier>")
	}
	return h.act(c, "target", map[string]any{"target": args[0]})
}

// HandleHiLo handles /hilo <bet>.
func (h *GameHandler) HandleHiLo(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /hilo <bet>")
	}
	upd, ok := h.startSolo(c, game.KindHiLo, args[0], nil)
	if !ok {
		return nil
	}
	return c.Reply(upd.Text + "\n/higher, /lower, /tie or /skip. /cashout to collect.")
}

// HandleBlackjack handles /bj <bet>.
func (h *GameHandler) HandleBlackjack(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /bj <bet>")
	}
	upd, ok := h.startSolo(c, game.KindBlackjack, args[0], nil)
	if !ok {
		return nil
	}
	if upd.Resolved {
		return c.Reply(h.render(upd, c.Sender().ID))
	}
	return c.Reply(upd.Text + "\n/hit, /stand, /double, /split or /insurance.")
}

// HandleBaccarat handles /baccarat <bet> [player|banker|tie]. The coup is
// dealt at once.
func (h *GameHandler) HandleBaccarat(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /baccarat <bet> [player|banker|tie]\nExample: /baccarat 10 banker")
	}
	params := map[string]any{}
	if len(args) > 1 {
		params["bet"] = args[1]
	}

	upd, ok := h.startSolo(c, game.KindBaccarat, args[0], params)
	if !ok {
		return nil
	}
	dealt, err := h.sessions.ActOn(context.Background(), upd.Key, c.Sender().ID, "deal", nil)
	if err != nil {
		return c.Reply(upd.Text + "\n" + userMessage(err))
	}
	return c.Reply(h.render(dealt, c.Sender().ID))
}

// HandleChallenge handles /c4 <bet>, sent as a reply to the opponent.
func (h *GameHandler) HandleChallenge(c tele.Context) error {
	ctx := context.Background()
	args := c.Args()
	opponent := replyTarget(c)
	if len(args) < 1 || opponent == nil {
		return c.Reply("❌ Usage: reply to your opponent's message with /c4 <bet>")
	}

	sender, err := h.ensureSender(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("Failed to ensure user")
		return c.Reply("❌ Operation failed, please try again later.")
	}
	if sender == nil {
		return nil
	}
	if opponent.ID == sender.ID {
		return c.Reply("❌ You cannot challenge yourself.")
	}
	if h.sessions.HasActiveGame(opponent.ID) {
		return c.Reply(fmt.Sprintf("❌ %s is already in a game.", mention(opponent)))
	}

	amount, err := h.wager(ctx, sender.ID, args[0])
	if err != nil {
		return c.Reply(userMessage(err))
	}

	err = h.challenges.Open(Challenge{
		Challenger:     sender.ID,
		ChallengerName: mention(sender),
		Opponent:       opponent.ID,
		OpponentName:   mention(opponent),
		Wager:          amount,
		ChatID:         c.Chat().ID,
	})
	if err != nil {
		return c.Reply(userMessage(err))
	}

	return c.Reply(fmt.Sprintf(
		"🔴🟡 %s challenges %s to Connect-4 for %s!\n%s: /accept or /decline within %s.",
		mention(sender), mention(opponent), amount.StringFixed(2),
		mention(opponent), h.challenges.timers.Timeout().Round(time.Second),
	))
}

// HandleAccept handles /accept for a pending challenge.
func (h *GameHandler) HandleAccept(c tele.Context) error {
	ctx := context.Background()
	sender, err := h.ensureSender(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("Failed to ensure user")
		return c.Reply("❌ Operation failed, please try again later.")
	}
	if sender == nil {
		return nil
	}

	ch, err := h.challenges.Take(sender.ID)
	if err != nil {
		return c.Reply(userMessage(err))
	}
	if err := h.accountService.ValidateWager(ctx, sender.ID, ch.Wager); err != nil {
		h.sessions.ClearPending(ch.Challenger)
		return c.Reply(userMessage(err) + " Challenge cancelled.")
	}

	upd, err := h.sessions.Start(ctx, session.Request{
		Kind:         game.KindConnect4,
		Players:      []int64{ch.Challenger, sender.ID},
		ChatID:       ch.ChatID,
		Wager:        ch.Wager,
		ClaimPending: true,
	})
	if err != nil {
		h.sessions.ClearPending(ch.Challenger)
		return c.Reply(userMessage(err) + " Challenge cancelled.")
	}
	return c.Reply(fmt.Sprintf("%s\n%s vs %s. %s: /roll first.",
		upd.Text, ch.ChallengerName, mention(sender), ch.ChallengerName))
}

// HandleDecline handles /decline. Either side may cancel.
func (h *GameHandler) HandleDecline(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ch, err := h.challenges.Withdraw(sender.ID)
	if err != nil {
		return c.Reply(userMessage(err))
	}
	return c.Reply(fmt.Sprintf("❎ Connect-4 challenge between %s and %s cancelled.", ch.ChallengerName, ch.OpponentName))
}

// HandleRoll handles /roll in the Connect-4 dice phase. The value comes
// from a Telegram dice.
func (h *GameHandler) HandleRoll(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	view, err := h.sessions.Get(ctx, game.KindConnect4, sender.ID)
	if err != nil {
		return c.Reply(userMessage(err))
	}
	if phase, _ := view.State["phase"].(string); !strings.HasPrefix(phase, "rolling") {
		return c.Reply("❌ The dice phase is over. Use /drop <column>.")
	}
	if view.Awaiting != sender.ID {
		return c.Reply(userMessage(game.ErrNotYourTurn))
	}

	diceMsg, err := c.Bot().Send(c.Chat(), tele.Cube)
	if err != nil || diceMsg.Dice == nil {
		log.Error().Err(err).Msg("Failed to send dice")
		return c.Reply("❌ Failed to roll the dice, please try again.")
	}

	upd, err := h.sessions.ActOn(ctx, view.Key, sender.ID, "roll", map[string]any{"value": diceMsg.Dice.Value})
	if err != nil {
		return c.Reply(userMessage(err))
	}
	return c.Reply(upd.Text)
}

// HandleDrop handles /drop <column 1-7>.
func (h *GameHandler) HandleDrop(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /drop <column 1-7>")
	}
	col, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Reply("❌ Column must be a number from 1 to 7.")
	}
	return h.act(c, "move", map[string]any{"column": col})
}

// HandleGame handles /game, showing the sender's active game.
func (h *GameHandler) HandleGame(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if ch, ok := h.challenges.Get(sender.ID); ok {
		return c.Reply(fmt.Sprintf("🔴🟡 %s challenged you to Connect-4 for %s. /accept or /decline.",
			ch.ChallengerName, ch.Wager.StringFixed(2)))
	}

	view, err := h.sessions.Get(context.Background(), "", sender.ID)
	if err != nil {
		return c.Reply(userMessage(err))
	}

	turn := "yours"
	if view.Awaiting != sender.ID {
		turn = "opponent's"
	}
	return c.Reply(fmt.Sprintf("🎮 Active game: %s\n💵 Wager: %s\n⏳ Turn: %s\n🕐 Started %s ago",
		view.Kind, view.Wager.StringFixed(2), turn, time.Since(view.CreatedAt).Round(time.Second)))
}

func parseInts(args []string) ([]int, error) {
	out := make([]int, 0, len(args))
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}
