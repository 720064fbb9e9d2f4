package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/ledger"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/notify"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/lock"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/session/snapshot"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/timeout"
)

// Config tunes the service.
type Config struct {
	// Timeout is the inactivity window; Timeouts overrides it per kind.
	Timeout  time.Duration
	Timeouts map[game.Kind]time.Duration
	// AutoPlayInterval separates automatic rounds (keno auto-play).
	AutoPlayInterval time.Duration
	// LockTimeout bounds how long an action waits for the session lock.
	LockTimeout time.Duration
}

const (
	defaultAutoPlayInterval = 2 * time.Second
	defaultLockTimeout      = 5 * time.Second
)

// Scheduler runs f after d.
type Scheduler func(d time.Duration, f func())

// Service creates, drives and resolves game sessions.
type Service struct {
	cfg       Config
	registry  *Registry
	factories *game.Registry
	ledger    ledger.Ledger
	notifier  notify.Notifier
	timers    *timeout.Supervisor
	locks     *lock.KeyLock[string]
	store     snapshot.Store
	newSeed   func() string
	schedule  Scheduler
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithSupervisor replaces the timeout supervisor.
func WithSupervisor(sup *timeout.Supervisor) Option {
	return func(s *Service) { s.timers = sup }
}

// WithSnapshots persists live sessions to store.
func WithSnapshots(store snapshot.Store) Option {
	return func(s *Service) { s.store = store }
}

// WithSeedFunc replaces the seed generator.
func WithSeedFunc(f func() string) Option {
	return func(s *Service) { s.newSeed = f }
}

// WithScheduler replaces the scheduler used for automatic follow-up actions.
func WithScheduler(f Scheduler) Option {
	return func(s *Service) { s.schedule = f }
}

// NewService wires a session service.
func NewService(cfg Config, factories *game.Registry, l ledger.Ledger, n notify.Notifier, opts ...Option) *Service {
	if cfg.AutoPlayInterval <= 0 {
		cfg.AutoPlayInterval = defaultAutoPlayInterval
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	if n == nil {
		n = notify.Log{}
	}
	s := &Service{
		cfg:       cfg,
		registry:  NewRegistry(),
		factories: factories,
		ledger:    l,
		notifier:  n,
		locks:     lock.New[string](),
		newSeed:   rng.NewSeed,
		schedule:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.timers == nil {
		s.timers = timeout.New(cfg.Timeout)
	}
	return s
}

// Registry exposes the exclusivity registry.
func (s *Service) Registry() *Registry { return s.registry }

// Request describes a new game.
type Request struct {
	Kind    game.Kind
	Players []int64
	ChatID  int64
	Wager   decimal.Decimal
	Params  map[string]any
	// ClaimPending lets players whose slot is held by a pending opponent
	// selection start this game.
	ClaimPending bool
}

// Update is what a transition produced, ready to show to the players.
type Update struct {
	Key        string
	ID         uuid.UUID
	Kind       game.Kind
	Players    []int64
	ChatID     int64
	Awaiting   int64
	Text       string
	Resolved   bool
	Result     game.Result
	Payouts    map[int64]decimal.Decimal
	Multiplier float64
	Details    map[string]any

	next string
}

// View is a read-only look at a live session.
type View struct {
	Key       string
	ID        uuid.UUID
	Kind      game.Kind
	Players   []int64
	Wager     decimal.Decimal
	Awaiting  int64
	CreatedAt time.Time
	State     map[string]any
}

func (s *Service) timeoutFor(kind game.Kind) time.Duration {
	if d, ok := s.cfg.Timeouts[kind]; ok && d > 0 {
		return d
	}
	return s.timers.Timeout()
}

// Start escrows the wager from every player and begins the game.
func (s *Service) Start(ctx context.Context, req Request) (*Update, error) {
	if !req.Wager.IsPositive() {
		return nil, ErrInvalidWager
	}
	if len(req.Players) != req.Kind.Players() {
		return nil, fmt.Errorf("%w: %s needs %d players", game.ErrBadParam, req.Kind, req.Kind.Players())
	}

	id := uuid.New()
	key := KeyFor(req.Kind, req.Players[0])
	if req.Kind.Players() > 1 {
		key = id.String()
	}
	sess := &Session{
		Key:       key,
		ID:        id,
		Kind:      req.Kind,
		Players:   append([]int64(nil), req.Players...),
		ChatID:    req.ChatID,
		Wager:     req.Wager,
		Seed:      s.newSeed(),
		CreatedAt: s.now(),
		escrow:    make(map[int64]decimal.Decimal, len(req.Players)),
	}

	params := make(map[string]any, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	params["game_id"] = id

	engine, err := s.factories.Build(req.Kind, game.Setup{
		Players: sess.Players,
		Wager:   req.Wager,
		Seed:    sess.Seed,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}
	sess.engine = engine

	var upd *Update
	err = s.locks.WithLockContext(ctx, key, s.cfg.LockTimeout, func() error {
		if err := s.registry.reserve(sess, req.ClaimPending); err != nil {
			return err
		}
		if err := s.escrowStakes(ctx, sess); err != nil {
			s.registry.remove(key)
			return err
		}
		log.Info().
			Str("session", key).
			Str("game", string(sess.Kind)).
			Str("wager", sess.Wager.String()).
			Ints64("players", sess.Players).
			Msg("Game started")

		out, err := s.begin(sess)
		if err != nil {
			s.refundAll(ctx, sess, "game could not start")
			s.registry.remove(key)
			return err
		}
		upd = s.apply(ctx, sess, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.followUp(upd)
	return upd, nil
}

// escrowStakes debits the wager from each player, returning what was taken
// if any debit fails.
func (s *Service) escrowStakes(ctx context.Context, sess *Session) error {
	var debited []int64
	for _, p := range sess.Players {
		if err := s.ledger.Debit(ctx, p, sess.Wager); err != nil {
			for _, q := range debited {
				if cerr := s.ledger.Credit(ctx, q, sess.Wager); cerr != nil {
					log.Error().Err(cerr).Int64("user_id", q).Str("session", sess.Key).Msg("Failed to return stake")
				}
			}
			return fmt.Errorf("player %d: %w", p, err)
		}
		debited = append(debited, p)
	}
	for _, p := range sess.Players {
		sess.escrow[p] = sess.Wager
		s.recordTx(ctx, p, model.TxTypeBet, sess.Wager.Neg(), fmt.Sprintf("%s stake", sess.Kind))
	}
	return nil
}

// Act applies a player's action to their live session.
func (s *Service) Act(ctx context.Context, player int64, action string, params map[string]any) (*Update, error) {
	key, ok := s.registry.ActiveKey(player)
	if !ok {
		return nil, ErrNoSession
	}
	return s.act(ctx, key, uuid.Nil, player, action, params)
}

// ActOn applies an action to a specific session.
func (s *Service) ActOn(ctx context.Context, key string, player int64, action string, params map[string]any) (*Update, error) {
	return s.act(ctx, key, uuid.Nil, player, action, params)
}

func (s *Service) act(ctx context.Context, key string, want uuid.UUID, player int64, action string, params map[string]any) (*Update, error) {
	var upd *Update
	err := s.locks.WithLockContext(ctx, key, s.cfg.LockTimeout, func() error {
		sess, ok := s.registry.get(key)
		if !ok || (want != uuid.Nil && sess.ID != want) {
			return ErrNoSession
		}
		if !sess.hasPlayer(player) {
			return game.ErrNotPlayer
		}

		out, err := s.step(sess, game.Action{
			Actor:  player,
			Name:   action,
			Params: params,
			Fund:   s.funder(ctx, sess, player),
		})
		if err != nil {
			return err
		}
		upd = s.apply(ctx, sess, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.followUp(upd)
	return upd, nil
}

// funder debits extra stakes mid-action and adds them to the escrow.
func (s *Service) funder(ctx context.Context, sess *Session, player int64) game.Funder {
	return func(amount decimal.Decimal, memo string) error {
		if err := s.ledger.Debit(ctx, player, amount); err != nil {
			return err
		}
		sess.escrow[player] = sess.escrow[player].Add(amount)
		s.recordTx(ctx, player, model.TxTypeBet, amount.Neg(), memo)
		return nil
	}
}

func (s *Service) begin(sess *Session) (out *game.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session", sess.Key).Msg("Recovered from panic in game begin")
			out, err = nil, ErrInternal
		}
	}()
	return sess.engine.Begin(), nil
}

func (s *Service) step(sess *Session, a game.Action) (out *game.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session", sess.Key).Str("action", a.Name).Msg("Recovered from panic in game action")
			out, err = nil, ErrInternal
		}
	}()
	return sess.engine.Act(a)
}

func (s *Service) expireEngine(sess *Session) (out *game.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("session", sess.Key).Msg("Recovered from panic in game expiry")
			out = &game.Outcome{
				Resolved:    true,
				Result:      game.ResultStopped,
				Payouts:     sess.escrowCopy(),
				Description: "⚠️ The game hit an error and your stake was returned.",
			}
		}
	}()
	return sess.engine.Expire()
}

func (sess *Session) escrowCopy() map[int64]decimal.Decimal {
	m := make(map[int64]decimal.Decimal, len(sess.escrow))
	for p, v := range sess.escrow {
		m[p] = v
	}
	return m
}

// apply settles and persists an outcome and arms or clears the timer.
// Callers hold the session lock.
func (s *Service) apply(ctx context.Context, sess *Session, out *game.Outcome) *Update {
	if out.Resolved || out.Settles {
		s.settle(ctx, sess, out)
	}

	if out.Resolved {
		s.timers.Cancel(sess.Key)
		s.registry.remove(sess.Key)
		s.deleteSnapshot(ctx, sess.Key)
	} else {
		key := sess.Key
		s.timers.Reset(key, s.timeoutFor(sess.Kind), func(token uint64) { s.expire(key, token) })
		s.saveSnapshot(ctx, sess)
	}

	return &Update{
		Key:        sess.Key,
		ID:         sess.ID,
		Kind:       sess.Kind,
		Players:    sess.Players,
		ChatID:     sess.ChatID,
		Awaiting:   sess.engine.Awaiting(),
		Text:       out.Description,
		Resolved:   out.Resolved,
		Result:     out.Result,
		Payouts:    out.Payouts,
		Multiplier: out.Multiplier,
		Details:    out.Details,
		next:       out.Next,
	}
}

// followUp schedules an automatic action once the lock is released.
func (s *Service) followUp(upd *Update) {
	if upd == nil || upd.Resolved || upd.next == "" {
		return
	}
	key, id, player, next, chat := upd.Key, upd.ID, upd.Awaiting, upd.next, upd.ChatID
	s.schedule(s.cfg.AutoPlayInterval, func() {
		ctx := context.Background()
		u, err := s.act(ctx, key, id, player, next, nil)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				log.Warn().Err(err).Str("session", key).Str("action", next).Msg("Automatic action failed")
			}
			return
		}
		s.notifier.Notify(ctx, chat, u.Text)
	})
}

// expire is the timer callback. It resolves the session only if its token
// is still the live one.
func (s *Service) expire(key string, token uint64) {
	ctx := context.Background()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if !s.timers.Claim(key, token) {
		log.Debug().Str("session", key).Uint64("token", token).Msg("Stale timeout ignored")
		return
	}
	sess, ok := s.registry.get(key)
	if !ok {
		return
	}

	out := s.expireEngine(sess)
	out.Resolved = true
	upd := s.apply(ctx, sess, out)

	log.Info().
		Str("session", key).
		Str("game", string(sess.Kind)).
		Str("result", string(out.Result)).
		Msg("Game resolved by timeout")
	s.notifier.Notify(ctx, sess.ChatID, upd.Text)
}

// settle credits payouts and records one game result per player with a
// non-empty stake or payout. Ledger failures are logged; settlement goes on.
func (s *Service) settle(ctx context.Context, sess *Session, out *game.Outcome) {
	details := map[string]any{"session_id": sess.ID.String()}
	for k, v := range out.Details {
		details[k] = v
	}
	raw, err := json.Marshal(details)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.Key).Msg("Failed to encode game details")
		raw = nil
	}

	for _, p := range sess.Players {
		stake := sess.escrow[p]
		payout := out.Payouts[p]
		if stake.IsZero() && payout.IsZero() {
			continue
		}
		res := playerResult(out.Result, len(sess.Players), stake, payout)

		if payout.IsPositive() {
			if err := s.ledger.Credit(ctx, p, payout); err != nil {
				log.Error().Err(err).Int64("user_id", p).Str("session", sess.Key).Str("payout", payout.String()).Msg("Failed to credit payout")
			} else {
				txType := model.TxTypeWin
				if !payout.GreaterThan(stake) && res != game.ResultWin && res != game.ResultCashOut {
					txType = model.TxTypeRefund
				}
				s.recordTx(ctx, p, txType, payout, fmt.Sprintf("%s %s", sess.Kind, res))
			}
		}

		mult := out.Multiplier
		if len(sess.Players) > 1 || mult == 0 {
			mult = 0
			if stake.IsPositive() {
				mult, _ = payout.Div(stake).Round(2).Float64()
			}
		}
		rec := &model.GameRecord{
			ID:         uuid.New(),
			UserID:     p,
			GameType:   string(sess.Kind),
			Wager:      stake,
			Payout:     payout,
			Multiplier: mult,
			Result:     string(res),
			Seed:       sess.Seed,
			Details:    raw,
		}
		if err := s.ledger.RecordGameResult(ctx, rec); err != nil {
			log.Error().Err(err).Int64("user_id", p).Str("session", sess.Key).Msg("Failed to record game result")
		}
		sess.escrow[p] = decimal.Zero

		log.Info().
			Int64("user_id", p).
			Str("session", sess.Key).
			Str("game", string(sess.Kind)).
			Str("stake", stake.String()).
			Str("payout", payout.String()).
			Str("result", string(res)).
			Msg("Game settled")
	}
}

// playerResult maps a game result onto one player. Multi-player games report
// one result for the table, so each seat is judged by its money.
func playerResult(r game.Result, players int, stake, payout decimal.Decimal) game.Result {
	if players == 1 && r != "" {
		return r
	}
	switch {
	case payout.GreaterThan(stake):
		return game.ResultWin
	case payout.Equal(stake) && r == game.ResultDraw:
		return game.ResultDraw
	case payout.Equal(stake):
		return game.ResultPush
	case r == game.ResultForfeit:
		return game.ResultForfeit
	default:
		return game.ResultLoss
	}
}

func (s *Service) recordTx(ctx context.Context, player int64, txType string, delta decimal.Decimal, memo string) {
	if err := s.ledger.RecordTransaction(ctx, player, txType, delta, memo); err != nil {
		log.Error().Err(err).Int64("user_id", player).Str("type", txType).Msg("Failed to record transaction")
	}
}

// refundAll returns every escrowed stake without recording a game.
func (s *Service) refundAll(ctx context.Context, sess *Session, memo string) {
	for _, p := range sess.Players {
		amt := sess.escrow[p]
		if !amt.IsPositive() {
			continue
		}
		if err := s.ledger.Credit(ctx, p, amt); err != nil {
			log.Error().Err(err).Int64("user_id", p).Str("session", sess.Key).Msg("Failed to refund stake")
			continue
		}
		s.recordTx(ctx, p, model.TxTypeRefund, amt, memo)
		sess.escrow[p] = decimal.Zero
	}
}

// Get returns a view of the player's session of the given kind. An empty
// kind matches any game.
func (s *Service) Get(ctx context.Context, kind game.Kind, player int64) (*View, error) {
	key, ok := s.registry.ActiveKey(player)
	if !ok {
		return nil, ErrNoSession
	}
	var v *View
	err := s.locks.WithLockContext(ctx, key, s.cfg.LockTimeout, func() error {
		sess, ok := s.registry.get(key)
		if !ok || (kind != "" && sess.Kind != kind) {
			return ErrNoSession
		}
		v = &View{
			Key:       sess.Key,
			ID:        sess.ID,
			Kind:      sess.Kind,
			Players:   sess.Players,
			Wager:     sess.Wager,
			Awaiting:  sess.engine.Awaiting(),
			CreatedAt: sess.CreatedAt,
			State:     sess.engine.Snapshot(),
		}
		return nil
	})
	return v, err
}

// HasActiveGame reports whether the player's slot is taken.
func (s *Service) HasActiveGame(player int64) bool {
	return s.registry.HasActiveGame(player)
}

// MarkPending holds the player's slot during opponent selection.
func (s *Service) MarkPending(player int64) error {
	return s.registry.MarkPending(player)
}

// ClearPending releases a pending slot.
func (s *Service) ClearPending(player int64) bool {
	return s.registry.ClearPending(player)
}

// ClearAll removes the player's session and pending flag without settling
// anything. Escrowed stakes are not returned. It reports the kinds removed.
func (s *Service) ClearAll(ctx context.Context, player int64) []game.Kind {
	var cleared []game.Kind
	if key, ok := s.registry.ActiveKey(player); ok {
		s.locks.Lock(key)
		s.timers.Cancel(key)
		if sess := s.registry.remove(key); sess != nil {
			s.deleteSnapshot(ctx, key)
			cleared = append(cleared, sess.Kind)
			log.Warn().
				Int64("user_id", player).
				Str("session", key).
				Str("game", string(sess.Kind)).
				Msg("Session cleared without settlement")
		}
		s.locks.Unlock(key)
	}
	s.registry.ClearPending(player)
	return cleared
}

func (s *Service) record(sess *Session) *snapshot.Record {
	return &snapshot.Record{
		Key:       sess.Key,
		ID:        sess.ID,
		Kind:      string(sess.Kind),
		Players:   sess.Players,
		ChatID:    sess.ChatID,
		Wager:     sess.Wager,
		Escrow:    sess.escrowCopy(),
		Seed:      sess.Seed,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: s.now(),
		State:     sess.engine.Snapshot(),
	}
}

func (s *Service) saveSnapshot(ctx context.Context, sess *Session) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.record(sess)); err != nil {
		log.Warn().Err(err).Str("session", sess.Key).Msg("Failed to save session snapshot")
	}
}

func (s *Service) deleteSnapshot(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("session", key).Msg("Failed to delete session snapshot")
	}
}

// Recover refunds the escrow of sessions left behind by a previous process
// and deletes their snapshots. It returns how many were recovered.
func (s *Service) Recover(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	recs, err := s.store.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		for _, p := range rec.Players {
			amt := rec.Escrow[p]
			if !amt.IsPositive() {
				continue
			}
			if err := s.ledger.Credit(ctx, p, amt); err != nil {
				log.Error().Err(err).Int64("user_id", p).Str("session", rec.Key).Msg("Failed to refund orphaned stake")
				continue
			}
			s.recordTx(ctx, p, model.TxTypeRefund, amt, fmt.Sprintf("%s interrupted by restart", rec.Kind))
		}
		s.deleteSnapshot(ctx, rec.Key)
		s.notifier.Notify(ctx, rec.ChatID, fmt.Sprintf("♻️ Your %s game was interrupted by a restart and the stake was refunded.", rec.Kind))
		log.Info().Str("session", rec.Key).Str("game", rec.Kind).Msg("Orphaned session refunded")
	}
	return len(recs), nil
}

// Shutdown stops every timer and refunds the stakes of live sessions.
func (s *Service) Shutdown(ctx context.Context) {
	s.timers.Stop()
	for _, key := range s.registry.Keys() {
		s.locks.Lock(key)
		if sess := s.registry.remove(key); sess != nil {
			s.refundAll(ctx, sess, fmt.Sprintf("%s cancelled by shutdown", sess.Kind))
			s.deleteSnapshot(ctx, key)
		}
		s.locks.Unlock(key)
	}
}
