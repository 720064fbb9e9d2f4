// Package blackjack implements single-player blackjack against the dealer.
//
// Dealer stands on all 17s, blackjack pays 3:2, a pair may be split once and
// insurance is offered when the dealer shows an ace.
package blackjack

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/game/cards"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/rng"
)

const (
	// ShoeDecks is the number of decks in the shoe.
	ShoeDecks = 6
	// BlackjackMultiplier is returned on a natural (3:2 plus stake).
	BlackjackMultiplier = 2.5
	// InsuranceMultiplier is returned on a winning insurance bet (2:1 plus stake).
	InsuranceMultiplier = 3.0
	dealerStand         = 17
)

// Errors for the blackjack game.
var (
	ErrCannotDouble = errors.New("double down is only allowed on the first two cards")
	ErrCannotSplit  = errors.New("only an unsplit pair can be split")
	ErrNoInsurance  = errors.New("insurance is only offered on a dealer ace before any other action")
)

// Game is one blackjack round.
type Game struct {
	player int64
	wager  decimal.Decimal
	seed   string
	shoe   *cards.Shoe

	hands     []*Hand
	active    int
	dealer    []cards.Card
	insurance decimal.Decimal
	peeked    bool
	acted     bool

	over   bool
	payout decimal.Decimal
}

// New shuffles a six-deck shoe from the seed and deals the opening cards.
func New(player int64, wager decimal.Decimal, seed string) *Game {
	return newWithShoe(player, wager, seed, cards.NewShoe(ShoeDecks, rng.New(seed)))
}

func newWithShoe(player int64, wager decimal.Decimal, seed string, shoe *cards.Shoe) *Game {
	g := &Game{
		player:    player,
		wager:     wager,
		seed:      seed,
		shoe:      shoe,
		insurance: decimal.Zero,
		payout:    decimal.Zero,
	}
	h := &Hand{Stake: wager}
	h.Cards = append(h.Cards, shoe.MustDraw())
	g.dealer = append(g.dealer, shoe.MustDraw())
	h.Cards = append(h.Cards, shoe.MustDraw())
	g.dealer = append(g.dealer, shoe.MustDraw())
	g.hands = []*Hand{h}
	return g
}

// DealerUp returns the dealer's face-up card.
func (g *Game) DealerUp() cards.Card { return g.dealer[0] }

// InsuranceOffered reports whether insurance can still be taken.
func (g *Game) InsuranceOffered() bool {
	return !g.over && !g.peeked && !g.acted && g.DealerUp().Rank == cards.Ace && g.insurance.IsZero()
}

// open resolves naturals on the deal. The dealer peeks immediately unless an
// ace is showing, in which case the peek waits for the insurance decision.
func (g *Game) open() {
	if g.hands[0].Natural() {
		g.peeked = true
		g.finish()
		return
	}
	if g.DealerUp().Rank != cards.Ace {
		g.peek()
	}
}

// peek checks the hole card and ends the round on a dealer blackjack.
func (g *Game) peek() {
	g.peeked = true
	if IsBlackjack(g.dealer) {
		g.finish()
	}
}

// Insure places the half-stake insurance bet and peeks.
func (g *Game) Insure(fund game.Funder) error {
	if g.over {
		return game.ErrGameOver
	}
	if !g.InsuranceOffered() {
		return ErrNoInsurance
	}
	amount := g.wager.Div(decimal.NewFromInt(2)).Round(2)
	if err := fund(amount, "blackjack insurance"); err != nil {
		return err
	}
	g.insurance = amount
	g.acted = true
	g.peek()
	return nil
}

// beforeAction performs the deferred peek. It reports whether the round ended.
func (g *Game) beforeAction() bool {
	if !g.peeked {
		g.peek()
	}
	g.acted = true
	return g.over
}

func (g *Game) current() *Hand {
	return g.hands[g.active]
}

// Hit draws a card to the active hand.
func (g *Game) Hit() error {
	if g.over {
		return game.ErrGameOver
	}
	if g.beforeAction() {
		return nil
	}
	h := g.current()
	h.Cards = append(h.Cards, g.shoe.MustDraw())
	g.advance()
	return nil
}

// Stand ends the active hand.
func (g *Game) Stand() error {
	if g.over {
		return game.ErrGameOver
	}
	if g.beforeAction() {
		return nil
	}
	g.current().Stood = true
	g.advance()
	return nil
}

// Double doubles the active hand's stake, draws one card and stands.
func (g *Game) Double(fund game.Funder) error {
	if g.over {
		return game.ErrGameOver
	}
	h := g.current()
	if len(h.Cards) != 2 || h.Doubled {
		return ErrCannotDouble
	}
	if g.beforeAction() {
		return nil
	}
	if err := fund(h.Stake, "blackjack double down"); err != nil {
		return err
	}
	h.Stake = h.Stake.Mul(decimal.NewFromInt(2))
	h.Doubled = true
	h.Cards = append(h.Cards, g.shoe.MustDraw())
	h.Stood = true
	g.advance()
	return nil
}

// Split divides a pair into two hands, each drawing a second card. Split
// aces receive one card each and stand.
func (g *Game) Split(fund game.Funder) error {
	if g.over {
		return game.ErrGameOver
	}
	if len(g.hands) != 1 || !g.hands[0].CanSplit() {
		return ErrCannotSplit
	}
	h := g.hands[0]
	if g.beforeAction() {
		return nil
	}
	if err := fund(h.Stake, "blackjack split"); err != nil {
		return err
	}
	aces := h.Cards[0].Rank == cards.Ace
	first := &Hand{Cards: []cards.Card{h.Cards[0], g.shoe.MustDraw()}, Stake: h.Stake, Split: true}
	second := &Hand{Cards: []cards.Card{h.Cards[1], g.shoe.MustDraw()}, Stake: h.Stake, Split: true}
	if aces {
		first.Stood, second.Stood = true, true
	}
	g.hands = []*Hand{first, second}
	g.active = 0
	g.advance()
	return nil
}

// advance moves past finished hands and plays the dealer when none remain.
func (g *Game) advance() {
	for g.active < len(g.hands) && g.hands[g.active].Done() {
		g.active++
	}
	if g.active >= len(g.hands) {
		g.active = len(g.hands) - 1
		g.playDealer()
		g.finish()
	}
}

func (g *Game) playDealer() {
	live := false
	for _, h := range g.hands {
		if !h.Busted() {
			live = true
		}
	}
	if !live {
		return
	}
	for {
		v, _ := Value(g.dealer)
		if v >= dealerStand {
			return
		}
		g.dealer = append(g.dealer, g.shoe.MustDraw())
	}
}

// finish settles every hand against the dealer.
func (g *Game) finish() {
	g.over = true
	dealerTotal, _ := Value(g.dealer)
	dealerBJ := IsBlackjack(g.dealer)

	total := g.payout
	for _, h := range g.hands {
		total = total.Add(handPayout(h, dealerTotal, dealerBJ))
	}
	if dealerBJ && g.insurance.IsPositive() {
		total = total.Add(game.Payout(g.insurance, InsuranceMultiplier))
	}
	g.payout = total
}

func handPayout(h *Hand, dealerTotal int, dealerBJ bool) decimal.Decimal {
	switch {
	case h.Busted():
		return decimal.Zero
	case h.Natural() && dealerBJ:
		return h.Stake
	case h.Natural():
		return game.Payout(h.Stake, BlackjackMultiplier)
	case dealerBJ:
		return decimal.Zero
	case dealerTotal > 21 || h.Total() > dealerTotal:
		return game.Payout(h.Stake, 2)
	case h.Total() == dealerTotal:
		return h.Stake
	default:
		return decimal.Zero
	}
}

// Staked returns everything the player has put on the table.
func (g *Game) Staked() decimal.Decimal {
	total := g.insurance
	for _, h := range g.hands {
		total = total.Add(h.Stake)
	}
	return total
}

// Payout returns the settled amount; zero while the round is in progress.
func (g *Game) Payout() decimal.Decimal { return g.payout }

// Over reports whether the round is settled.
func (g *Game) Over() bool { return g.over }

// Hands returns the player's hands.
func (g *Game) Hands() []*Hand { return g.hands }

func (g *Game) describeHands() string {
	s := ""
	for i, h := range g.hands {
		marker := ""
		if !g.over && i == g.active && len(g.hands) > 1 {
			marker = "👉 "
		}
		s += fmt.Sprintf("%sYour hand: %s (%d)\n", marker, cards.Strings(h.Cards), h.Total())
	}
	if g.over {
		v, _ := Value(g.dealer)
		s += fmt.Sprintf("Dealer: %s (%d)", cards.Strings(g.dealer), v)
	} else {
		s += fmt.Sprintf("Dealer shows: %s 🂠", g.DealerUp())
	}
	return s
}
