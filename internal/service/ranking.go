package service

import (
	"context"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
)

// RankingService handles leaderboards and game history.
type RankingService struct {
	users UserStore
	games GameHistory
}

// NewRankingService creates a new RankingService instance.
func NewRankingService(users UserStore, games GameHistory) *RankingService {
	return &RankingService{
		users: users,
		games: games,
	}
}

// GetTopWagered retrieves the users who wagered the most.
func (s *RankingService) GetTopWagered(ctx context.Context, limit int) ([]*model.User, error) {
	return s.users.GetTopWagered(ctx, limit)
}

// GetHistory returns the user's most recent games.
func (s *RankingService) GetHistory(ctx context.Context, userID int64, limit int) ([]*model.GameRecord, error) {
	return s.games.GetByUserID(ctx, userID, limit)
}

// Stats summarises a user's lifetime play.
type Stats struct {
	GamesPlayed  int64
	GamesWon     int64
	WinRate      float64
	TotalWagered string
	TotalPnL     string
}

// GetStats returns the user's lifetime statistics.
func (s *RankingService) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	st := &Stats{
		GamesPlayed:  user.GamesPlayed,
		GamesWon:     user.GamesWon,
		TotalWagered: user.TotalWagered.StringFixed(2),
		TotalPnL:     user.TotalPnL.StringFixed(2),
	}
	if user.GamesPlayed > 0 {
		st.WinRate = float64(user.GamesWon) / float64(user.GamesPlayed) * 100
	}
	return st, nil
}
