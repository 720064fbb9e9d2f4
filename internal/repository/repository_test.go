// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/model"
	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/pkg/db"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a migrated pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, db.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

// ============================================================================
// UserRepository Tests
// ============================================================================

func TestUserRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Create(ctx, 12345, "testuser", dec("100.50"))
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.TelegramID)
	assertDecimal(t, "100.50", user.Balance)
	assertDecimal(t, "0", user.TotalWagered)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "testuser", got.Username)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetOrCreate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, created, err := repo.GetOrCreate(ctx, 12345, "testuser", dec("10"))
	require.NoError(t, err)
	assert.True(t, created)
	assertDecimal(t, "10", user.Balance)

	user, created, err = repo.GetOrCreate(ctx, 12345, "testuser", dec("999"))
	require.NoError(t, err)
	assert.False(t, created)
	assertDecimal(t, "10", user.Balance)
}

func TestUserRepository_DebitCredit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "testuser", dec("50"))
	require.NoError(t, err)

	user, err := repo.Debit(ctx, 12345, dec("20.25"))
	require.NoError(t, err)
	assertDecimal(t, "29.75", user.Balance)

	_, err = repo.Debit(ctx, 12345, dec("30"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	user, err = repo.Credit(ctx, 12345, dec("0.25"))
	require.NoError(t, err)
	assertDecimal(t, "30", user.Balance)

	user, err = repo.Debit(ctx, 12345, dec("30"))
	require.NoError(t, err)
	assertDecimal(t, "0", user.Balance)

	_, err = repo.Debit(ctx, 99999, dec("1"))
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.Credit(ctx, 99999, dec("1"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_SetBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "testuser", decimal.Zero)
	require.NoError(t, err)

	user, err := repo.SetBalance(ctx, 12345, dec("5000"))
	require.NoError(t, err)
	assertDecimal(t, "5000", user.Balance)

	_, err = repo.SetBalance(ctx, 99999, dec("100"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_RecordPlayAndLeaderboard(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := repo.Create(ctx, id, "user", decimal.Zero)
		require.NoError(t, err)
	}

	require.NoError(t, repo.RecordPlay(ctx, 1, dec("30"), dec("0")))
	require.NoError(t, repo.RecordPlay(ctx, 3, dec("50"), dec("100")))
	require.NoError(t, repo.RecordPlay(ctx, 3, dec("10"), dec("10")))

	u3, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assertDecimal(t, "60", u3.TotalWagered)
	assertDecimal(t, "50", u3.TotalPnL)
	assert.Equal(t, int64(2), u3.GamesPlayed)
	assert.Equal(t, int64(1), u3.GamesWon)

	users, err := repo.GetTopWagered(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(3), users[0].TelegramID)
	assert.Equal(t, int64(1), users[1].TelegramID)

	assert.ErrorIs(t, repo.RecordPlay(ctx, 99999, dec("1"), dec("0")), ErrUserNotFound)
}

func TestUserRepository_BonusClaim(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, 12345, "testuser", decimal.Zero)
	require.NoError(t, err)

	now := time.Now().Unix()
	require.NoError(t, repo.UpdateBonusClaim(ctx, 12345, now))

	user, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, now, user.LastBonusClaim)

	assert.ErrorIs(t, repo.UpdateBonusClaim(ctx, 99999, now), ErrUserNotFound)
}

func TestBonusAvailable(t *testing.T) {
	now := time.Now()

	ok, remaining := BonusAvailable(0, 24*time.Hour, now)
	assert.True(t, ok)
	assert.Zero(t, remaining)

	ok, remaining = BonusAvailable(now.Add(-time.Hour).Unix(), 24*time.Hour, now)
	assert.False(t, ok)
	assert.InDelta(t, (23 * time.Hour).Seconds(), remaining.Seconds(), 1)

	ok, _ = BonusAvailable(now.Add(-25*time.Hour).Unix(), 24*time.Hour, now)
	assert.True(t, ok)
}

func TestUserRepository_UpdateUsernameAndExists(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, 12345)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, 12345, "oldname", decimal.Zero)
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, 12345)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.UpdateUsername(ctx, 12345, "newname"))
	user, err := repo.GetByID(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "newname", user.Username)

	assert.ErrorIs(t, repo.UpdateUsername(ctx, 99999, "name"), ErrUserNotFound)
}

// ============================================================================
// TransactionRepository Tests
// ============================================================================

func TestTransactionRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userRepo := NewUserRepository(pool)
	txRepo := NewTransactionRepository(pool)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 12345, "testuser", decimal.Zero)
	require.NoError(t, err)

	desc := "mines stake"
	tx, err := txRepo.Create(ctx, 12345, dec("-10.50"), model.TxTypeBet, &desc)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), tx.UserID)
	assertDecimal(t, "-10.50", tx.Amount)
	require.NotNil(t, tx.Description)
	assert.Equal(t, desc, *tx.Description)

	_, err = txRepo.Create(ctx, 12345, dec("21"), model.TxTypeWin, nil)
	require.NoError(t, err)

	txs, err := txRepo.GetByUserID(ctx, 12345, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, model.TxTypeWin, txs[0].Type)
}

// ============================================================================
// GameRepository / HouseRepository Tests
// ============================================================================

func TestGameRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(pool)
	ctx := context.Background()

	rec := &model.GameRecord{
		ID:         uuid.New(),
		UserID:     42,
		GameType:   "mines",
		Wager:      dec("10"),
		Payout:     dec("18.30"),
		Multiplier: 1.83,
		Result:     "cashout",
		Seed:       "abc",
		Details:    []byte(`{"revealed":[1,2,3]}`),
	}
	require.NoError(t, repo.Create(ctx, rec))
	assert.False(t, rec.CreatedAt.IsZero())

	games, err := repo.GetByUserID(ctx, 42, 5)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, rec.ID, games[0].ID)
	assertDecimal(t, "18.30", games[0].Payout)
	assert.JSONEq(t, `{"revealed":[1,2,3]}`, string(games[0].Details))
	assert.True(t, games[0].Won())
}

func TestHouseRepository(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewHouseRepository(pool)
	ctx := context.Background()

	bal, err := repo.Balance(ctx)
	require.NoError(t, err)
	assertDecimal(t, "10000", bal)

	bal, err = repo.Adjust(ctx, dec("-8.30"))
	require.NoError(t, err)
	assertDecimal(t, "9991.70", bal)

	bal, err = repo.Adjust(ctx, dec("10"))
	require.NoError(t, err)
	assertDecimal(t, "10001.70", bal)

	bal, err = repo.Balance(ctx)
	require.NoError(t, err)
	assertDecimal(t, "10001.70", bal)
}
