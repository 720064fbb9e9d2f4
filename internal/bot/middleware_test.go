package bot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"github.com/bhutansultan27-beep/purgatorycasinobot/internal/config"
)

// fakeContext implements the handful of tele.Context methods the
// middleware touches.
type fakeContext struct {
	tele.Context
	chat    *tele.Chat
	sender  *tele.User
	text    string
	replies []string
}

func (f *fakeContext) Chat() *tele.Chat   { return f.chat }
func (f *fakeContext) Sender() *tele.User { return f.sender }
func (f *fakeContext) Text() string       { return f.text }
func (f *fakeContext) Reply(what interface{}, _ ...interface{}) error {
	f.replies = append(f.replies, what.(string))
	return nil
}

func group(id int64) *tele.Chat   { return &tele.Chat{ID: id, Type: tele.ChatGroup} }
func private(id int64) *tele.Chat { return &tele.Chat{ID: id, Type: tele.ChatPrivate} }

func run(mw tele.MiddlewareFunc, c tele.Context) (bool, error) {
	called := false
	err := mw(func(tele.Context) error {
		called = true
		return nil
	})(c)
	return called, err
}

func TestWhitelist_GroupAndPrivate(t *testing.T) {
	cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{-100}}}
	w := NewWhitelist(cfg)
	mw := w.Middleware()
	user := &tele.User{ID: 7}

	called, _ := run(mw, &fakeContext{chat: private(7), sender: user})
	assert.False(t, called, "unknown private user")

	called, _ = run(mw, &fakeContext{chat: group(-200), sender: user})
	assert.False(t, called, "other group")

	called, _ = run(mw, &fakeContext{chat: group(-100), sender: user})
	assert.True(t, called)

	called, _ = run(mw, &fakeContext{chat: private(7), sender: user})
	assert.True(t, called, "user seen in allowed group")

	called, _ = run(mw, &fakeContext{chat: group(-100)})
	assert.False(t, called, "no sender")
}

func TestWhitelist_EmptyAllowsAll(t *testing.T) {
	w := NewWhitelist(&config.Config{})
	assert.True(t, w.Allowed(group(-5), &tele.User{ID: 1}))
	assert.True(t, w.Allowed(private(2), &tele.User{ID: 2}))
}

func TestAdminMiddleware(t *testing.T) {
	cfg := &config.Config{Admin: config.AdminConfig{IDs: []int64{42}}}
	mw := AdminMiddleware(cfg)

	c := &fakeContext{chat: group(-1), sender: &tele.User{ID: 7}, text: "/clear 9"}
	called, err := run(mw, c)
	require.NoError(t, err)
	assert.False(t, called)
	assert.Len(t, c.replies, 1)

	called, _ = run(mw, &fakeContext{chat: group(-1), sender: &tele.User{ID: 42}})
	assert.True(t, called)
}

func TestRecoveryMiddleware(t *testing.T) {
	c := &fakeContext{chat: group(-1), sender: &tele.User{ID: 1}}
	err := RecoveryMiddleware()(func(tele.Context) error {
		panic("boom")
	})(c)
	assert.NoError(t, err)
	assert.Len(t, c.replies, 1)

	want := errors.New("handler failed")
	err = RecoveryMiddleware()(func(tele.Context) error { return want })(c)
	assert.ErrorIs(t, err, want)
}

// TestWhitelistEnforcementProperty checks a group update is handled exactly
// when its chat is whitelisted or the whitelist is empty.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chats := rapid.SliceOfN(rapid.Int64Range(-1_000_000, -1), 0, 10).Draw(t, "chats")
		chatID := rapid.Int64Range(-1_000_000, -1).Draw(t, "chatID")
		w := NewWhitelist(&config.Config{Whitelist: config.WhitelistConfig{Chats: chats}})

		want := len(chats) == 0
		for _, id := range chats {
			if id == chatID {
				want = true
			}
		}
		if got := w.Allowed(group(chatID), &tele.User{ID: 1}); got != want {
			t.Fatalf("chat %d whitelist %v: allowed=%v", chatID, chats, got)
		}
	})
}

// TestAdminPermissionProperty checks IsAdmin matches list membership.
func TestAdminPermissionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ids := rapid.SliceOfN(rapid.Int64Range(1, 1000), 0, 10).Draw(t, "ids")
		user := rapid.Int64Range(1, 1000).Draw(t, "user")
		cfg := &config.Config{Admin: config.AdminConfig{IDs: ids}}

		want := false
		for _, id := range ids {
			if id == user {
				want = true
			}
		}
		if cfg.IsAdmin(user) != want {
			t.Fatalf("user %d admins %v", user, ids)
		}
	})
}
