package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stridestreak/internal/app"
	"stridestreak/internal/config"
	"stridestreak/internal/services"
)

func newRunContext(t *testing.T) (*runContext, *bytes.Buffer) {
	t.Helper()
	cfg := config.Config{
		DBDriver:      "sqlite",
		DatabaseURL:   "file:" + filepath.Join(t.TempDir(), "stridectl.db") + "?_pragma=foreign_keys(1)",
		JWTSecret:     []byte("secret"),
		JWTTTL:        time.Hour,
		EncryptionKey: bytes.Repeat([]byte{1}, 32),
		BlindIndexKey: bytes.Repeat([]byte{2}, 32),
	}
	a, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	var out bytes.Buffer
	rc := &runContext{ctx: context.Background(), app: a, logger: zap.NewNop(), out: &out}
	require.NoError(t, (&MigrateCmd{}).Run(rc))
	assert.Equal(t, "migrations applied\n", out.String())
	out.Reset()
	return rc, &out
}

func seedUser(t *testing.T, rc *runContext, name string) int {
	t.Helper()
	ctx := context.Background()
	u, err := rc.app.Accounts.Register(ctx, name+"@example.com", name, "password123")
	require.NoError(t, err)
	_, err = rc.app.Habits.Create(ctx, u.ID, services.HabitInput{Title: "Run", Frequency: "daily"})
	require.NoError(t, err)
	return u.ID
}

func TestRemindersCmd_AllUsers(t *testing.T) {
	rc, out := newRunContext(t)
	seedUser(t, rc, "ada")
	seedUser(t, rc, "bob")

	require.NoError(t, (&RemindersCmd{}).Run(rc))
	assert.Equal(t, "users: 2, reminders sent: 2, failures: 0\n", out.String())
}

func TestRemindersCmd_UnknownUserFails(t *testing.T) {
	rc, out := newRunContext(t)
	seedUser(t, rc, "ada")

	err := (&RemindersCmd{UserID: 999}).Run(rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 reminder(s) failed")
	assert.Equal(t, "users: 1, reminders sent: 0, failures: 1\n", out.String())
}

func TestAchievementsCmd(t *testing.T) {
	rc, out := newRunContext(t)
	ctx := context.Background()
	ada := seedUser(t, rc, "ada")
	seedUser(t, rc, "bob")
	require.NoError(t, rc.app.Store.UpdateUserProgress(ctx, ada, 2500, 1))

	require.NoError(t, (&AchievementsCmd{UserID: ada}).Run(rc))
	assert.Equal(t, "users: 1, achievements found: 1, notifications sent: 1, failures: 0\n", out.String())

	user, err := rc.app.Store.GetUser(ctx, ada)
	require.NoError(t, err)
	assert.Equal(t, 3, user.Level)

	out.Reset()
	err = (&AchievementsCmd{UserID: 999}).Run(rc)
	require.Error(t, err)
	assert.Equal(t, "users: 1, achievements found: 0, notifications sent: 0, failures: 1\n", out.String())
}
