package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stridestreak/internal/clock"
	"stridestreak/internal/db/dbtest"
	"stridestreak/internal/models"
	"stridestreak/internal/store"
)

// Monday.
var monday = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failOn string
}

func (m *fakeMailer) Name() string { return "fake" }

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(subject, m.failOn) {
		return errors.New("relay refused")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type testEnv struct {
	store        *store.Store
	clock        *clock.Fake
	enc          *EncryptionService
	mailer       *fakeMailer
	accounts     *AccountService
	habits       *HabitService
	notifier     *Notifier
	reminders    *ReminderService
	achievements *AchievementService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	enc, err := NewEncryptionService(bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	require.NoError(t, err)

	logger := zap.NewNop()
	e := &testEnv{
		store:  store.New(dbtest.Open(t)),
		clock:  clock.NewFake(monday),
		enc:    enc,
		mailer: &fakeMailer{},
	}
	e.accounts = NewAccountService(e.store, enc, e.clock)
	e.accounts.hashCost = bcrypt.MinCost
	e.habits = NewHabitService(e.store, e.clock, logger)
	e.notifier = NewNotifier(e.store, e.mailer, enc, e.clock, logger)
	e.reminders = NewReminderService(e.store, e.notifier, e.clock, logger)
	e.achievements = NewAchievementService(e.store, e.notifier, logger)
	return e
}

func (e *testEnv) register(t *testing.T, name string) models.User {
	t.Helper()
	u, err := e.accounts.Register(context.Background(), name+"@example.com", name, "password123")
	require.NoError(t, err)
	return u
}

func (e *testEnv) habit(t *testing.T, userID int, title, freq string) models.Habit {
	t.Helper()
	h, err := e.habits.Create(context.Background(), userID, HabitInput{Title: title, Frequency: freq})
	require.NoError(t, err)
	return h
}

// setStreak forces a habit's streak fields, bypassing the engine.
func (e *testEnv) setStreak(t *testing.T, userID, habitID, streak int, last time.Time) {
	t.Helper()
	ctx := context.Background()
	h, err := e.store.GetHabit(ctx, userID, habitID)
	require.NoError(t, err)
	h.CurrentStreak, h.LongestStreak, h.LastCompleted = streak, max(streak, h.LongestStreak), &last
	require.NoError(t, e.store.SaveHabitStreak(ctx, h, h.Version))
}
