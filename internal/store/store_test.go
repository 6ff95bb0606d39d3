package store_test

import (
	"context"
	"testing"
	"time"

	"hopperai/chat-api/internal/model"
	"hopperai/chat-api/internal/store"
	"hopperai/chat-api/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newUser(email, username string) *model.User {
	return &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
	}
}

func TestCreateUser_Defaults(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	u := newUser("ada@example.com", "ada")
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := s.UserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.False(t, got.Active)
	assert.False(t, got.Admin)
	assert.Nil(t, got.SessionID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newUser("ada@example.com", "ada")))

	err := s.CreateUser(ctx, newUser("ada@example.com", "someone-else"))
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, newUser("ada@example.com", "ada")))

	err := s.CreateUser(ctx, newUser("other@example.com", "ada"))
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUserLookups_NotFound(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	_, err := s.UserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateChat_RequiresExistingUser(t *testing.T) {
	s := storetest.New(t)

	err := s.CreateChat(context.Background(), &model.Chat{
		UserID:   12345,
		Message:  "hi",
		Response: "hello",
	})
	assert.ErrorIs(t, err, store.ErrUserMissing)
}

func TestChatsByUser(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	ada := newUser("ada@example.com", "ada")
	bob := newUser("bob@example.com", "bob")
	require.NoError(t, s.CreateUser(ctx, ada))
	require.NoError(t, s.CreateUser(ctx, bob))

	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateChat(ctx, &model.Chat{UserID: ada.ID, Message: msg, Response: "re: " + msg}))
	}
	require.NoError(t, s.CreateChat(ctx, &model.Chat{UserID: bob.ID, Message: "bob's", Response: "x"}))

	chats, err := s.ChatsByUser(ctx, ada.ID, 10)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "third", chats[0].Message)
	assert.Equal(t, "re: third", chats[0].Response)
	for _, c := range chats {
		assert.Equal(t, ada.ID, c.UserID)
	}

	limited, err := s.ChatsByUser(ctx, ada.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.ChatsByUser(ctx, 999, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestActivate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	now := time.Now()

	u := newUser("ada@example.com", "ada")
	u.VerificationToken = ptr("hash-1")
	u.VerificationTokenExpires = ptr(now.Add(time.Hour))
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.Activate(ctx, "hash-1", now)
	require.NoError(t, err)
	assert.True(t, got.Active)

	stored, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationTokenExpires)

	// A consumed token never works twice
	_, err = s.Activate(ctx, "hash-1", now)
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
}

func TestActivate_Expired(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	now := time.Now()

	u := newUser("ada@example.com", "ada")
	u.VerificationToken = ptr("hash-1")
	u.VerificationTokenExpires = ptr(now.Add(-time.Minute))
	require.NoError(t, s.CreateUser(ctx, u))

	_, err := s.Activate(ctx, "hash-1", now)
	assert.ErrorIs(t, err, store.ErrTokenExpired)

	stored, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestActivate_UnknownToken(t *testing.T) {
	s := storetest.New(t)

	_, err := s.Activate(context.Background(), "nope", time.Now())
	assert.ErrorIs(t, err, store.ErrTokenInvalid)
}

func TestReissueToken(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	now := time.Now()

	u := newUser("ada@example.com", "ada")
	u.VerificationToken = ptr("old")
	u.VerificationTokenExpires = ptr(now.Add(-time.Minute))
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.ReissueToken(ctx, u.ID, "new", now.Add(time.Hour)))

	_, err := s.Activate(ctx, "old", now)
	assert.ErrorIs(t, err, store.ErrTokenInvalid)

	_, err = s.Activate(ctx, "new", now)
	require.NoError(t, err)

	err = s.ReissueToken(ctx, u.ID, "again", now.Add(time.Hour))
	assert.ErrorIs(t, err, store.ErrAlreadyActive)
}

func TestClearExpiredTokens(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	now := time.Now()

	stale := newUser("stale@example.com", "stale")
	stale.VerificationToken = ptr("stale")
	stale.VerificationTokenExpires = ptr(now.Add(-time.Hour))

	fresh := newUser("fresh@example.com", "fresh")
	fresh.VerificationToken = ptr("fresh")
	fresh.VerificationTokenExpires = ptr(now.Add(time.Hour))

	require.NoError(t, s.CreateUser(ctx, stale))
	require.NoError(t, s.CreateUser(ctx, fresh))

	n, err := s.ClearExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.UserByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VerificationToken)

	got, err = s.UserByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", *got.VerificationToken)
}

func TestSessions(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	u := newUser("ada@example.com", "ada")
	require.NoError(t, s.CreateUser(ctx, u))

	require.NoError(t, s.SetSession(ctx, u.ID, "sid-1"))

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SessionID)
	assert.Equal(t, "sid-1", *got.SessionID)

	require.NoError(t, s.ClearSession(ctx, u.ID))

	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.SessionID)

	assert.ErrorIs(t, s.SetSession(ctx, 999, "sid-2"), store.ErrNotFound)
}

func TestClaimResend(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	u := newUser("ada@example.com", "ada")
	require.NoError(t, s.CreateUser(ctx, u))

	now := time.Now()

	wait, err := s.ClaimResend(ctx, u.ID, now, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, wait)

	wait, err = s.ClaimResend(ctx, u.ID, now.Add(20*time.Second), time.Minute)
	assert.ErrorIs(t, err, store.ErrResendCooldown)
	assert.InDelta(t, 40*time.Second, wait, float64(time.Second))

	_, err = s.ClaimResend(ctx, u.ID, now.Add(2*time.Minute), time.Minute)
	require.NoError(t, err)

	var rr model.ResendRequest
	require.NoError(t, s.DB().Where("user_id = ?", u.ID).First(&rr).Error)
	assert.Equal(t, 2, rr.Count)
}

func TestClaimResend_MissingUser(t *testing.T) {
	s := storetest.New(t)

	_, err := s.ClaimResend(context.Background(), 999, time.Now(), time.Minute)
	assert.ErrorIs(t, err, store.ErrUserMissing)
}
