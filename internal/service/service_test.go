package service

import (
	"context"
	"testing"
	"time"

	"hopperai/chat-api/internal/model"
	"hopperai/chat-api/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationLink(t *testing.T) {
	m := NewMailer(MailConfig{PublicURL: "http://localhost:8000/"})

	assert.Equal(t, "http://localhost:8000/verify?token=abc123", m.VerificationLink("abc123"))
	assert.Equal(t, "http://localhost:8000/verify?token=a%2Bb", m.VerificationLink("a+b"))
}

func TestNewMailer_FromDefaultsToUsername(t *testing.T) {
	m := NewMailer(MailConfig{Username: "noreply@example.com"})
	assert.Equal(t, "noreply@example.com", m.cfg.From)

	m = NewMailer(MailConfig{Username: "smtp-user", From: "hello@example.com"})
	assert.Equal(t, "hello@example.com", m.cfg.From)
}

func TestMailerDialer(t *testing.T) {
	d := NewMailer(MailConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}).dialer()

	require.NotNil(t, d.TLSConfig)
	assert.Equal(t, "smtp.example.com", d.TLSConfig.ServerName)
	assert.False(t, d.TLSConfig.InsecureSkipVerify)
	assert.False(t, d.SSL)

	d = NewMailer(MailConfig{Host: "smtp.example.com", Port: 465}).dialer()
	assert.True(t, d.SSL)
}

func TestSendVerificationEmail_Unreachable(t *testing.T) {
	m := NewMailer(MailConfig{
		Host:     "127.0.0.1",
		Port:     1,
		Username: "noreply@example.com",
		Password: "secret",
	})

	start := time.Now()
	ok := m.SendVerificationEmail("ada@example.com", m.VerificationLink("abc"))

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 15*time.Second)
}

func TestSendVerificationEmail_NoHost(t *testing.T) {
	m := NewMailer(MailConfig{})
	assert.False(t, m.SendVerificationEmail("ada@example.com", "http://localhost/verify?token=x"))
}

func TestCleanupTokens(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expiredHash, freshHash := "expired", "fresh"

	expired := &model.User{Email: "a@example.com", Username: "a", PasswordHash: "x", VerificationToken: &expiredHash, VerificationTokenExpires: &past}
	fresh := &model.User{Email: "b@example.com", Username: "b", PasswordHash: "x", VerificationToken: &freshHash, VerificationTokenExpires: &future}
	require.NoError(t, s.CreateUser(ctx, expired))
	require.NoError(t, s.CreateUser(ctx, fresh))

	CleanupTokens(ctx, s)

	got, err := s.UserByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VerificationToken)
	assert.Nil(t, got.VerificationTokenExpires)

	got, err = s.UserByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerificationToken)
	assert.Equal(t, freshHash, *got.VerificationToken)
}

func TestStartTokenCleanup_InvalidSchedule(t *testing.T) {
	s := storetest.New(t)

	_, err := StartTokenCleanup("not a schedule", s)
	assert.Error(t, err)

	stop, err := StartTokenCleanup("@daily", s)
	require.NoError(t, err)
	stop()
}
