package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"

	"github.com/oneteam-app/backend/config"
	"github.com/oneteam-app/backend/pkg/queue"
)

func testMailer(dial func(m *gomail.Message) error) *InviteMailer {
	m := NewInviteMailer(config.EmailConfig{
		FromAddress: "noreply@oneteam.local",
		FromName:    "OneTeam",
	}, nil, nil)
	m.dial = dial
	return m
}

func inviteJob(t *testing.T, email string) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.InviteEmailPayload{
		Token:          uuid.New(),
		RecipientEmail: email,
		RegisterURL:    "http://localhost:3000/register?token=abc",
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeInviteEmail, Payload: payload}
}

func TestProcessSendsInvite(t *testing.T) {
	var sent *gomail.Message
	mailer := testMailer(func(m *gomail.Message) error {
		sent = m
		return nil
	})

	err := mailer.Process(context.Background(), inviteJob(t, "jane@example.com"))
	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"jane@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"You have been invited to OneTeam"}, sent.GetHeader("Subject"))
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	mailer := testMailer(func(m *gomail.Message) error { return nil })

	err := mailer.Process(context.Background(), &queue.Job{Type: "reindex"})
	assert.Error(t, err)
}

func TestProcessRejectsBadPayload(t *testing.T) {
	mailer := testMailer(func(m *gomail.Message) error { return nil })

	err := mailer.Process(context.Background(), &queue.Job{
		Type:    queue.JobTypeInviteEmail,
		Payload: json.RawMessage(`{not json`),
	})
	assert.Error(t, err)
}

func TestProcessPropagatesSendFailure(t *testing.T) {
	mailer := testMailer(func(m *gomail.Message) error {
		return assert.AnError
	})

	err := mailer.Process(context.Background(), inviteJob(t, "jane@example.com"))
	assert.ErrorIs(t, err, assert.AnError)
}
