package invites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/models"
)

type memStore struct {
	invites map[uuid.UUID]*models.Invite
}

func newMemStore() *memStore {
	return &memStore{invites: make(map[uuid.UUID]*models.Invite)}
}

func (s *memStore) Create(_ context.Context, email string, ttl time.Duration) (*models.Invite, error) {
	inv := &models.Invite{
		Token:     uuid.New(),
		Email:     email,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
	s.invites[inv.Token] = inv
	return inv, nil
}

func (s *memStore) GetByToken(_ context.Context, token uuid.UUID) (*models.Invite, error) {
	inv, ok := s.invites[token]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) MarkUsed(_ context.Context, token uuid.UUID) error {
	inv, ok := s.invites[token]
	if !ok {
		return ErrNotFound
	}
	inv.Used = true
	return nil
}

func redeem(t *testing.T, h *Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/invites/"+token+"/redeem", nil)
	c.Params = gin.Params{{Key: "token", Value: token}}
	h.Redeem(c)
	return w
}

func TestRedeemMarksInviteUsed(t *testing.T) {
	store := newMemStore()
	inv, err := store.Create(context.Background(), "jane@example.com", time.Hour)
	require.NoError(t, err)
	h := &Handler{repo: store, logger: zap.NewNop()}

	w := redeem(t, h, inv.Token.String())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.invites[inv.Token].Used)

	// a second redemption is rejected
	w = redeem(t, h, inv.Token.String())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRedeemRejectsExpired(t *testing.T) {
	store := newMemStore()
	inv, err := store.Create(context.Background(), "jane@example.com", -time.Minute)
	require.NoError(t, err)
	h := &Handler{repo: store, logger: zap.NewNop()}

	w := redeem(t, h, inv.Token.String())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, store.invites[inv.Token].Used)
}

func TestRedeemUnknownToken(t *testing.T) {
	h := &Handler{repo: newMemStore(), logger: zap.NewNop()}

	w := redeem(t, h, uuid.New().String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = redeem(t, h, "not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
