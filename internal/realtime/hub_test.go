package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient() *Client {
	return &Client{
		ID:   uuid.New().String(),
		send: make(chan WSMessage, 8),
	}
}

func TestSubscribeAndLocalBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient()

	hub.Subscribe(c, CollectionUsers)
	assert.Equal(t, 1, hub.SubscriberCount(CollectionUsers))

	hub.Publish(CollectionUsers, "created", map[string]string{"email": "jane@example.com"})

	select {
	case msg := <-c.send:
		assert.Equal(t, CollectionUsers, msg.Collection)
		assert.Equal(t, "created", msg.Event)
		var data map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &data))
		assert.Equal(t, "jane@example.com", data["email"])
	default:
		t.Fatal("expected a broadcast message")
	}
}

func TestSubscribeRejectsUnknownCollection(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient()

	hub.Subscribe(c, "audit_log")
	assert.Equal(t, 0, hub.SubscriberCount("audit_log"))
}

func TestPublishSkipsOtherCollections(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient()
	hub.Subscribe(c, CollectionProjects)

	hub.Publish(CollectionUsers, "created", nil)
	assert.Empty(t, c.send)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient()
	hub.Subscribe(c, CollectionCountries)
	hub.Unsubscribe(c, CollectionCountries)

	hub.Publish(CollectionCountries, "added", map[string]string{"code": "IND"})
	assert.Empty(t, c.send)
	assert.Equal(t, 0, hub.SubscriberCount(CollectionCountries))
}

func TestDropReleasesAllSubscriptions(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient()
	other := newTestClient()
	hub.Subscribe(c, CollectionUsers)
	hub.Subscribe(c, CollectionDesignations)
	hub.Subscribe(other, CollectionUsers)

	hub.Drop(c)
	assert.Equal(t, 1, hub.SubscriberCount(CollectionUsers))
	assert.Equal(t, 0, hub.SubscriberCount(CollectionDesignations))
}

func TestKnownCollection(t *testing.T) {
	assert.True(t, KnownCollection(CollectionUsers))
	assert.True(t, KnownCollection(CollectionDesignations))
	assert.False(t, KnownCollection(""))
	assert.False(t, KnownCollection("sessions"))
}
