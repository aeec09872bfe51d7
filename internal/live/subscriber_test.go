package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// pushServer upgrades incoming connections and hands them to the test.
type pushServer struct {
	server *httptest.Server

	mu   sync.Mutex
	conn *websocket.Conn
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{}
	upgrader := websocket.Upgrader{}
	ps.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ps.mu.Lock()
		ps.conn = conn
		ps.mu.Unlock()
	}))
	t.Cleanup(ps.server.Close)
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.server.URL, "http")
}

func (ps *pushServer) connection(t *testing.T) *websocket.Conn {
	t.Helper()
	require.Eventually(t, func() bool {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		return ps.conn != nil
	}, time.Second, 5*time.Millisecond)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.conn
}

func (ps *pushServer) push(t *testing.T, event Event) {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, ps.connection(t).WriteMessage(websocket.TextMessage, raw))
}

func TestSubscriberDispatchesNewEntries(t *testing.T) {
	ps := newPushServer(t)
	sub, err := Dial(context.Background(), ps.url(), nil)
	require.NoError(t, err)
	defer sub.Close() //nolint:errcheck

	received := make(chan models.Entry, 1)
	sub.Subscribe(func(entry models.Entry) {
		received <- entry
	})

	ps.push(t, Event{Type: EventNewEntry, Entry: &models.Entry{ID: "e1", BaseID: "b1"}})

	select {
	case entry := <-received:
		assert.Equal(t, "e1", entry.ID)
		assert.Equal(t, "b1", entry.BaseID)
	case <-time.After(time.Second):
		t.Fatal("entry never reached the handler")
	}
}

func TestSubscriberIgnoresOtherEventTypes(t *testing.T) {
	ps := newPushServer(t)
	sub, err := Dial(context.Background(), ps.url(), nil)
	require.NoError(t, err)
	defer sub.Close() //nolint:errcheck

	received := make(chan models.Entry, 2)
	sub.Subscribe(func(entry models.Entry) {
		received <- entry
	})

	ps.push(t, Event{Type: "ping"})
	ps.push(t, Event{Type: EventNewEntry}) // missing entry payload
	ps.push(t, Event{Type: EventNewEntry, Entry: &models.Entry{ID: "e2"}})

	select {
	case entry := <-received:
		assert.Equal(t, "e2", entry.ID)
	case <-time.After(time.Second):
		t.Fatal("entry never reached the handler")
	}
	assert.Empty(t, received)
}

func TestSubscriberUnsubscribeStopsDelivery(t *testing.T) {
	ps := newPushServer(t)
	sub, err := Dial(context.Background(), ps.url(), nil)
	require.NoError(t, err)
	defer sub.Close() //nolint:errcheck

	first := make(chan models.Entry, 1)
	second := make(chan models.Entry, 1)
	id := sub.Subscribe(func(entry models.Entry) { first <- entry })
	sub.Subscribe(func(entry models.Entry) { second <- entry })
	sub.Unsubscribe(id)

	ps.push(t, Event{Type: EventNewEntry, Entry: &models.Entry{ID: "e3"}})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("remaining handler never fired")
	}
	assert.Empty(t, first)
}

func TestSubscriberJoinBaseSendsControlMessage(t *testing.T) {
	ps := newPushServer(t)
	sub, err := Dial(context.Background(), ps.url(), nil)
	require.NoError(t, err)
	defer sub.Close() //nolint:errcheck

	require.NoError(t, sub.JoinBase("b1"))

	var event Event
	conn := ps.connection(t)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "joinBase", event.Type)
	assert.Equal(t, "b1", event.BaseID)

	require.NoError(t, sub.LeaveBase("b1"))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "leaveBase", event.Type)
}

func TestSubscriberCloseSignalsDone(t *testing.T) {
	ps := newPushServer(t)
	sub, err := Dial(context.Background(), ps.url(), nil)
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "close is idempotent")

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("done never closed after Close")
	}

	assert.Error(t, sub.JoinBase("b1"), "control writes fail after close")
}
