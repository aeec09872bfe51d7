package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// EventNewEntry is the push-channel event emitted when a gym entry is recorded.
const EventNewEntry = "newEntry"

const (
	controlJoinBase  = "joinBase"
	controlLeaveBase = "leaveBase"
)

// Event is the envelope for messages on the push channel.
type Event struct {
	Type   string        `json:"type"`
	BaseID string        `json:"baseId,omitempty"`
	Entry  *models.Entry `json:"entry,omitempty"`
}

// EntryHandler consumes newEntry events. Handlers run on the read-pump goroutine and
// must not block.
type EntryHandler func(models.Entry)

// Subscriber maintains a single websocket connection to the backend's push channel
// and fans newEntry events out to registered handlers. There is no automatic
// reconnect; a dropped connection surfaces through Done.
type Subscriber struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu       sync.Mutex
	handlers map[string]EntryHandler
	closed   bool

	done chan struct{}
}

// Dial connects to the push channel and starts the read pump.
func Dial(ctx context.Context, socketURL string, logger *zap.Logger) (*Subscriber, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return nil, err
	}
	s := &Subscriber{
		conn:     conn,
		logger:   logger,
		handlers: make(map[string]EntryHandler),
		done:     make(chan struct{}),
	}
	go s.readPump()
	return s, nil
}

// JoinBase scopes the subscription to entries from one base.
func (s *Subscriber) JoinBase(baseID string) error {
	return s.writeControl(controlJoinBase, baseID)
}

// LeaveBase removes a base scope previously joined.
func (s *Subscriber) LeaveBase(baseID string) error {
	return s.writeControl(controlLeaveBase, baseID)
}

// Subscribe registers a handler and returns its id for later removal. Callers must
// Unsubscribe on teardown; a leaked handler keeps firing for the connection lifetime.
func (s *Subscriber) Subscribe(h EntryHandler) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.handlers[id] = h
	s.mu.Unlock()
	return id
}

// Unsubscribe removes a previously registered handler.
func (s *Subscriber) Unsubscribe(id string) {
	s.mu.Lock()
	delete(s.handlers, id)
	s.mu.Unlock()
}

// Done is closed when the read pump exits (connection closed or failed).
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// Close tears the connection down. Safe to call more than once.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Subscriber) writeControl(msgType, baseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteJSON(Event{Type: msgType, BaseID: baseID})
}

func (s *Subscriber) readPump() {
	defer close(s.done)
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.logger.Warn("push channel read failed", zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			s.logger.Warn("push channel message malformed", zap.Error(err))
			continue
		}
		if event.Type != EventNewEntry || event.Entry == nil {
			continue
		}

		s.mu.Lock()
		handlers := make([]EntryHandler, 0, len(s.handlers))
		for _, h := range s.handlers {
			handlers = append(handlers, h)
		}
		s.mu.Unlock()

		for _, h := range handlers {
			h(*event.Entry)
		}
	}
}
