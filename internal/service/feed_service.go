package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/live"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/config"
)

// feedIdleTTL bounds how long an untouched feed keeps its state and live subscription.
const feedIdleTTL = 30 * time.Minute

// FeedPager is the upstream surface the feeds page through.
type FeedPager interface {
	TraineePager
	EntryPager
}

type traineeFeedHandle struct {
	feed     *TraineeFeed
	lastSeen time.Time
}

type entriesFeedHandle struct {
	feed     *EntriesFeed
	lastSeen time.Time
}

// FeedService owns the per-admin feed instances. Feeds are created lazily on first
// use, keyed by admin id, and closed after an idle period or on shutdown.
type FeedService struct {
	pager  FeedPager
	liveCh *live.Subscriber
	cfg    config.FeedsConfig
	logger *zap.Logger

	mu       sync.Mutex
	trainees map[string]*traineeFeedHandle
	entries  map[string]*entriesFeedHandle
	now      func() time.Time
}

// NewFeedService constructs a feed registry. liveCh may be nil when the push channel
// is disabled; entries feeds then simply never live-refresh.
func NewFeedService(pager FeedPager, liveCh *live.Subscriber, cfg config.FeedsConfig, logger *zap.Logger) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{
		pager:    pager,
		liveCh:   liveCh,
		cfg:      cfg,
		logger:   logger,
		trainees: make(map[string]*traineeFeedHandle),
		entries:  make(map[string]*entriesFeedHandle),
		now:      time.Now,
	}
}

// TraineeFeedFor returns the admin's trainee feed, creating it on first use.
func (s *FeedService) TraineeFeedFor(adminID, token string, scope models.Scope) *TraineeFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	if handle, ok := s.trainees[adminID]; ok {
		handle.lastSeen = s.now()
		return handle.feed
	}
	feed := NewTraineeFeed(s.pager, token, scope, s.cfg.TraineePageSize, s.logger)
	s.trainees[adminID] = &traineeFeedHandle{feed: feed, lastSeen: s.now()}
	return feed
}

// EntriesFeedFor returns the admin's entries feed, creating and live-attaching it on
// first use.
func (s *FeedService) EntriesFeedFor(adminID, token string, scope models.Scope) *EntriesFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()

	if handle, ok := s.entries[adminID]; ok {
		handle.lastSeen = s.now()
		return handle.feed
	}
	feed := NewEntriesFeed(s.pager, token, scope, s.cfg.EntryPageSize, s.cfg.SearchDebounce, s.logger)
	if s.liveCh != nil {
		feed.AttachLive(s.liveCh)
		if scope.Role == models.RoleGymAdmin {
			// Rooms are per base. Joins are not reference counted; other feeds on
			// the same base keep receiving regardless.
			if err := s.liveCh.JoinBase(scope.BaseID); err != nil {
				s.logger.Warn("joinBase failed", zap.String("base_id", scope.BaseID), zap.Error(err))
			}
		}
	}
	s.entries[adminID] = &entriesFeedHandle{feed: feed, lastSeen: s.now()}
	return feed
}

// CloseFor tears down both of the admin's feeds.
func (s *FeedService) CloseFor(adminID string) {
	s.mu.Lock()
	traineeHandle := s.trainees[adminID]
	entriesHandle := s.entries[adminID]
	delete(s.trainees, adminID)
	delete(s.entries, adminID)
	s.mu.Unlock()

	if traineeHandle != nil {
		traineeHandle.feed.Close()
	}
	if entriesHandle != nil {
		entriesHandle.feed.Close()
	}
}

// CloseAll tears down every feed. Called on shutdown.
func (s *FeedService) CloseAll() {
	s.mu.Lock()
	traineeHandles := s.trainees
	entriesHandles := s.entries
	s.trainees = make(map[string]*traineeFeedHandle)
	s.entries = make(map[string]*entriesFeedHandle)
	s.mu.Unlock()

	for _, handle := range traineeHandles {
		handle.feed.Close()
	}
	for _, handle := range entriesHandles {
		handle.feed.Close()
	}
}

func (s *FeedService) sweepLocked() {
	cutoff := s.now().Add(-feedIdleTTL)
	for id, handle := range s.trainees {
		if handle.lastSeen.Before(cutoff) {
			handle.feed.Close()
			delete(s.trainees, id)
		}
	}
	for id, handle := range s.entries {
		if handle.lastSeen.Before(cutoff) {
			handle.feed.Close()
			delete(s.entries, id)
		}
	}
}
