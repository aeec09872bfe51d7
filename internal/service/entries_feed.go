package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/live"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/upstream"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
)

// EntryPager fetches one page of entries from the backend.
type EntryPager interface {
	ListEntriesPage(ctx context.Context, req upstream.EntryPageRequest) ([]models.Entry, upstream.PageInfo, error)
}

// EntriesFilter is the server-side filter applied to the entries feed.
type EntriesFilter struct {
	Search          string
	DepartmentID    string
	SubDepartmentID string
	StartDate       string
	EndDate         string
}

// EntriesFeed serves the paginated entries table. Search input is debounced: each
// SetSearch restarts the timer, and only the value standing when it fires reaches the
// backend. A live push event is matched against the current filter and, on match,
// triggers a full refetch of the current page; pushed entries are never spliced into
// the page locally, the backend response stays authoritative.
type EntriesFeed struct {
	pager    EntryPager
	logger   *zap.Logger
	token    string
	scope    models.Scope
	pageSize int
	debounce time.Duration

	mu          sync.Mutex
	filter      EntriesFilter
	entries     []models.Entry
	page        int
	pages       int
	total       int
	closed      bool
	refreshing  bool
	gen         uint64
	searchTimer *time.Timer

	liveSub *live.Subscriber
	subID   string
}

// NewEntriesFeed constructs a feed positioned before its first fetch.
func NewEntriesFeed(pager EntryPager, token string, scope models.Scope, pageSize int, debounce time.Duration, logger *zap.Logger) *EntriesFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &EntriesFeed{
		pager:    pager,
		logger:   logger,
		token:    token,
		scope:    scope,
		pageSize: pageSize,
		debounce: debounce,
		page:     1,
	}
}

// AttachLive registers the feed on the push channel. Detached again on Close.
func (f *EntriesFeed) AttachLive(sub *live.Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || sub == nil || f.liveSub != nil {
		return
	}
	f.liveSub = sub
	f.subID = sub.Subscribe(f.onLiveEntry)
}

// Current returns a copy of the page contents and the pagination metadata.
func (f *EntriesFeed) Current() ([]models.Entry, models.Pagination) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Entry, len(f.entries))
	copy(out, f.entries)
	return out, models.Pagination{
		Page:       f.page,
		PageSize:   f.pageSize,
		TotalCount: f.total,
		TotalPages: f.pages,
	}
}

// Filter returns the feed's current filter, including any search value already applied.
func (f *EntriesFeed) Filter() EntriesFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// SetFilters replaces the structural filters, resets to page one, and fetches. A
// pending debounced search is cancelled; the search value inside filter wins.
func (f *EntriesFeed) SetFilters(ctx context.Context, filter EntriesFilter) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return appErrors.ErrFeedClosed
	}
	f.stopSearchTimerLocked()
	f.filter = filter
	f.page = 1
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	return f.fetch(ctx, gen, 1, filter)
}

// SetSearch schedules a debounced search. Successive calls within the debounce window
// cancel and restart the timer; the request is issued only for the final value.
func (f *EntriesFeed) SetSearch(term string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.stopSearchTimerLocked()
	f.searchTimer = time.AfterFunc(f.debounce, func() {
		f.applySearch(term)
	})
}

// Page fetches the requested page under the current filter.
func (f *EntriesFeed) Page(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return appErrors.ErrFeedClosed
	}
	gen := f.gen
	filter := f.filter
	f.mu.Unlock()

	return f.fetch(ctx, gen, page, filter)
}

// Refresh refetches the current page, replacing the visible rows wholesale.
func (f *EntriesFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return appErrors.ErrFeedClosed
	}
	gen := f.gen
	page := f.page
	filter := f.filter
	f.mu.Unlock()

	return f.fetch(ctx, gen, page, filter)
}

// Close releases the live subscription and marks the feed dead. In-flight fetches and
// pending debounce timers resolving afterwards are discarded.
func (f *EntriesFeed) Close() {
	f.mu.Lock()
	f.closed = true
	f.gen++
	f.stopSearchTimerLocked()
	f.entries = nil
	sub, subID := f.liveSub, f.subID
	f.liveSub, f.subID = nil, ""
	f.mu.Unlock()

	if sub != nil && subID != "" {
		sub.Unsubscribe(subID)
	}
}

func (f *EntriesFeed) applySearch(term string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.filter.Search = term
	f.page = 1
	f.gen++
	gen := f.gen
	filter := f.filter
	f.mu.Unlock()

	if err := f.fetch(context.Background(), gen, 1, filter); err != nil {
		f.logger.Warn("debounced search fetch failed", zap.String("search", term), zap.Error(err))
	}
}

// onLiveEntry runs on the push channel's read pump and must not block. The refetch is
// dispatched on its own goroutine; while one is in flight further matching events are
// coalesced into it, since the refetch reloads the whole page anyway.
func (f *EntriesFeed) onLiveEntry(entry models.Entry) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	filter := f.filter
	f.mu.Unlock()

	if !f.matches(entry, filter) {
		return
	}

	f.mu.Lock()
	if f.closed || f.refreshing {
		f.mu.Unlock()
		return
	}
	f.refreshing = true
	f.mu.Unlock()

	go func() {
		defer func() {
			f.mu.Lock()
			f.refreshing = false
			f.mu.Unlock()
		}()
		if err := f.Refresh(context.Background()); err != nil {
			f.logger.Warn("live refresh failed", zap.Error(err))
		}
	}()
}

// matches evaluates a pushed entry against the feed filter to decide whether the page
// could be affected. The date upper bound is inclusive through end of day.
func (f *EntriesFeed) matches(entry models.Entry, filter EntriesFilter) bool {
	if !f.scope.AllowsBase(entry.BaseID) {
		return false
	}
	if filter.DepartmentID != "" && entry.DepartmentID != filter.DepartmentID {
		return false
	}
	if filter.SubDepartmentID != "" && entry.SubDepartmentID != filter.SubDepartmentID {
		return false
	}
	if filter.StartDate != "" && entry.EntryDate < filter.StartDate {
		return false
	}
	if filter.EndDate != "" && entry.EntryDate > filter.EndDate {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(entry.TraineeFullName), needle) &&
			!strings.Contains(strings.ToLower(entry.TraineePersonalID), needle) {
			return false
		}
	}
	return true
}

func (f *EntriesFeed) stopSearchTimerLocked() {
	if f.searchTimer != nil {
		f.searchTimer.Stop()
		f.searchTimer = nil
	}
}

func (f *EntriesFeed) fetch(ctx context.Context, gen uint64, page int, filter EntriesFilter) error {
	req := upstream.EntryPageRequest{
		Token:           f.token,
		Page:            page,
		Limit:           f.pageSize,
		Search:          filter.Search,
		DepartmentID:    filter.DepartmentID,
		SubDepartmentID: filter.SubDepartmentID,
		StartDate:       filter.StartDate,
		EndDate:         filter.EndDate,
	}
	if f.scope.Role == models.RoleGymAdmin {
		req.BaseID = f.scope.BaseID
	}

	entries, info, err := f.pager.ListEntriesPage(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.gen != gen {
		return nil
	}
	if err != nil {
		f.logger.Warn("entries page fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}
	f.entries = entries
	f.page = page
	f.pages = info.Pages
	f.total = info.Total
	return nil
}
