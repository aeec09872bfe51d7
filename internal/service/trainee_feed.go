package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/upstream"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
)

// TraineePager fetches one page of trainees from the backend.
type TraineePager interface {
	ListTraineesPage(ctx context.Context, req upstream.TraineePageRequest) ([]models.Trainee, upstream.PageInfo, error)
}

// TraineeFilter is the server-side filter applied to the trainee feed.
type TraineeFilter struct {
	Search          string
	ShowOnlyExpired bool
	ExpirationDate  string
}

// TraineeFeed accumulates trainee pages for infinite scrolling. Changing the filter
// restarts the window at page one; LoadMore appends the next page while the backend
// reports more. All state is guarded by one mutex; fetches run outside the lock and
// their results are applied only if the feed generation is unchanged, so a reset or
// Close during an in-flight fetch discards the late result instead of splicing it in.
type TraineeFeed struct {
	pager    TraineePager
	logger   *zap.Logger
	token    string
	scope    models.Scope
	pageSize int

	mu      sync.Mutex
	filter  TraineeFilter
	visible []models.Trainee
	page    int
	pages   int
	hasMore bool
	loading bool
	closed  bool
	gen     uint64
}

// NewTraineeFeed constructs an empty feed. Call SetFilter to load the first page.
func NewTraineeFeed(pager TraineePager, token string, scope models.Scope, pageSize int, logger *zap.Logger) *TraineeFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &TraineeFeed{
		pager:    pager,
		logger:   logger,
		token:    token,
		scope:    scope,
		pageSize: pageSize,
		hasMore:  true,
	}
}

// Filter returns the feed's current filter.
func (f *TraineeFeed) Filter() TraineeFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// Visible returns a copy of the accumulated window and whether more pages remain.
func (f *TraineeFeed) Visible() ([]models.Trainee, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Trainee, len(f.visible))
	copy(out, f.visible)
	return out, f.hasMore
}

// SetFilter resets the feed to page one under the new filter and fetches it. Previously
// accumulated results are dropped, never reused across filters.
func (f *TraineeFeed) SetFilter(ctx context.Context, filter TraineeFilter) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return appErrors.ErrFeedClosed
	}
	f.filter = filter
	f.visible = nil
	f.page = 0
	f.pages = 0
	f.hasMore = true
	f.loading = true
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	return f.fetch(ctx, gen, 1, filter)
}

// LoadMore appends the next page. It is a no-op while a fetch is in flight or when the
// backend reported no further pages.
func (f *TraineeFeed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return appErrors.ErrFeedClosed
	}
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	gen := f.gen
	next := f.page + 1
	filter := f.filter
	f.mu.Unlock()

	return f.fetch(ctx, gen, next, filter)
}

// Close marks the feed dead. In-flight fetches resolving afterwards are discarded.
func (f *TraineeFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.gen++
	f.visible = nil
	f.hasMore = false
	f.loading = false
}

func (f *TraineeFeed) fetch(ctx context.Context, gen uint64, page int, filter TraineeFilter) error {
	req := upstream.TraineePageRequest{
		Token:           f.token,
		Page:            page,
		Limit:           f.pageSize,
		Search:          filter.Search,
		ShowOnlyExpired: filter.ShowOnlyExpired,
		ExpirationDate:  filter.ExpirationDate,
	}
	if f.scope.Role == models.RoleGymAdmin {
		req.BaseID = f.scope.BaseID
	}

	trainees, info, err := f.pager.ListTraineesPage(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.gen != gen {
		// Feed was reset or closed while the request was in flight.
		return nil
	}
	f.loading = false
	if err != nil {
		// Keep the last known good window; the caller may retry LoadMore.
		f.logger.Warn("trainee page fetch failed", zap.Int("page", page), zap.Error(err))
		return err
	}
	f.visible = append(f.visible, trainees...)
	f.page = page
	f.pages = info.Pages
	f.hasMore = page < info.Pages
	return nil
}
