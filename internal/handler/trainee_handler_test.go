package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraineeListRequiresClaims(t *testing.T) {
	handler := NewTraineeHandler(newFeedTestService(&fakeFeedPager{traineePages: 1}, time.Hour), nil)

	c, rec := handlerContext(t, "/trainees", nil)
	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTraineeListRejectsBadExpirationDate(t *testing.T) {
	pager := &fakeFeedPager{traineePages: 1}
	handler := NewTraineeHandler(newFeedTestService(pager, time.Hour), nil)

	c, rec := handlerContext(t, "/trainees?expirationDate=05-02-2024", feedClaims())
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, pager.traineeCallCount())
}

func TestTraineeListFirstCallLoadsPageOne(t *testing.T) {
	pager := &fakeFeedPager{traineePages: 2}
	handler := NewTraineeHandler(newFeedTestService(pager, time.Hour), nil)

	c, rec := handlerContext(t, "/trainees", feedClaims())
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, pager.traineeCallCount())
	assert.Equal(t, 1, pager.lastTraineeCall().Page)

	envelope := decodeEnvelope(t, rec)
	assert.Len(t, envelope.Data["trainees"], 1)
	assert.Equal(t, true, envelope.Data["hasMore"])
}

func TestTraineeListLoadMoreAppendsNextPage(t *testing.T) {
	pager := &fakeFeedPager{traineePages: 2}
	handler := NewTraineeHandler(newFeedTestService(pager, time.Hour), nil)

	c, _ := handlerContext(t, "/trainees", feedClaims())
	handler.List(c)

	c, rec := handlerContext(t, "/trainees?loadMore=true", feedClaims())
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, pager.traineeCallCount())
	assert.Equal(t, 2, pager.lastTraineeCall().Page)

	envelope := decodeEnvelope(t, rec)
	assert.Len(t, envelope.Data["trainees"], 2, "scroll window accumulates")
	assert.Equal(t, false, envelope.Data["hasMore"])
}

func TestTraineeListChangedFilterRestartsTheFeed(t *testing.T) {
	pager := &fakeFeedPager{traineePages: 2}
	handler := NewTraineeHandler(newFeedTestService(pager, time.Hour), nil)

	c, _ := handlerContext(t, "/trainees", feedClaims())
	handler.List(c)
	c, _ = handlerContext(t, "/trainees?loadMore=true", feedClaims())
	handler.List(c)

	// loadMore under a changed filter restarts at page one instead of appending.
	c, rec := handlerContext(t, "/trainees?loadMore=true&search=dani", feedClaims())
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, pager.traineeCallCount())
	last := pager.lastTraineeCall()
	assert.Equal(t, 1, last.Page)
	assert.Equal(t, "dani", last.Search)

	envelope := decodeEnvelope(t, rec)
	assert.Len(t, envelope.Data["trainees"], 1, "window restarts under the new filter")
}
