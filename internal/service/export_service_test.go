package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/dto"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/upstream"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/config"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/storage"
)

type fakeEntryLister struct {
	mu      sync.Mutex
	lastReq upstream.EntryPageRequest
	entries []models.Entry
	err     error
}

func (f *fakeEntryLister) FilteredEntries(_ context.Context, req upstream.EntryPageRequest) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	return f.entries, f.err
}

func (f *fakeEntryLister) request() upstream.EntryPageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func newTestExportService(t *testing.T, lister *fakeEntryLister, snapshots SnapshotProvider) *ExportService {
	t.Helper()
	store, err := storage.NewArtifactStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("test-secret", time.Hour)
	svc := NewExportService(lister, snapshots, store, signer, nil, zap.NewNop(), config.ExportsConfig{
		WorkerConcurrency: 1,
		WorkerRetries:     0,
	})
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)
	t.Cleanup(func() {
		cancel()
		svc.Stop()
	})
	return svc
}

func generalClaims() *models.JWTClaims {
	return &models.JWTClaims{AdminID: "a1", Role: models.RoleGeneralAdmin}
}

func waitForStatus(t *testing.T, svc *ExportService, id string, claims *models.JWTClaims, want models.ExportStatus) *dto.ExportStatusResponse {
	t.Helper()
	var last *dto.ExportStatusResponse
	require.Eventually(t, func() bool {
		status, err := svc.GetStatus(id, claims)
		if err != nil {
			return false
		}
		last = status
		return status.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return last
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestExportService(t, &fakeEntryLister{}, &fakeSnapshotProvider{})

	_, err := svc.CreateJob(context.Background(), dto.ExportRequest{Format: "xlsx"}, "tok", generalClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportRendersCSVEndToEnd(t *testing.T) {
	lister := &fakeEntryLister{entries: []models.Entry{
		successEntry("e1", "t1", "d1", "s1", "b1", "2024-02-05"),
	}}
	svc := newTestExportService(t, lister, &fakeSnapshotProvider{snap: analyticsSnapshot()})
	claims := generalClaims()

	created, err := svc.CreateJob(context.Background(), dto.ExportRequest{
		Format:       models.ExportFormatCSV,
		DepartmentID: "d1",
		StartDate:    "2024-02-01",
		EndDate:      "2024-02-29",
	}, "tok", claims)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, created.Status)

	status := waitForStatus(t, svc, created.ID, claims, models.ExportStatusCompleted)
	assert.Equal(t, 100, status.Progress)
	require.NotEmpty(t, status.DownloadURL)
	require.NotNil(t, status.ExpiresAt)

	req := lister.request()
	assert.Equal(t, "d1", req.DepartmentID)
	assert.Equal(t, "2024-02-01", req.StartDate)
	assert.Empty(t, req.BaseID, "generalAdmin exports are not base scoped")

	parsed, err := url.Parse(status.DownloadURL)
	require.NoError(t, err)
	download, err := svc.ResolveDownload(created.ID, parsed.Query().Get("token"))
	require.NoError(t, err)
	defer download.File.Close() //nolint:errcheck

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(body), "\ufeff")
	assert.True(t, strings.HasPrefix(content, "Date,Time,Name"), content)
	assert.Contains(t, content, "לוגיסטיקה", "department id resolves to its name")
	assert.Equal(t, models.ExportFormatCSV, download.Format)
}

func TestExportPinsGymAdminToOwnBase(t *testing.T) {
	lister := &fakeEntryLister{}
	svc := newTestExportService(t, lister, &fakeSnapshotProvider{snap: analyticsSnapshot()})
	claims := &models.JWTClaims{AdminID: "a2", Role: models.RoleGymAdmin, BaseID: "b1"}

	created, err := svc.CreateJob(context.Background(), dto.ExportRequest{Format: models.ExportFormatCSV}, "tok", claims)
	require.NoError(t, err)
	waitForStatus(t, svc, created.ID, claims, models.ExportStatusCompleted)

	assert.Equal(t, "b1", lister.request().BaseID)
}

func TestExportStatusVisibility(t *testing.T) {
	svc := newTestExportService(t, &fakeEntryLister{}, &fakeSnapshotProvider{snap: analyticsSnapshot()})
	creator := &models.JWTClaims{AdminID: "a2", Role: models.RoleGymAdmin, BaseID: "b1"}

	created, err := svc.CreateJob(context.Background(), dto.ExportRequest{Format: models.ExportFormatCSV}, "tok", creator)
	require.NoError(t, err)

	_, err = svc.GetStatus(created.ID, &models.JWTClaims{AdminID: "a3", Role: models.RoleGymAdmin, BaseID: "b1"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.GetStatus(created.ID, generalClaims())
	assert.NoError(t, err, "generalAdmin sees every job")

	_, err = svc.GetStatus("no-such-job", generalClaims())
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportFailureSurfacesInStatus(t *testing.T) {
	lister := &fakeEntryLister{err: appErrors.Clone(appErrors.ErrUpstream, "backend down")}
	svc := newTestExportService(t, lister, &fakeSnapshotProvider{snap: analyticsSnapshot()})
	claims := generalClaims()

	created, err := svc.CreateJob(context.Background(), dto.ExportRequest{Format: models.ExportFormatPDF}, "tok", claims)
	require.NoError(t, err)

	status := waitForStatus(t, svc, created.ID, claims, models.ExportStatusFailed)
	assert.Equal(t, "failed to load entries", status.Error)
	assert.Empty(t, status.DownloadURL)
}

func TestExportDownloadRejectsForgedToken(t *testing.T) {
	svc := newTestExportService(t, &fakeEntryLister{}, &fakeSnapshotProvider{snap: analyticsSnapshot()})

	_, err := svc.ResolveDownload("some-job", "forged-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
