package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/dto"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/upstream"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/config"
	appErrors "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/errors"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/export"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/jobs"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/storage"
)

// exportResultTTL bounds how long rendered files and finished jobs are kept.
const exportResultTTL = 24 * time.Hour

// EntryLister pulls the complete filtered entry listing for rendering.
type EntryLister interface {
	FilteredEntries(ctx context.Context, req upstream.EntryPageRequest) ([]models.Entry, error)
}

type exportPayload struct {
	Token string
	Scope models.Scope
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File     *os.File
	Filename string
	Format   models.ExportFormat
}

// ExportService renders filtered entry listings to CSV or PDF asynchronously. Jobs are
// tracked in memory and processed by a worker pool; the rendered file on disk is the
// durable artifact, reachable through an HMAC-signed download token.
type ExportService struct {
	lister    EntryLister
	snapshots SnapshotProvider
	store     *storage.ArtifactStore
	signer    *storage.DownloadSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.ExportsConfig

	queue *jobs.Queue[exportPayload]

	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportService constructs the export service. Call Start before accepting jobs.
func NewExportService(lister EntryLister, snapshots SnapshotProvider, store *storage.ArtifactStore, signer *storage.DownloadSigner, validate *validator.Validate, logger *zap.Logger, cfg config.ExportsConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &ExportService{
		lister:    lister,
		snapshots: snapshots,
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(map[string]*models.ExportJob),
	}
	s.queue = jobs.New("entry-exports", s.process, jobs.Options{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool and the artifact cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// CreateJob validates the request, freezes the filter into a job, and enqueues it. A
// gymAdmin's export is always pinned to their own base.
func (s *ExportService) CreateJob(ctx context.Context, req dto.ExportRequest, token string, claims *models.JWTClaims) (*dto.ExportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	scope := models.ScopeFor(claims.Role, claims.BaseID)
	params := models.ExportParams{
		Search:          req.Search,
		DepartmentID:    req.DepartmentID,
		SubDepartmentID: req.SubDepartmentID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}
	if scope.Role == models.RoleGymAdmin {
		params.BaseID = scope.BaseID
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		Format:    req.Format,
		Status:    models.ExportStatusQueued,
		Params:    params,
		CreatedBy: claims.AdminID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Task[exportPayload]{
		ID:      job.ID,
		Payload: exportPayload{Token: token, Scope: scope},
	})
	if err != nil {
		s.finishJob(job.ID, models.ExportStatusFailed, "", "failed to enqueue export")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}

	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus reports job progress. Only the creator or a generalAdmin may look. Once
// completed, the response carries a signed download URL.
func (s *ExportService) GetStatus(id string, claims *models.JWTClaims) (*dto.ExportStatusResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	if claims.Role != models.RoleGeneralAdmin && job.CreatedBy != claims.AdminID {
		return nil, appErrors.ErrForbidden
	}

	resp := &dto.ExportStatusResponse{
		ID:         job.ID,
		Status:     job.Status,
		Progress:   job.Progress,
		Format:     job.Format,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
	if job.Status == models.ExportStatusCompleted && job.Filename != "" && s.signer != nil {
		token, expiresAt, err := s.signer.Sign(job.ID, job.Filename)
		if err != nil {
			s.logger.Warn("failed to sign download url", zap.String("job_id", job.ID), zap.Error(err))
		} else {
			resp.DownloadURL = fmt.Sprintf("/api/v1/exports/%s/download?token=%s", job.ID, token)
			resp.ExpiresAt = &expiresAt
		}
	}
	return resp, nil
}

// ResolveDownload validates the signed token and opens the rendered file.
func (s *ExportService) ResolveDownload(id, token string) (*ExportDownload, error) {
	jobID, artifact, err := s.signer.Verify(token)
	if err != nil || jobID != id {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}

	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok || job.Status != models.ExportStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not available")
	}

	file, err := s.store.Open(artifact)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file missing")
	}
	return &ExportDownload{File: file, Filename: artifact, Format: job.Format}, nil
}

func (s *ExportService) process(ctx context.Context, task jobs.Task[exportPayload]) error {
	payload := task.Payload

	s.mu.Lock()
	job, found := s.jobs[task.ID]
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("export job %s vanished", task.ID)
	}
	job.Status = models.ExportStatusProcessing
	job.Progress = 10
	params := job.Params
	format := job.Format
	s.mu.Unlock()

	entries, err := s.lister.FilteredEntries(ctx, upstream.EntryPageRequest{
		Token:           payload.Token,
		Search:          params.Search,
		DepartmentID:    params.DepartmentID,
		SubDepartmentID: params.SubDepartmentID,
		BaseID:          params.BaseID,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
	})
	if err != nil {
		s.finishJob(task.ID, models.ExportStatusFailed, "", "failed to load entries")
		return err
	}
	s.setProgress(task.ID, 50)

	snap, _, err := s.snapshots.Get(ctx, payload.Token, payload.Scope)
	if err != nil {
		// Name lookups only; missing labels degrade to ids rather than fail the job.
		s.logger.Warn("snapshot unavailable for export labels", zap.Error(err))
		snap = nil
	}

	dataset := buildEntryDataset(entries, snap)
	var rendered []byte
	switch format {
	case models.ExportFormatPDF:
		rendered, err = export.NewPDFExporter().Render(dataset, "Entry Report")
	default:
		rendered, err = export.NewCSVExporter().Render(dataset)
	}
	if err != nil {
		s.finishJob(task.ID, models.ExportStatusFailed, "", "failed to render export")
		return err
	}
	s.setProgress(task.ID, 80)

	filename := fmt.Sprintf("entries-%s.%s", task.ID, format)
	if err := s.store.Save(filename, rendered); err != nil {
		s.finishJob(task.ID, models.ExportStatusFailed, "", "failed to store export")
		return err
	}

	s.finishJob(task.ID, models.ExportStatusCompleted, filename, "")
	s.logger.Info("export completed",
		zap.String("job_id", task.ID),
		zap.String("format", string(format)),
		zap.Int("rows", len(entries)))
	return nil
}

func (s *ExportService) setProgress(id string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Progress = progress
	}
}

func (s *ExportService) finishJob(id string, status models.ExportStatus, filename, errMsg string) {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	job.Status = status
	job.Progress = 100
	job.Filename = filename
	job.Error = errMsg
	job.FinishedAt = &now
}

func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := s.store.Sweep(); err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
			} else if removed > 0 {
				s.logger.Info("export artifacts cleaned", zap.Int("count", removed))
			}
			s.dropExpiredJobs()
		}
	}
}

func (s *ExportService) dropExpiredJobs() {
	cutoff := time.Now().UTC().Add(-exportResultTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}

var entryStatusLabels = map[models.EntryStatus]string{
	models.EntryStatusSuccess:           "Success",
	models.EntryStatusNoMedicalApproval: "No Medical Approval",
	models.EntryStatusNotRegistered:     "Not Registered",
	models.EntryStatusNotAssociated:     "Not Associated",
}

func buildEntryDataset(entries []models.Entry, snap *models.Snapshot) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Date", "Time", "Name", "Personal ID", "Department", "Sub-Department", "Status"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		department := entry.DepartmentID
		subDepartment := entry.SubDepartmentID
		if snap != nil {
			if name := snap.DepartmentName(entry.DepartmentID); name != "" {
				department = name
			}
			if name := snap.SubDepartmentName(entry.SubDepartmentID); name != "" {
				subDepartment = name
			}
		}
		status := entryStatusLabels[entry.Status]
		if status == "" {
			status = string(entry.Status)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":           entry.EntryDate,
			"Time":           entry.EntryTime,
			"Name":           entry.TraineeFullName,
			"Personal ID":    entry.TraineePersonalID,
			"Department":     department,
			"Sub-Department": subDepartment,
			"Status":         status,
		})
	}
	return dataset
}
