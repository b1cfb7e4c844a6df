package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/apiclient"
	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/config"
	"gitlab.com/timkado/api/lead-console/internal/leadinfo"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// ErrBulkEmpty is returned when a bulk status change names no leads.
var ErrBulkEmpty = apperrors.NewValidation(errors.New("ids must not be empty"))

// LeadOperations defines the lead workflows served to the dashboard.
type LeadOperations interface {
	Board(ctx context.Context, filter model.LeadFilter, now time.Time) ([]leadinfo.LeadSummary, error)
	Handoff(ctx context.Context, now time.Time) ([]leadinfo.LeadSummary, error)
	ChangeStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error)
	BulkUpdateStatus(ctx context.Context, leadIDs []string, status model.LeadStatus) ([]StatusChangeResult, error)
	CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error)
	ImportCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error)
	Stop()
}

// StatusChangeResult is the outcome of one lead in a bulk status change.
type StatusChangeResult struct {
	LeadID string      `json:"lead_id"`
	Lead   *model.Lead `json:"lead,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// statusTask is one unit of work handed to the bulk status pool.
type statusTask struct {
	ctx    context.Context
	leadID string
	status model.LeadStatus
	result *StatusChangeResult
	wg     *sync.WaitGroup
}

// LeadOps implements LeadOperations on top of the backend client.
type LeadOps struct {
	client     apiclient.ClientInterface
	pool       *ants.PoolWithFunc
	cfg        config.WorkerPoolConfig
	baseLogger *zap.Logger
}

// Ensure LeadOps implements LeadOperations
var _ LeadOperations = (*LeadOps)(nil)

// NewLeadOps creates the service and its bulk status worker pool.
func NewLeadOps(client apiclient.ClientInterface, cfg config.WorkerPoolConfig, baseLogger *zap.Logger) (*LeadOps, error) {
	ops := &LeadOps{
		client:     client,
		cfg:        cfg,
		baseLogger: baseLogger.Named("lead_ops"),
	}

	pool, err := ants.NewPoolWithFunc(cfg.PoolSize, func(i interface{}) {
		task, ok := i.(statusTask)
		if !ok {
			ops.baseLogger.Error("Invalid task data type received", zap.Any("data", i))
			return
		}
		defer task.wg.Done()
		ops.processStatusTask(task)
	},
		ants.WithExpiryDuration(cfg.ExpiryTime),
		ants.WithNonblocking(false),
		ants.WithMaxBlockingTasks(cfg.QueueSize),
		ants.WithPanicHandler(func(err interface{}) {
			ops.baseLogger.Error("Panic recovered in bulk status worker", zap.Any("panic_error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk status worker pool: %w", err)
	}
	ops.pool = pool
	ops.baseLogger.Info("Bulk status worker pool initialized",
		zap.Int("pool_size", cfg.PoolSize),
		zap.Int("queue_size", cfg.QueueSize),
		zap.Duration("expiry_time", cfg.ExpiryTime),
	)
	return ops, nil
}

// Stop releases the worker pool.
func (o *LeadOps) Stop() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Board lists leads matching the filter, ranked by urgency.
func (o *LeadOps) Board(ctx context.Context, filter model.LeadFilter, now time.Time) ([]leadinfo.LeadSummary, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	leads, err := o.client.ListLeads(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	log := logger.FromContextOr(ctx, o.baseLogger)
	for _, l := range leads {
		if vErr := l.Validate(); vErr != nil {
			// Still shown; the backend is the source of truth.
			log.Warn("Backend returned an inconsistent lead", zap.String("lead_id", l.LeadID), zap.Error(vErr))
		}
	}
	return leadinfo.RankByUrgency(leads, now), nil
}

// Handoff returns the leads waiting on a human, most urgent first.
func (o *LeadOps) Handoff(ctx context.Context, now time.Time) ([]leadinfo.LeadSummary, error) {
	return o.Board(ctx, model.LeadFilter{Status: model.LeadStatusNeedsImmediateAttention}, now)
}

// ChangeStatus moves one lead to a new status.
func (o *LeadOps) ChangeStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error) {
	lead, err := o.client.UpdateLeadStatus(ctx, leadID, status)
	if err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, o.baseLogger).Info("Lead status changed",
		zap.String("lead_id", leadID),
		zap.String("status", string(status)),
	)
	return lead, nil
}

// BulkUpdateStatus moves every lead to status through the worker pool and
// returns one result per distinct id, in input order. Per-lead failures are
// reported in the results, not as the returned error.
func (o *LeadOps) BulkUpdateStatus(ctx context.Context, leadIDs []string, status model.LeadStatus) ([]StatusChangeResult, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidation(fmt.Errorf("unknown lead status %q", status))
	}
	ids := dedupeIDs(leadIDs)
	if len(ids) == 0 {
		return nil, ErrBulkEmpty
	}

	start := time.Now()
	log := logger.FromContextOr(ctx, o.baseLogger)
	results := make([]StatusChangeResult, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		results[i].LeadID = id
		wg.Add(1)
		task := statusTask{ctx: ctx, leadID: id, status: status, result: &results[i], wg: &wg}
		if err := o.pool.Invoke(task); err != nil {
			wg.Done()
			if errors.Is(err, ants.ErrPoolOverload) {
				err = fmt.Errorf("bulk status pool overload: %w", err)
			}
			log.Warn("Failed to submit bulk status task", zap.String("lead_id", id), zap.Error(err))
			results[i].Error = err.Error()
			observer.IncBulkStatusTask("submit_error")
		}
	}
	wg.Wait()
	observer.ObserveBulkStatusDuration(time.Since(start))

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	log.Info("Bulk status update finished",
		zap.String("status", string(status)),
		zap.Int("total", len(results)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// processStatusTask runs on a pool worker.
func (o *LeadOps) processStatusTask(task statusTask) {
	log := logger.FromContextOr(task.ctx, o.baseLogger).With(zap.String("task_lead_id", task.leadID))

	run := utils.WrapWithContextRecovery(func(ctx context.Context) error {
		lead, err := o.client.UpdateLeadStatus(ctx, task.leadID, task.status)
		if err != nil {
			return err
		}
		task.result.Lead = lead
		return nil
	})

	if err := run(task.ctx); err != nil {
		log.Warn("Bulk status task failed", zap.Error(err))
		task.result.Error = err.Error()
		observer.IncBulkStatusTask(observer.ErrorCategory(err))
		return
	}
	log.Debug("Bulk status task done")
	observer.IncBulkStatusTask("success")
}

// CreateLead validates the form and creates the lead.
func (o *LeadOps) CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	lead, err := o.client.CreateLead(ctx, payload)
	if err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, o.baseLogger).Info("Lead created", zap.String("lead_id", lead.LeadID))
	return lead, nil
}

// ImportCSV uploads a leads file. Names without a .csv suffix are refused
// before any request is made, matching the backend's own check.
func (o *LeadOps) ImportCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error) {
	if !strings.HasSuffix(filename, ".csv") {
		return nil, apperrors.NewValidation(fmt.Errorf("file %q must be a CSV file", filename))
	}

	counter := &countingReader{r: content}
	leads, err := o.client.UploadLeadsCSV(ctx, filename, counter)
	log := logger.FromContextOr(ctx, o.baseLogger).With(
		zap.String("filename", filename),
		zap.String("size", utils.ByteCountSI(counter.n)),
	)
	if err != nil {
		log.Warn("CSV import failed", zap.Error(err))
		return nil, err
	}
	log.Info("CSV import finished", zap.Int("imported", len(leads)))
	return leads, nil
}

// countingReader counts bytes as the upload streams them.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// dedupeIDs drops blanks and repeats, keeping first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
