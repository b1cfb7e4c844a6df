package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	clientmock "gitlab.com/timkado/api/lead-console/internal/apiclient/mock"
	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/config"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
)

func setupLeadOpsTest(t *testing.T) (*LeadOps, *clientmock.ClientMock, context.Context) {
	t.Helper()
	client := clientmock.NewClientMock()
	ops, err := NewLeadOps(client, config.WorkerPoolConfig{PoolSize: 2, QueueSize: 16, ExpiryTime: time.Minute}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(ops.Stop)

	ctx := logger.WithLogger(context.Background(), zaptest.NewLogger(t))
	return ops, client, ctx
}

func TestBoard_RanksByUrgency(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	short := model.NewLead(&model.Lead{LeadID: "BS-LID-0001", InquiryNotes: "hi", CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)})
	long := model.NewLead(&model.Lead{LeadID: "BS-LID-0002", InquiryNotes: strings.Repeat("x", 300), CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour)})

	filter := model.LeadFilter{Search: "acme", Limit: 20}
	client.On("ListLeads", ctx, filter).Return([]model.Lead{*short, *long}, nil).Once()

	board, err := ops.Board(ctx, filter, now)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "BS-LID-0002", board[0].Lead.LeadID)
	assert.Greater(t, board[0].UrgencyScore, board[1].UrgencyScore)
	assert.Equal(t, "BS-LID-0001", board[1].Lead.LeadID)
	client.AssertExpectations(t)
}

func TestBoard_InvalidFilterSkipsRequest(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)

	_, err := ops.Board(ctx, model.LeadFilter{Status: "lost"}, time.Now())
	assert.True(t, apperrors.IsValidationError(err))
	client.AssertNotCalled(t, "ListLeads", mock.Anything, mock.Anything)
}

func TestBoard_WarnsOnInconsistentLead(t *testing.T) {
	client := clientmock.NewClientMock()
	core, logs := observer.New(zapcore.WarnLevel)
	ops, err := NewLeadOps(client, config.WorkerPoolConfig{PoolSize: 1, QueueSize: 1, ExpiryTime: time.Minute}, zap.New(core))
	require.NoError(t, err)
	defer ops.Stop()

	now := time.Now()
	bad := model.NewLead(&model.Lead{LeadID: "BS-LID-0009", CreatedAt: now, UpdatedAt: now.Add(-time.Hour)})
	client.On("ListLeads", mock.Anything, model.LeadFilter{}).Return([]model.Lead{*bad}, nil)

	board, err := ops.Board(context.Background(), model.LeadFilter{}, now)
	require.NoError(t, err)
	assert.Len(t, board, 1, "inconsistent leads are still listed")
	assert.Equal(t, 1, logs.FilterMessage("Backend returned an inconsistent lead").Len())
}

func TestHandoff_FiltersByAttentionStatus(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	lead := model.NewLead(&model.Lead{Status: model.LeadStatusNeedsImmediateAttention})
	client.On("ListLeads", ctx, model.LeadFilter{Status: model.LeadStatusNeedsImmediateAttention}).
		Return([]model.Lead{*lead}, nil).Once()

	queue, err := ops.Handoff(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "Needs Attention", queue[0].Status.Label)
	client.AssertExpectations(t)
}

func TestChangeStatus(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	updated := model.NewLead(&model.Lead{LeadID: "BS-LID-0003", Status: model.LeadStatusConverted})
	client.On("UpdateLeadStatus", ctx, "BS-LID-0003", model.LeadStatusConverted).Return(updated, nil).Once()

	lead, err := ops.ChangeStatus(ctx, "BS-LID-0003", model.LeadStatusConverted)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusConverted, lead.Status)

	notFound := apperrors.NewAPIError("PUT", "/api/leads/missing/status", 404, "Not Found")
	client.On("UpdateLeadStatus", ctx, "missing", model.LeadStatusConverted).Return(nil, notFound).Once()
	_, err = ops.ChangeStatus(ctx, "missing", model.LeadStatusConverted)
	assert.True(t, apperrors.IsNotFoundError(err))
	client.AssertExpectations(t)
}

func TestBulkUpdateStatus_PerLeadResults(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	status := model.LeadStatusArchivedNoResponse

	for _, id := range []string{"a", "c"} {
		client.On("UpdateLeadStatus", mock.Anything, id, status).
			Return(model.NewLead(&model.Lead{LeadID: id, Status: status}), nil).Once()
	}
	client.On("UpdateLeadStatus", mock.Anything, "b", status).
		Return(nil, apperrors.NewAPIError("PUT", "/api/leads/b/status", 404, "Not Found")).Once()

	results, err := ops.BulkUpdateStatus(ctx, []string{"a", " b ", "a", "", "c"}, status)
	require.NoError(t, err)
	require.Len(t, results, 3, "blank and repeated ids are dropped")

	assert.Equal(t, "a", results[0].LeadID)
	require.NotNil(t, results[0].Lead)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "b", results[1].LeadID)
	assert.Nil(t, results[1].Lead)
	assert.Contains(t, results[1].Error, "404")

	assert.Equal(t, "c", results[2].LeadID)
	assert.Empty(t, results[2].Error)
	client.AssertExpectations(t)
}

func TestBulkUpdateStatus_RecoversPanickingTask(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	status := model.LeadStatusNurturing
	client.On("UpdateLeadStatus", mock.Anything, "boom", status).Run(func(mock.Arguments) {
		panic("backend client exploded")
	}).Return(nil, nil).Once()

	results, err := ops.BulkUpdateStatus(ctx, []string{"boom"}, status)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Error, "panic recovered")
}

func TestBulkUpdateStatus_Rejects(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)

	_, err := ops.BulkUpdateStatus(ctx, []string{"a"}, "lost")
	assert.True(t, apperrors.IsValidationError(err))

	_, err = ops.BulkUpdateStatus(ctx, []string{" ", ""}, model.LeadStatusNew)
	assert.ErrorIs(t, err, ErrBulkEmpty)

	client.AssertNotCalled(t, "UpdateLeadStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateLead(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)

	payload := model.LeadCreate{FirstName: "Ada", Email: "ada@example.com", InquiryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	created := model.NewLead(&model.Lead{LeadID: "BS-LID-0010", FirstName: "Ada"})
	client.On("CreateLead", ctx, mock.AnythingOfType("model.LeadCreate")).Return(created, nil).Once()

	lead, err := ops.CreateLead(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "BS-LID-0010", lead.LeadID)

	_, err = ops.CreateLead(ctx, model.LeadCreate{Email: "not-an-email", InquiryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	assert.True(t, apperrors.IsValidationError(err))
	client.AssertNumberOfCalls(t, "CreateLead", 1)
}

func TestImportCSV(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)

	client.On("UploadLeadsCSV", ctx, "leads.csv", mock.Anything).Run(func(args mock.Arguments) {
		body, err := io.ReadAll(args.Get(2).(io.Reader))
		require.NoError(t, err)
		assert.Equal(t, "first_name,email\nAda,ada@example.com\n", string(body))
	}).Return([]model.Lead{*model.NewLead(), *model.NewLead()}, nil).Once()

	leads, err := ops.ImportCSV(ctx, "leads.csv", strings.NewReader("first_name,email\nAda,ada@example.com\n"))
	require.NoError(t, err)
	assert.Len(t, leads, 2)
	client.AssertExpectations(t)
}

func TestImportCSV_RejectsNonCSV(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)

	for _, name := range []string{"leads.xlsx", "leads", "leads.CSV"} {
		_, err := ops.ImportCSV(ctx, name, strings.NewReader("x"))
		assert.True(t, apperrors.IsValidationError(err), name)
	}
	client.AssertNotCalled(t, "UploadLeadsCSV", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportCSV_UpstreamError(t *testing.T) {
	ops, client, ctx := setupLeadOpsTest(t)
	upstream := errors.New("connection reset")
	client.On("UploadLeadsCSV", ctx, "leads.csv", mock.Anything).Return(nil, upstream).Once()

	_, err := ops.ImportCSV(ctx, "leads.csv", strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, upstream)
}
