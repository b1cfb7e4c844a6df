package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
)

// recordedRequest is what the fake backend saw.
type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Body        string
}

// fakeBackend answers every request with the configured status and body.
type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(raw),
	})
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "backend received no request")
	return f.requests[len(f.requests)-1]
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, fb *fakeBackend) (*Client, context.Context) {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	ctx := logger.WithLogger(context.Background(), zaptest.NewLogger(t))
	return New(srv.URL+"/", 5*time.Second), ctx
}

func TestClient_Contract(t *testing.T) {
	inquiry := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		response  string
		call      func(ctx context.Context, c *Client) error
		method    string
		path      string
		rawQuery  string
		bodyCheck func(t *testing.T, body string)
	}{
		{
			name:     "list leads without filters",
			response: `[]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.ListLeads(ctx, model.LeadFilter{})
				return err
			},
			method: http.MethodGet, path: "/api/leads",
		},
		{
			name:     "list leads with filters",
			response: `[]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.ListLeads(ctx, model.LeadFilter{Status: model.LeadStatusNew, Search: "ann lee", Page: 2, Limit: 10})
				return err
			},
			method: http.MethodGet, path: "/api/leads", rawQuery: "limit=10&page=2&search=ann+lee&status=new",
		},
		{
			name:     "get lead escapes id",
			response: `{"id":"a b","email":"x@y.z","status":"new"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.GetLead(ctx, "a b")
				return err
			},
			method: http.MethodGet, path: "/api/leads/a%20b",
		},
		{
			name:     "create lead",
			response: `{"id":"1","email":"kim@example.com","status":"new"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.CreateLead(ctx, model.LeadCreate{FirstName: "Kim", Email: "kim@example.com", InquiryDate: inquiry})
				return err
			},
			method: http.MethodPost, path: "/api/leads",
			bodyCheck: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"first_name":"Kim","email":"kim@example.com","inquiry_date":"2024-02-01T09:00:00Z"}`, body)
			},
		},
		{
			name:     "update status uses query param",
			response: `{"id":"1","email":"x@y.z","status":"converted"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.UpdateLeadStatus(ctx, "1", model.LeadStatusConverted)
				return err
			},
			method: http.MethodPut, path: "/api/leads/1/status", rawQuery: "status_update=converted",
		},
		{
			name:     "list communications",
			response: `[{"id":"c1","type":"email","direction":"incoming","content":"hi","sent_at":"2024-02-01T09:00:00Z"}]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.ListCommunications(ctx, "1")
				return err
			},
			method: http.MethodGet, path: "/api/leads/1/communications",
		},
		{
			name:     "send reply",
			response: `{"id":"c2","type":"email","direction":"outgoing_manual","content":"thanks","sent_at":"2024-02-01T09:00:00Z"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.SendReply(ctx, "1", model.ReplyRequest{Content: "thanks"})
				return err
			},
			method: http.MethodPost, path: "/api/leads/1/reply",
			bodyCheck: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"content":"thanks"}`, body)
			},
		},
		{
			name:     "trigger test call",
			response: `{"status":"queued","call_sid":"CA1"}`,
			call: func(ctx context.Context, c *Client) error {
				res, err := c.TriggerTestAICall(ctx, "1")
				if err == nil {
					assert.JSONEq(t, `"queued"`, string(res["status"]))
				}
				return err
			},
			method: http.MethodPost, path: "/api/leads/1/test-ai-call",
		},
		{
			name:     "dashboard metrics",
			response: `{"total_active_leads":12,"needs_attention_count":3,"responded_count":2,"nurturing_count":5,"converted_this_month":1,"conversion_rate_percent":8.3}`,
			call: func(ctx context.Context, c *Client) error {
				m, err := c.GetDashboardMetrics(ctx)
				if err == nil {
					assert.Equal(t, 12, m.TotalActiveLeads)
					assert.InDelta(t, 8.3, m.ConversionRatePercent, 0.001)
				}
				return err
			},
			method: http.MethodGet, path: "/api/dashboard/metrics",
		},
		{
			name:     "advanced metrics",
			response: `{"funnel":[1,2,3]}`,
			call: func(ctx context.Context, c *Client) error {
				m, err := c.GetAdvancedMetrics(ctx)
				if err == nil {
					assert.Contains(t, m, "funnel")
				}
				return err
			},
			method: http.MethodGet, path: "/api/dashboard/advanced-metrics",
		},
		{
			name:     "list slots",
			response: `[]`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.ListAppointmentSlots(ctx, model.SlotRange{StartDate: "2024-02-01", EndDate: "2024-02-29"})
				return err
			},
			method: http.MethodGet, path: "/api/appointments", rawQuery: "end_date=2024-02-29&start_date=2024-02-01",
		},
		{
			name:     "create bulk slots",
			response: `{"status":"success","message":"16 slots created."}`,
			call: func(ctx context.Context, c *Client) error {
				res, err := c.CreateBulkSlots(ctx, model.CreateBulkSlotsRequest{
					StartDate: "2024-02-05", EndDate: "2024-02-05", StartTimeOfDay: "09:00", EndTimeOfDay: "17:00", SlotDurationMinutes: 30,
				})
				if err == nil {
					assert.Equal(t, "16 slots created.", res.Message)
				}
				return err
			},
			method: http.MethodPost, path: "/api/appointments/create-bulk-slots",
			bodyCheck: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"start_date":"2024-02-05","end_date":"2024-02-05","start_time_of_day":"09:00","end_time_of_day":"17:00","slot_duration_minutes":30}`, body)
			},
		},
		{
			name:     "book slot",
			response: `{"id":"s1","status":"booked","lead_id":"1","reason_for_visit":"checkup"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.BookSlot(ctx, "s1", model.BookSlotRequest{LeadID: "1", ReasonForVisit: "checkup"})
				return err
			},
			method: http.MethodPut, path: "/api/appointments/s1/book",
		},
		{
			name:     "list knowledge base keeps chunk order",
			response: `[{"title":"Hours","chunks":[{"chunk_id":"b","content":"second"},{"chunk_id":"a","content":"first"}]}]`,
			call: func(ctx context.Context, c *Client) error {
				entries, err := c.ListKnowledgeBase(ctx)
				if err == nil {
					require.Len(t, entries, 1)
					assert.Equal(t, "b", entries[0].Chunks[0].ChunkID)
					assert.Equal(t, "a", entries[0].Chunks[1].ChunkID)
				}
				return err
			},
			method: http.MethodGet, path: "/api/knowledge-base",
		},
		{
			name:     "upsert knowledge base",
			response: `{"title":"Hours","chunks_count":1,"chunks":[{"chunk_id":"x","content":"9-5"}]}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.UpsertKnowledgeBase(ctx, model.KnowledgeBaseUpsert{Title: "Hours", Content: "9-5"})
				return err
			},
			method: http.MethodPost, path: "/api/knowledge-base",
		},
		{
			name:     "search knowledge base defaults top_k",
			response: `{"results":[],"query":"parking","total_results":0}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.SearchKnowledgeBase(ctx, model.KnowledgeBaseSearchRequest{Query: "parking"})
				return err
			},
			method: http.MethodPost, path: "/api/knowledge-base/search",
			bodyCheck: func(t *testing.T, body string) {
				assert.JSONEq(t, `{"query":"parking","top_k":5}`, body)
			},
		},
		{
			name:     "quick search knowledge base",
			response: `{"query":"parking lot","results":[],"total_results":0}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.QuickSearchKnowledgeBase(ctx, model.KnowledgeBaseSearchRequest{Query: "parking lot", TopK: 3})
				return err
			},
			method: http.MethodGet, path: "/api/knowledge-base/search/parking%20lot", rawQuery: "top_k=3",
		},
		{
			name:     "delete knowledge base escapes title",
			response: `{"message":"Knowledge base 'Office Hours/FAQ' deleted successfully"}`,
			call: func(ctx context.Context, c *Client) error {
				_, err := c.DeleteKnowledgeBase(ctx, "Office Hours/FAQ")
				return err
			},
			method: http.MethodDelete, path: "/api/knowledge-base/Office%20Hours%2FFAQ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := &fakeBackend{body: tc.response}
			client, ctx := newTestClient(t, fb)

			require.NoError(t, tc.call(ctx, client))

			got := fb.last(t)
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, tc.path, got.Path)
			assert.Equal(t, tc.rawQuery, got.RawQuery)
			assert.Equal(t, "application/json", got.ContentType)
			if tc.bodyCheck != nil {
				tc.bodyCheck(t, got.Body)
			}
		})
	}
}

func TestClient_UploadLeadsCSV(t *testing.T) {
	var gotName, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/leads/upload", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		raw, _ := io.ReadAll(file)
		gotName, gotContent = header.Filename, string(raw)

		_ = json.NewEncoder(w).Encode([]model.Lead{{ID: "1", Email: "a@b.co", Status: model.LeadStatusNew}})
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	leads, err := client.UploadLeadsCSV(context.Background(), "/tmp/exports/leads.csv", strings.NewReader("email\na@b.co\n"))
	require.NoError(t, err)
	assert.Len(t, leads, 1)
	assert.Equal(t, "leads.csv", gotName)
	assert.Equal(t, "email\na@b.co\n", gotContent)
}

func TestClient_ErrorStatus(t *testing.T) {
	fb := &fakeBackend{status: http.StatusNotFound, body: `{"detail":"Lead not found"}`}
	client, ctx := newTestClient(t, fb)

	_, err := client.GetLead(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.StatusText)
	assert.NotContains(t, err.Error(), "Lead not found", "error body is not part of the error")
}

func TestClient_Conflict(t *testing.T) {
	fb := &fakeBackend{status: http.StatusConflict}
	client, ctx := newTestClient(t, fb)

	_, err := client.BookSlot(ctx, "s1", model.BookSlotRequest{LeadID: "1", ReasonForVisit: "consult"})
	assert.True(t, apperrors.IsConflictError(err))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second)
	_, err := client.GetDashboardMetrics(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransportError(err))
	_, isAPI := apperrors.AsAPIError(err)
	assert.False(t, isAPI)
}

func TestClient_ValidationStopsRequest(t *testing.T) {
	fb := &fakeBackend{}
	client, ctx := newTestClient(t, fb)

	calls := []func() error{
		func() error { _, err := client.SendReply(ctx, "1", model.ReplyRequest{Content: "   "}); return err },
		func() error { _, err := client.GetLead(ctx, ""); return err },
		func() error { _, err := client.UpdateLeadStatus(ctx, "1", "hot"); return err },
		func() error {
			_, err := client.CreateLead(ctx, model.LeadCreate{Email: "not-an-email"})
			return err
		},
		func() error {
			_, err := client.CreateBulkSlots(ctx, model.CreateBulkSlotsRequest{StartDate: "2024-01-01", EndDate: "2024-01-01", StartTimeOfDay: "09:00", EndTimeOfDay: "17:00"})
			return err
		},
		func() error { _, err := client.BookSlot(ctx, "s1", model.BookSlotRequest{LeadID: "1"}); return err },
		func() error { _, err := client.SearchKnowledgeBase(ctx, model.KnowledgeBaseSearchRequest{}); return err },
		func() error { _, err := client.DeleteKnowledgeBase(ctx, " "); return err },
		func() error { _, err := client.UploadLeadsCSV(ctx, "leads.csv", nil); return err },
	}

	for i, call := range calls {
		err := call()
		assert.True(t, apperrors.IsValidationError(err), "call %d: %v", i, err)
	}
	assert.Zero(t, fb.count())
}

func TestClient_RetriesIdempotentReads(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, WithRetryMaxElapsed(5*time.Second))
	_, err := client.ListCommunications(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClient_RetryExhaustionKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, WithRetryMaxElapsed(300*time.Millisecond))
	_, err := client.GetDashboardMetrics(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsRetryable(err))
	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClient_DoesNotRetryWrites(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, WithRetryMaxElapsed(5*time.Second))
	_, err := client.SendReply(context.Background(), "1", model.ReplyRequest{Content: "hello"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, WithRetryMaxElapsed(5*time.Second))
	_, err := client.GetLead(context.Background(), "1")
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.False(t, apperrors.IsRetryable(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_SendReplyAcceptsEmptyBody(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated, http.StatusNoContent} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			fb := &fakeBackend{status: status}
			client, ctx := newTestClient(t, fb)

			comm, err := client.SendReply(ctx, "1", model.ReplyRequest{Content: "see you tomorrow"})
			require.NoError(t, err)
			assert.Nil(t, comm)
			assert.Equal(t, 1, fb.count())
		})
	}

	t.Run("reads still need a body", func(t *testing.T) {
		fb := &fakeBackend{}
		client, ctx := newTestClient(t, fb)

		_, err := client.GetLead(ctx, "1")
		require.Error(t, err)
		assert.True(t, apperrors.IsFatal(err))
	})
}

func TestClient_DecodeFailure(t *testing.T) {
	fb := &fakeBackend{body: `{"id":"1","email":"a@b.co","status":"qualified"}`}
	client, ctx := newTestClient(t, fb)

	_, err := client.GetLead(ctx, "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsFatal(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := New(srv.URL, 50*time.Millisecond)
	_, err := client.GetDashboardMetrics(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeoutError(err))
	assert.True(t, apperrors.IsTransportError(err))
}
