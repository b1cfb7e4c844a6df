package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/lead-console/internal/apiclient"
	"gitlab.com/timkado/api/lead-console/internal/conversation"
	"gitlab.com/timkado/api/lead-console/internal/usecase"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Ops            usecase.LeadOperations
	Client         apiclient.ClientInterface
	Conversations  *conversation.Registry
	Log            *zap.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
	Now            func() time.Time // Defaults to utils.Now
}

// Routes builds the dashboard router, mounted under /v1.
func Routes(d Dependencies) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = utils.Now
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer(d.Log))
	r.Use(RequestLogger(d.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSONError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/v1", func(r chi.Router) {
		// Lead board and workflows
		r.Get("/board", d.board)
		r.Get("/handoff", d.handoff)
		r.Get("/statuses", d.statuses)
		r.Post("/leads", d.createLead)
		r.Post("/leads/upload", d.uploadLeads)
		r.Post("/leads/bulk-status", d.bulkStatus)
		r.Put("/leads/{id}/status", d.changeStatus)
		r.Post("/leads/{id}/test-call", d.testCall)

		// Conversation view
		r.Get("/leads/{id}/conversation", d.loadConversation)
		r.Post("/leads/{id}/conversation/retry", d.retryConversation)
		r.Post("/leads/{id}/conversation/messages", d.sendMessage)

		// Dashboard metrics
		r.Get("/dashboard/metrics", d.dashboardMetrics)
		r.Get("/dashboard/advanced-metrics", d.advancedMetrics)

		// Appointments
		r.Get("/appointments", d.listSlots)
		r.Post("/appointments/bulk", d.createBulkSlots)
		r.Post("/appointments/bulk/preview", d.previewBulkSlots)
		r.Put("/appointments/{id}/book", d.bookSlot)

		// Knowledge base
		r.Get("/knowledge-base", d.listKnowledgeBase)
		r.Post("/knowledge-base", d.upsertKnowledgeBase)
		r.Get("/knowledge-base/search", d.quickSearchKnowledgeBase)
		r.Post("/knowledge-base/search", d.searchKnowledgeBase)
		r.Delete("/knowledge-base/{title}", d.deleteKnowledgeBase)
	})

	return r
}
