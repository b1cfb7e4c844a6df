// Package conversation keeps a consistent {lead, communications} view per
// lead and mediates manual replies with optimistic updates.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/internal/observer"
	"gitlab.com/timkado/api/lead-console/pkg/logger"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// State is the aggregator lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateErrored State = "errored"
)

// CorrelationState tracks an optimistic reply until a load covers it.
type CorrelationState string

const (
	CorrelationPendingLocal CorrelationState = "pending-local"
	CorrelationReconciled   CorrelationState = "reconciled"
)

// TempIDPrefix marks communications created locally.
const TempIDPrefix = "temp-"

// maxCorrelations bounds the reconciled history kept per aggregator.
const maxCorrelations = 32

// ErrSuperseded is returned by Load when a newer load was started before
// this one finished. Its results were discarded.
var ErrSuperseded = errors.New("conversation load superseded by a newer load")

// Fetcher is the slice of the backend client the aggregator needs.
type Fetcher interface {
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	ListCommunications(ctx context.Context, leadID string) ([]model.Communication, error)
	SendReply(ctx context.Context, leadID string, payload model.ReplyRequest) (*model.Communication, error)
}

// Correlation is the reconciliation status of one optimistic reply.
type Correlation struct {
	ID    string           `json:"id"`
	State CorrelationState `json:"state"`
}

// Snapshot is a copy of the aggregator state.
type Snapshot struct {
	State          State                 `json:"state"`
	LeadID         string                `json:"lead_id"`
	Lead           *model.Lead           `json:"lead,omitempty"`
	Communications []model.Communication `json:"communications"`
	Err            string                `json:"error,omitempty"`
	Sending        bool                  `json:"sending"`
	Correlations   []Correlation         `json:"correlations,omitempty"`
}

type pendingReply struct {
	comm  model.Communication
	state CorrelationState
}

// Aggregator serializes state changes for one conversation view. Network
// calls run without the lock held.
type Aggregator struct {
	client Fetcher
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	state   State
	leadID  string
	lead    *model.Lead
	comms   []model.Communication
	errMsg  string
	sending bool
	token   uint64
	pending []pendingReply
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source used for optimistic entries.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithIDGenerator overrides the generator for temporary ids.
func WithIDGenerator(newID func() string) Option {
	return func(a *Aggregator) { a.newID = newID }
}

// New creates an idle aggregator.
func New(client Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		client: client,
		now:    utils.Now,
		newID:  func() string { return uuid.NewString() },
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load fetches the lead and its communications concurrently and replaces
// both together. On failure the previous data stays and the error message is
// stored. Switching to a different lead id clears the previous lead's data.
func (a *Aggregator) Load(ctx context.Context, leadID string) error {
	if strings.TrimSpace(leadID) == "" {
		return fmt.Errorf("conversation load: lead id is required")
	}

	a.mu.Lock()
	tok := a.beginLoadLocked(leadID)
	a.mu.Unlock()

	return a.fetch(ctx, leadID, tok)
}

// beginLoadLocked issues the next load token. Callers hold a.mu.
func (a *Aggregator) beginLoadLocked(leadID string) uint64 {
	a.token++
	if leadID != a.leadID {
		a.leadID = leadID
		a.lead = nil
		a.comms = nil
		a.pending = nil
		a.errMsg = ""
	}
	a.state = StateLoading
	return a.token
}

// fetch runs the load issued as tok and applies it if tok is still the latest.
func (a *Aggregator) fetch(ctx context.Context, leadID string, tok uint64) error {
	log := logger.FromContext(ctx).With(zap.String("lead_id", leadID), zap.Uint64("load_token", tok))

	var (
		lead  *model.Lead
		comms []model.Communication
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := a.client.GetLead(gctx, leadID)
		if err != nil {
			return err
		}
		lead = l
		return nil
	})
	g.Go(func() error {
		c, err := a.client.ListCommunications(gctx, leadID)
		if err != nil {
			return err
		}
		comms = c
		return nil
	})
	err := g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()

	if tok != a.token {
		observer.IncConversationLoad("stale")
		log.Debug("Discarding superseded conversation load", zap.Uint64("latest_token", a.token))
		return ErrSuperseded
	}

	if err != nil {
		a.state = StateErrored
		a.errMsg = err.Error()
		observer.IncConversationLoad(string(StateErrored))
		log.Warn("Conversation load failed", zap.Error(err))
		return err
	}

	if comms == nil {
		comms = []model.Communication{}
	}
	// Pending replies take their reconciling token in the same critical
	// section that appends them, so any load that gets here started after
	// every pending reply was accepted.
	for i := range a.pending {
		a.pending[i].state = CorrelationReconciled
	}
	a.trimCorrelations()

	a.lead = lead
	a.comms = comms
	a.errMsg = ""
	a.state = StateReady
	observer.IncConversationLoad(string(StateReady))
	return nil
}

// Retry reloads the current lead. It does nothing before the first Load.
func (a *Aggregator) Retry(ctx context.Context) error {
	a.mu.Lock()
	leadID := a.leadID
	a.mu.Unlock()

	if leadID == "" {
		return nil
	}
	return a.Load(ctx, leadID)
}

// Send posts a manual reply. Blank content, no loaded lead, or a send already
// in flight make it a no-op. On acceptance a pending entry is appended and
// the conversation is reloaded; a failed reload keeps the pending entry and
// stores the error. A rejected reply changes nothing and is returned.
func (a *Aggregator) Send(ctx context.Context, content string) error {
	a.mu.Lock()
	if strings.TrimSpace(content) == "" || a.lead == nil || a.sending {
		a.mu.Unlock()
		observer.IncConversationSend("skipped")
		return nil
	}
	a.sending = true
	leadID := a.leadID
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.sending = false
		a.mu.Unlock()
	}()

	log := logger.FromContext(ctx).With(zap.String("lead_id", leadID))

	if _, err := a.client.SendReply(ctx, leadID, model.ReplyRequest{Content: content}); err != nil {
		observer.IncConversationSend("failed")
		log.Warn("Reply rejected", zap.Error(err))
		return err
	}
	observer.IncConversationSend("sent")

	a.mu.Lock()
	if a.leadID != leadID {
		// The view moved to another lead while the reply was in flight.
		a.mu.Unlock()
		return nil
	}
	comm := model.Communication{
		ID:        TempIDPrefix + a.newID(),
		LeadID:    leadID,
		Type:      model.CommunicationEmail,
		Direction: model.DirectionOutgoingManual,
		Content:   content,
		SentAt:    a.now(),
		Pending:   true,
	}
	a.comms = append(a.comms, comm)
	a.pending = append(a.pending, pendingReply{comm: comm, state: CorrelationPendingLocal})
	tok := a.beginLoadLocked(leadID)
	a.mu.Unlock()

	log.Debug("Reply accepted, reconciling", zap.String("correlation_id", comm.ID), zap.Uint64("load_token", tok))

	if err := a.fetch(ctx, leadID, tok); err != nil && !errors.Is(err, ErrSuperseded) {
		log.Warn("Reconciling load failed, keeping pending reply", zap.Error(err))
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		State:          a.state,
		LeadID:         a.leadID,
		Communications: make([]model.Communication, len(a.comms)),
		Err:            a.errMsg,
		Sending:        a.sending,
	}
	copy(snap.Communications, a.comms)
	if a.lead != nil {
		lead := *a.lead
		snap.Lead = &lead
	}
	for _, p := range a.pending {
		snap.Correlations = append(snap.Correlations, Correlation{ID: p.comm.ID, State: p.state})
	}
	return snap
}

// trimCorrelations drops the oldest reconciled entries beyond the cap.
// Callers hold a.mu.
func (a *Aggregator) trimCorrelations() {
	excess := len(a.pending) - maxCorrelations
	if excess <= 0 {
		return
	}
	kept := a.pending[:0]
	for _, p := range a.pending {
		if excess > 0 && p.state == CorrelationReconciled {
			excess--
			continue
		}
		kept = append(kept, p)
	}
	a.pending = kept
}
