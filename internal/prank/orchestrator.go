package prank

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/duskline/prankcall/internal/telephony"
)

// dispatchKey is the (state, event, leg) triple the table below is
// keyed on. Zero value of Leg ("any") matches either leg for rows where
// the action does not depend on which leg fired.
type dispatchKey struct {
	state State
	event EventType
	leg   Leg
}

const legAny Leg = ""

// handlerFunc performs the actions for one dispatch table row. It
// receives the already-loaded session and the triggering event and
// returns an error only for conditions the caller must propagate
// (ProviderError outside the bridge step); InvalidTransition and
// InvalidPrecondition from TransitionState always propagate too, since a
// dispatch-table hit with a bad graph edge signals a corrupt table.
type handlerFunc func(ctx context.Context, o *Orchestrator, sess *Session, ev Event) error

// dispatchTable is the literal state x event x leg -> action mapping
// from the orchestrator's contract. It is consulted by exact (state,
// event, leg) match first, then by (state, event, legAny) for rows that
// fire on either leg.
var dispatchTable = map[dispatchKey]handlerFunc{
	{StateCallingSender, EventLegAnswered, LegSender}: handleSenderAnswered,
	{StateCallingSender, EventLegFailed, LegSender}:   handleFailed,

	{StateCallingRecipient, EventLegAnswered, LegRecipient}: handleRecipientAnswered,
	{StateCallingRecipient, EventLegFailed, LegRecipient}:   handleFailed,
	{StateCallingRecipient, EventLegHangup, LegSender}:      handleFailed,

	{StatePlayingAudio, EventLegHangup, legAny}: handleComplete,
	{StatePlayingAudio, EventLegFailed, legAny}: handleComplete,
}

// Orchestrator drives the state machine from normalized events: it looks
// up the dispatch table, applies the Session Service transition, and
// invokes the Telephony Adapter for the resulting action.
type Orchestrator struct {
	service  *Service
	adapter  telephony.Adapter
	timeouts *TimeoutRegistry
}

// NewOrchestrator wires the three collaborators an event handler needs:
// the Session Service (DB writes), the Telephony Adapter (provider
// calls), and the timeout worker registry (I4).
func NewOrchestrator(service *Service, adapter telephony.Adapter, timeouts *TimeoutRegistry) *Orchestrator {
	return &Orchestrator{service: service, adapter: adapter, timeouts: timeouts}
}

// HandleEvent is the single entry point Webhook Ingress calls; the
// /dev/start-prank operator path uses StartPrank instead. Each event is
// handled to completion before returning; there is no queuing or
// reordering within a single call.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev Event) error {
	if !ev.Leg.Valid() {
		return &LegError{Leg: string(ev.Leg)}
	}

	sess, err := o.service.GetSession(ctx, ev.SessionID)
	if err != nil {
		return err
	}

	if sess.State.IsTerminal() {
		log.Debug().Str("session_id", sess.ID.String()).Str("state", string(sess.State)).Msg("event ignored: session already terminal")
		return nil
	}

	if sess.State == StateBridged {
		return &UnexpectedEventError{State: sess.State, Event: ev.Type, Leg: ev.Leg}
	}

	handler, ok := dispatchTable[dispatchKey{sess.State, ev.Type, ev.Leg}]
	if !ok {
		handler, ok = dispatchTable[dispatchKey{sess.State, ev.Type, legAny}]
	}
	if !ok {
		return &UnexpectedEventError{State: sess.State, Event: ev.Type, Leg: ev.Leg}
	}

	log.Info().
		Str("session_id", sess.ID.String()).
		Str("state", string(sess.State)).
		Str("event", string(ev.Type)).
		Str("leg", string(ev.Leg)).
		Msg("dispatching prank event")

	return handler(ctx, o, sess, ev)
}

func handleSenderAnswered(ctx context.Context, o *Orchestrator, sess *Session, ev Event) error {
	if err := o.service.SetLegID(ctx, sess, LegSender, ev.LegID); err != nil {
		return err
	}
	if err := o.service.TransitionState(ctx, sess, StateCallingRecipient); err != nil {
		return err
	}
	if err := o.adapter.CreateOutboundCall(ctx, sess.RecipientNumber, sess.SenderNumber, sess.ID.String(), string(LegRecipient)); err != nil {
		return &ProviderError{Op: "CreateOutboundCall", Detail: err.Error()}
	}
	return nil
}

func handleFailed(ctx context.Context, o *Orchestrator, sess *Session, ev Event) error {
	return o.service.TransitionState(ctx, sess, StateFailed)
}

func handleRecipientAnswered(ctx context.Context, o *Orchestrator, sess *Session, ev Event) error {
	if err := o.service.SetLegID(ctx, sess, LegRecipient, ev.LegID); err != nil {
		return err
	}

	senderLegID := sess.SenderLegID
	recipientLegID := sess.RecipientLegID

	if err := o.service.TransitionState(ctx, sess, StateBridged); err != nil {
		return err
	}

	if err := o.adapter.BridgeLegs(ctx, *senderLegID, *recipientLegID); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID.String()).Msg("bridge failed, failing session")
		if tErr := o.service.TransitionState(ctx, sess, StateFailed); tErr != nil {
			return tErr
		}
		return nil
	}

	if err := o.service.TransitionState(ctx, sess, StatePlayingAudio); err != nil {
		return err
	}

	if err := o.adapter.StartPlayback(ctx, *senderLegID); err != nil {
		return &ProviderError{Op: "StartPlayback", Detail: err.Error()}
	}

	o.timeouts.Spawn(sess.ID, *senderLegID, *recipientLegID, o.adapter, o.service)
	return nil
}

func handleComplete(ctx context.Context, o *Orchestrator, sess *Session, ev Event) error {
	return o.service.TransitionState(ctx, sess, StateCompleted)
}

// StartPrank is the /dev/start-prank code path: it creates a session,
// moves it to CALLING_SENDER, and places the first outbound call. It is
// not itself part of the webhook protocol, but reuses the same Service
// and Adapter the Orchestrator drives so the two paths never diverge on
// how a call is placed. The sender leg is dialled with the sender's own
// number as caller ID; the configured TELNYX_NUMBER is not used here.
func (o *Orchestrator) StartPrank(ctx context.Context, senderNumber, recipientNumber string) (*Session, error) {
	sess, err := o.service.CreateSession(ctx, senderNumber, recipientNumber)
	if err != nil {
		return nil, fmt.Errorf("prank: creating session: %w", err)
	}
	if err := o.service.TransitionState(ctx, sess, StateCallingSender); err != nil {
		return nil, err
	}
	if err := o.adapter.CreateOutboundCall(ctx, sess.SenderNumber, sess.SenderNumber, sess.ID.String(), string(LegSender)); err != nil {
		return nil, &ProviderError{Op: "CreateOutboundCall", Detail: err.Error()}
	}
	return sess, nil
}

// TimeoutRegistry is the process-wide collection of outstanding Timeout
// Workers (§4.5, §9 "background task ownership"). It exists to prevent
// the Go runtime from treating a fire-and-forget goroutine as
// unreferenced work a test harness or leak checker might flag, and to
// report how many workers are live. Graceful shutdown does not wait on
// or cancel the registered workers. I4 ("at most one
// outstanding worker per session") is upheld because Spawn is only ever
// called once per session, from the single CALLING_RECIPIENT -> BRIDGED
// -> PLAYING_AUDIO transition, and a worker removes its own entry on
// completion.
type TimeoutRegistry struct {
	mu      sync.Mutex
	active  map[string]context.CancelFunc
	maxSecs int
}

// NewTimeoutRegistry builds a registry whose workers sleep for
// durationSeconds before forcing both legs down.
func NewTimeoutRegistry(durationSeconds int) *TimeoutRegistry {
	return &TimeoutRegistry{
		active:  make(map[string]context.CancelFunc),
		maxSecs: durationSeconds,
	}
}

// Spawn starts a detached timeout worker for sessionID. service must be
// bound to a connection pool the worker can use independently of
// whatever request-scoped context spawned it (§4.5, §9 "cross-
// transaction reads": the worker never borrows the handler's context).
func (r *TimeoutRegistry) Spawn(sessionID uuid.UUID, senderLegID, recipientLegID string, adapter telephony.Adapter, service *Service) {
	workerCtx, cancel := context.WithCancel(context.Background())
	id := sessionID.String()

	r.mu.Lock()
	r.active[id] = cancel
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.active, id)
			r.mu.Unlock()
			cancel()
		}()
		runTimeoutWorker(workerCtx, id, senderLegID, recipientLegID, r.maxSecs, adapter, service)
	}()
}

// Outstanding reports how many timeout workers are currently live. Only
// tests call it; /healthz does not report it.
func (r *TimeoutRegistry) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
