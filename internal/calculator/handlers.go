package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calc"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/keypad"
	"go-chi-calculator/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var errNoKeys = errors.New("keys array is empty")

// Service serves calculator sessions as an HTML keypad and a JSON API.
type Service struct {
	store   *Store
	buttons []keypad.Button
}

func NewService(store *Store) (*Service, error) {
	buttons, err := keypad.Layout()
	if err != nil {
		return nil, err
	}
	return &Service{store: store, buttons: buttons}, nil
}

func keypadPath(id string) string {
	return "/keypad/" + id
}

// ---------------------------------------------------------------------------
// Handlers — HTML keypad
// ---------------------------------------------------------------------------

// Home handles GET / by starting a session and sending the browser to its keypad.
func (s *Service) Home(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()

	ctx := r.Context()
	observability.LoggerWithTrace(ctx).Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	http.Redirect(w, r, keypadPath(sess.ID), http.StatusSeeOther)
}

// Keypad handles GET /keypad/{id}
func (s *Service) Keypad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.keypad.render")
	defer span.End()

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		// Expired or unknown sessions just get a fresh calculator.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	span.SetAttributes(attribute.String("calculator.session", sess.ID))

	view, _ := sess.Snapshot()

	var buf bytes.Buffer
	err = keypad.Render(&buf, keypad.Page{
		Action:  keypadPath(sess.ID),
		View:    view,
		Buttons: s.buttons,
	})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "render", "rendering keypad failed", err, http.StatusInternalServerError, w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("writing keypad page failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// KeypadPress handles POST /keypad/{id} with a form field "key".
func (s *Service) KeypadPress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.keypad.press")
	defer span.End()

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid form body", err, http.StatusBadRequest, w)
		return
	}

	events, err := parseKeys([]string{r.PostFormValue("key")})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	s.apply(ctx, span, logger, sess, events)

	http.Redirect(w, r, keypadPath(sess.ID), http.StatusSeeOther)
}

// ---------------------------------------------------------------------------
// Handlers — JSON sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (s *Service) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.store.Create()
	view, presses := sess.Snapshot()

	ctx := r.Context()
	observability.LoggerWithTrace(ctx).Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	writeJSON(ctx, w, http.StatusCreated, newSessionResponse(sess.ID, view, presses))
}

// GetSession handles GET /calculator/sessions/{id}
func (s *Service) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.get")
	defer span.End()

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get", err.Error(), err, http.StatusNotFound, w)
		return
	}

	view, presses := sess.Snapshot()
	writeJSON(ctx, w, http.StatusOK, newSessionResponse(sess.ID, view, presses))
}

// PressKeys handles POST /calculator/sessions/{id}/keys. The whole batch is
// rejected if any key is unknown; otherwise the keys are applied in order
// without interleaving with other requests for the same session.
func (s *Service) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.press")
	defer span.End()

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, http.StatusNotFound, w)
		return
	}

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys := req.all()
	if len(keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "no keys provided", errNoKeys, http.StatusBadRequest, w)
		return
	}

	events, err := parseKeys(keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	view := s.apply(ctx, span, logger, sess, events)
	_, presses := sess.Snapshot()

	writeJSON(ctx, w, http.StatusOK, newSessionResponse(sess.ID, view, presses))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (s *Service) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.delete")
	defer span.End()

	id := chi.URLParam(r, "id")
	if err := s.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", err.Error(), err, http.StatusNotFound, w)
		return
	}

	logger.Info("session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON sends a JSON response and logs a failed write, which can only
// happen once the status line is out.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	if err := handlers.WriteJSON(w, status, v); err != nil {
		observability.LoggerWithTrace(ctx).Warn("writing response failed",
			zap.Int("status", status),
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
			zap.Error(err),
		)
	}
}

// apply runs events against sess and records metrics, span data and a
// trace-correlated log line for the batch.
func (s *Service) apply(ctx context.Context, span trace.Span, logger *zap.Logger, sess *Session, events []calc.Event) calc.View {
	start := time.Now()
	view := sess.Press(events...)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	labels := make([]string, len(events))
	for i, e := range events {
		labels[i] = e.Label()
		keypressCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", e.Kind.String())))
	}
	keypressHistogram.Record(ctx, elapsed)
	recordResult(ctx, events[len(events)-1], view.State)

	span.SetAttributes(
		attribute.String("calculator.session", sess.ID),
		attribute.StringSlice("calculator.keys", labels),
		attribute.String("calculator.display", view.Display),
	)
	span.AddEvent("keys.applied", trace.WithAttributes(
		attribute.String("expression", view.Expression),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("keys applied",
		zap.String("session_id", sess.ID),
		zap.Strings("keys", labels),
		zap.String("display", view.Display),
		zap.String("expression", view.Expression),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", elapsed),
	)

	return view
}

// recordResult publishes the value of a calculation closed by "=".
func recordResult(ctx context.Context, last calc.Event, st calc.State) {
	if !last.Equals || !st.HasPrevious || calc.IsError(st.Display) {
		return
	}
	resultGauge.Record(ctx, st.Previous)
}

func parseKeys(keys []string) ([]calc.Event, error) {
	events := make([]calc.Event, 0, len(keys))
	for i, k := range keys {
		e, err := calc.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// ---------------------------------------------------------------------------
// Handler — replay (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/replay — feeds a key sequence through a
// fresh calculator without creating a session, with a child span for every
// key. Useful for checking what a sequence evaluates to.
func (s *Service) Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// Parent span for the entire replay
	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys := req.all()
	if len(keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no keys provided", errNoKeys, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("replay.keys_count", len(keys)))

	state := calc.Initial()
	steps := make([]ReplayStep, 0, len(keys))

	for i, key := range keys {
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.key.%d", i),
			trace.WithAttributes(
				attribute.Int("replay.key.index", i),
				attribute.String("replay.key.label", key),
				attribute.String("replay.key.input", state.Display),
			),
		)

		e, err := calc.ParseKey(key)
		if err != nil {
			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			observability.RecordError(ctx, span, logger, errorCounter, "replay", fmt.Sprintf("key %d: %v", i, err), err, http.StatusBadRequest, w)
			return
		}

		state = calc.Reduce(state, e)
		view := calc.NewView(state)
		keypressCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", e.Kind.String())))

		stepSpan.SetAttributes(
			attribute.String("replay.key.display", view.Display),
			attribute.String("replay.key.expression", view.Expression),
		)
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		logger.Debug("replay key applied",
			zap.Int("step", i),
			zap.String("key", e.Label()),
			zap.String("display", view.Display),
			zap.String("expression", view.Expression),
		)

		steps = append(steps, ReplayStep{
			Key:        e.Label(),
			Display:    view.Display,
			Expression: view.Expression,
		})
	}

	final := calc.NewView(state)

	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("display", final.Display),
		attribute.Int("total_keys", len(keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("replay completed",
		zap.Int("keys", len(keys)),
		zap.String("display", final.Display),
		zap.String("expression", final.Expression),
		zap.String("request_id", requestID),
	)

	writeJSON(ctx, w, http.StatusOK, ReplayResponse{
		Steps:      steps,
		Display:    final.Display,
		Expression: final.Expression,
	})
}
