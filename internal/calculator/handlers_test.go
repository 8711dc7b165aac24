package calculator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/testutil"
)

func TestMain(m *testing.M) {
	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestService(t *testing.T) (*Store, http.Handler) {
	t.Helper()

	store := NewStore()
	svc, err := NewService(store)
	require.NoError(t, err)

	r := chi.NewRouter()
	svc.RegisterRoutes(r)
	return store, r
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	return testutil.ExecuteRequest(testutil.NewJSONRequest(http.MethodPost, path, body), h)
}

func createSession(t *testing.T, h http.Handler) SessionResponse {
	t.Helper()

	w := postJSON(h, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func pressKeys(t *testing.T, h http.Handler, id, body string) (*httptest.ResponseRecorder, SessionResponse) {
	t.Helper()

	w := postJSON(h, "/calculator/sessions/"+id+"/keys", body)
	var resp SessionResponse
	if w.Code == http.StatusOK {
		testutil.DecodeJSONBody(t, w.Body, &resp)
	}
	return w, resp
}

func TestCreateSessionStartsInInitialState(t *testing.T) {
	store, h := newTestService(t)

	resp := createSession(t, h)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "0", resp.Display)
	assert.Equal(t, "0", resp.Raw)
	assert.Equal(t, "", resp.Expression)
	assert.Empty(t, resp.Operator)
	assert.Nil(t, resp.Previous)
	assert.True(t, resp.WaitingForOperand)
	assert.Equal(t, 0, resp.Presses)
	assert.Equal(t, 1, store.Len())
}

func TestPressKeysChainedEvaluation(t *testing.T) {
	_, h := newTestService(t)
	id := createSession(t, h).SessionID

	w, resp := pressKeys(t, h, id, `{"keys":["7","+","3","*","2","="]}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	assert.Equal(t, "20", resp.Display)
	assert.Equal(t, "7 + 3 × 2 =", resp.Expression)
	assert.Empty(t, resp.Operator)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, 20.0, *resp.Previous)
	assert.Equal(t, 6, resp.Presses)
}

func TestPressKeysSingleKeyThenBatch(t *testing.T) {
	_, h := newTestService(t)
	id := createSession(t, h).SessionID

	_, resp := pressKeys(t, h, id, `{"key":"5"}`)
	assert.Equal(t, "5", resp.Display)

	_, resp = pressKeys(t, h, id, `{"key":"+","keys":["×"]}`)
	assert.Equal(t, "×", resp.Operator)
	require.NotNil(t, resp.Previous)
	assert.Equal(t, 5.0, *resp.Previous)
	assert.Equal(t, "5 ×", resp.Expression)
}

func TestPressKeysGroupsLargeValues(t *testing.T) {
	_, h := newTestService(t)
	id := createSession(t, h).SessionID

	_, resp := pressKeys(t, h, id, `{"keys":["1","2","3","4","5","6","7",".","8","9"]}`)
	assert.Equal(t, "1,234,567.89", resp.Display)
	assert.Equal(t, "1234567.89", resp.Raw)
}

func TestPressKeysDivisionByZero(t *testing.T) {
	_, h := newTestService(t)
	id := createSession(t, h).SessionID

	w, resp := pressKeys(t, h, id, `{"keys":["1","÷","0","="]}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	assert.Equal(t, "Error", resp.Display)
	assert.Nil(t, resp.Previous)

	_, resp = pressKeys(t, h, id, `{"key":"4"}`)
	assert.Equal(t, "4", resp.Display)
	assert.Equal(t, "", resp.Expression)
}

func TestPressKeysRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "invalid json", body: `{"keys":`, wantErr: "invalid request body"},
		{name: "no keys", body: `{}`, wantErr: "no keys provided"},
		{name: "unknown key", body: `{"keys":["5","sqrt"]}`, wantErr: `key 1: unknown key: "sqrt"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, h := newTestService(t)
			id := createSession(t, h).SessionID

			w, _ := pressKeys(t, h, id, tc.body)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			assert.Equal(t, tc.wantErr, body["error"])

			// A rejected batch leaves the session untouched.
			w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+id, nil), h)
			var resp SessionResponse
			testutil.DecodeJSONBody(t, w.Body, &resp)
			assert.Equal(t, "0", resp.Display)
			assert.Equal(t, 0, resp.Presses)
		})
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	_, h := newTestService(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/nope", nil), h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	var body map[string]string
	testutil.DecodeJSONBody(t, w.Body, &body)
	assert.Equal(t, ErrSessionNotFound.Error(), body["error"])

	w, _ = pressKeys(t, h, "nope", `{"key":"1"}`)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestDeleteSession(t *testing.T) {
	store, h := newTestService(t)
	id := createSession(t, h).SessionID

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+id, nil), h)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, store.Len())

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+id, nil), h)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestReplay(t *testing.T) {
	store, h := newTestService(t)

	w := postJSON(h, "/calculator/replay", `{"keys":["5","0","%"]}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp ReplayResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	assert.Equal(t, "0.5", resp.Display)
	require.Len(t, resp.Steps, 3)
	assert.Equal(t, ReplayStep{Key: "5", Display: "5"}, resp.Steps[0])
	assert.Equal(t, ReplayStep{Key: "0", Display: "50"}, resp.Steps[1])
	assert.Equal(t, ReplayStep{Key: "%", Display: "0.5"}, resp.Steps[2])
	assert.Equal(t, 0, store.Len(), "replay must not create sessions")
}

func TestReplayRejectsBadInput(t *testing.T) {
	_, h := newTestService(t)

	for body, wantErr := range map[string]string{
		`nope`:                   "invalid request body",
		`{"keys":[]}`:            "no keys provided",
		`{"keys":["1","+","?"]}`: `key 2: unknown key: "?"`,
	} {
		w := postJSON(h, "/calculator/replay", body)
		testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

		var resp map[string]string
		testutil.DecodeJSONBody(t, w.Body, &resp)
		assert.Equal(t, wantErr, resp["error"], body)
	}
}

func TestKeypadFlow(t *testing.T) {
	store, h := newTestService(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), h)
	testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
	location := w.Result().Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/keypad/"), location)
	require.Equal(t, 1, store.Len())

	for _, key := range []string{"1", "2", "+/-"} {
		w = testutil.ExecuteRequest(testutil.NewFormRequest(location, url.Values{"key": {key}}), h)
		testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, location, w.Result().Header.Get("Location"))
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, location, nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="display">-12</p>`)
}

func TestKeypadUnknownKey(t *testing.T) {
	store, h := newTestService(t)
	sess := store.Create()

	w := testutil.ExecuteRequest(testutil.NewFormRequest("/keypad/"+sess.ID, url.Values{"key": {"sqrt"}}), h)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestKeypadUnknownSessionStartsOver(t *testing.T) {
	_, h := newTestService(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/keypad/expired", nil), h)
	testutil.CheckResponseCode(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Result().Header.Get("Location"))
}

type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestFailedWritesAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	oldLogger := observability.Logger
	observability.Logger = zap.New(core)
	t.Cleanup(func() { observability.Logger = oldLogger })

	writeJSON(context.Background(), failingWriter{httptest.NewRecorder()}, http.StatusOK, SessionResponse{})

	entries := logs.FilterMessage("writing response failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
	assert.Equal(t, "broken pipe", entries[0].ContextMap()["error"])

	store, h := newTestService(t)
	sess := store.Create()
	w := failingWriter{httptest.NewRecorder()}
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/keypad/"+sess.ID, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, logs.FilterMessage("writing keypad page failed").All(), 1)
}
