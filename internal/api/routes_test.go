package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recallcards/internal/clock"
	"github.com/vytor/recallcards/internal/flashcard"
	"github.com/vytor/recallcards/internal/services"
	"github.com/vytor/recallcards/internal/store"
	"github.com/vytor/recallcards/internal/testutil"
	"github.com/vytor/recallcards/internal/testutil/mocks"
)

var t0 = time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiFixture struct {
	handler http.Handler
	queue   *mocks.MockJobQueue
	clk     *clock.Fixed
}

func newAPIFixture(t *testing.T, cards ...flashcard.Card) apiFixture {
	t.Helper()
	clk := clock.NewFixed(t0)
	queue := &mocks.MockJobQueue{}
	queue.On("EnqueueSave", mock.Anything).Return(nil).Maybe()
	queue.On("EnqueueDelete", mock.Anything).Return(nil).Maybe()

	svc := services.NewFlashcardService(
		store.NewSync(store.New(cards...)),
		flashcard.NewScheduler(clk),
		clk,
		&mocks.MockCardRepository{},
		queue,
		50,
	)
	return apiFixture{handler: NewServer(svc, stubPinger{}).Routes(), queue: queue, clk: clk}
}

func (f apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rec).Error.Code
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestReady_DatabaseDown(t *testing.T) {
	svc := services.NewFlashcardService(nil, flashcard.NewScheduler(nil), nil, nil, nil, 10)
	h := NewServer(svc, stubPinger{err: stderrors.New("locked")}).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateAndReviewCard(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/cards", `{"question":"hola","answer":"hello","category":"spanish"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[flashcard.Card](t, rec)
	assert.Equal(t, "hola", created.Question)
	assert.Equal(t, t0, created.DueDate())

	rec = f.do(t, http.MethodGet, "/cards/due", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[cardListResponse](t, rec).Count)

	rec = f.do(t, http.MethodPost, "/cards/"+created.ID()+"/review", `{"rating":"easy","time_taken":3.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decode[flashcard.Card](t, rec)
	assert.Equal(t, 3, reviewed.Interval())
	assert.InDelta(t, 2.65, reviewed.EaseFactor(), 1e-9)
	assert.Equal(t, t0.AddDate(0, 0, 3), reviewed.DueDate())

	rec = f.do(t, http.MethodGet, "/cards/due", "")
	assert.Equal(t, 0, decode[cardListResponse](t, rec).Count)

	rec = f.do(t, http.MethodGet, "/cards/"+created.ID()+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[historyResponse](t, rec)
	require.Len(t, history.Reviews, 1)
	assert.Equal(t, flashcard.Easy, history.Reviews[0].Rating)
	assert.Equal(t, 3, history.Reviews[0].NewInterval)

	f.queue.AssertNumberOfCalls(t, "EnqueueSave", 2)
}

func TestCreateCard_Validation(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/cards", `{"answer":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "question")

	rec = f.do(t, http.MethodPost, "/cards", `{"question":"q","answer":"a","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/cards", `{"question":"q","answer":"a","extra":1}`)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/cards", "")
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))
}

func TestReviewCard_Errors(t *testing.T) {
	f := newAPIFixture(t, testutil.Card(t, testutil.CardSpec{ID: "c1", CreatedAt: t0}))

	rec := f.do(t, http.MethodPost, "/cards/c1/review", `{"rating":"perfect"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/cards/c1/review", `{"rating":"good","time_taken":-2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/cards/missing/review", `{"rating":"good"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = f.do(t, http.MethodGet, "/cards/c1/history", "")
	assert.Empty(t, decode[historyResponse](t, rec).Reviews)
	f.queue.AssertNotCalled(t, "EnqueueSave", mock.Anything)
}

func TestSetConfidence(t *testing.T) {
	f := newAPIFixture(t, testutil.Card(t, testutil.CardSpec{ID: "c1", CreatedAt: t0}))

	rec := f.do(t, http.MethodPost, "/cards/c1/confidence", `{"level":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card := decode[flashcard.Card](t, rec)
	assert.Equal(t, 2, card.Confidence())
	assert.Equal(t, 1, card.Interval())

	rec = f.do(t, http.MethodPost, "/cards/c1/confidence", `{"level":7}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/cards/c1/confidence", `{"level":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	f := newAPIFixture(t, testutil.Card(t, testutil.CardSpec{ID: "c1", CreatedAt: t0, Interval: 4, Repetitions: 2}))

	rec := f.do(t, http.MethodGet, "/cards/c1/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode[map[string]previewOutcome](t, rec)

	require.Len(t, preview, 4)
	assert.Equal(t, 1, preview["again"].IntervalDays)
	assert.Equal(t, 11, preview["hard"].IntervalDays)
	assert.Equal(t, 10, preview["good"].IntervalDays)
	assert.Equal(t, 13, preview["easy"].IntervalDays)
	assert.Equal(t, t0.AddDate(0, 0, 10), preview["good"].DueAt)

	rec = f.do(t, http.MethodGet, "/cards/c1", "")
	assert.Equal(t, 0, decode[flashcard.Card](t, rec).ReviewCount())
}

func TestUpdateAndDeleteCard(t *testing.T) {
	f := newAPIFixture(t, testutil.Card(t, testutil.CardSpec{ID: "c1", Question: "q", Answer: "a", CreatedAt: t0}))

	rec := f.do(t, http.MethodPatch, "/cards/c1", `{"answer":"b","starred":true,"color":"#00ff00"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	card := decode[flashcard.Card](t, rec)
	assert.Equal(t, "b", card.Answer)
	assert.True(t, card.Starred)
	assert.Equal(t, "#00ff00", card.Color)

	rec = f.do(t, http.MethodPatch, "/cards/c1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/cards/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/cards/c1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	f.queue.AssertCalled(t, "EnqueueDelete", "c1")
}

func TestListCards_Filters(t *testing.T) {
	f := newAPIFixture(t,
		testutil.Card(t, testutil.CardSpec{ID: "a", Category: "spanish", CreatedAt: t0, Confidence: 5, Starred: true}),
		testutil.Card(t, testutil.CardSpec{ID: "b", Category: "spanish", CreatedAt: t0.Add(time.Hour), MarkedForLater: true}),
		testutil.Card(t, testutil.CardSpec{ID: "c", Category: "french", CreatedAt: t0.Add(2 * time.Hour)}),
	)

	ids := func(path string) []string {
		rec := f.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return testutil.IDs(decode[cardListResponse](t, rec).Cards)
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids("/cards"))
	assert.Equal(t, []string{"a", "b"}, ids("/cards?category=spanish"))
	assert.Equal(t, []string{"a"}, ids("/cards?confidence=5"))
	assert.Equal(t, []string{"a"}, ids("/cards?starred=true"))
	assert.Equal(t, []string{"b"}, ids("/cards?category=spanish&marked=true"))
	assert.Equal(t, []string{"c", "b"}, ids("/cards/recent?limit=2"))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/cards?confidence=9", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/cards?starred=maybe", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/cards/due?limit=x", "").Code)
}

func TestCategoriesAndStats(t *testing.T) {
	f := newAPIFixture(t,
		testutil.Card(t, testutil.CardSpec{ID: "a", Category: "spanish", CreatedAt: t0, Confidence: 5, EaseFactor: 3.0}),
		testutil.Card(t, testutil.CardSpec{ID: "b", Category: "french", CreatedAt: t0, DueAt: t0.Add(time.Hour), EaseFactor: 2.0}),
	)

	rec := f.do(t, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":[{"name":"french","cards":1},{"name":"spanish","cards":1}]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":2,"due":1,"mastered":1,"difficult":1,"average_ease":2.5}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := loggingMiddleware(recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
}
