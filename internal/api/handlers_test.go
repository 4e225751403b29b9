package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edkuperman/techboard/internal/config"
	"github.com/edkuperman/techboard/internal/db"
	"github.com/edkuperman/techboard/internal/task"
)

// ===== Fakes =====

type fakeEntryStore struct {
	entries map[int64]db.Entry
	nextID  int64
	connErr error
	listErr error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: map[int64]db.Entry{}}
}

func (f *fakeEntryStore) TestConnection(ctx context.Context) error { return f.connErr }

func (f *fakeEntryStore) List(ctx context.Context, limit int) ([]db.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []db.Entry
	for _, e := range f.entries {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEntryStore) Create(ctx context.Context, title, content string) (*db.Entry, error) {
	f.nextID++
	e := db.Entry{ID: f.nextID, Title: title, Content: content, CreatedAt: time.Now()}
	f.entries[e.ID] = e
	return &e, nil
}

func (f *fakeEntryStore) Get(ctx context.Context, id int64) (*db.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: entry %d", db.ErrNotFound, id)
	}
	return &e, nil
}

type fakeCronStore struct {
	appendErr error
	records   []db.CronRecord
}

func (f *fakeCronStore) AppendRun(ctx context.Context) (*db.CronRecord, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	rec := db.CronRecord{
		ID:             int64(len(f.records) + 1),
		SequenceNumber: len(f.records) + 1,
		RunTimestamp:   time.Now(),
	}
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeCronStore) CountRuns(ctx context.Context) (int, error) {
	return len(f.records), nil
}

func (f *fakeCronStore) ListRuns(ctx context.Context, limit int) ([]db.CronRecord, error) {
	out := make([]db.CronRecord, 0, len(f.records))
	for i := len(f.records) - 1; i >= 0; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

type fakeCompanyStore struct{ companies []db.Company }

func (f *fakeCompanyStore) ListWithWebsites(ctx context.Context, limit int) ([]db.Company, error) {
	return f.companies, nil
}

type fakeLinkStore struct{ links []db.Link }

func (f *fakeLinkStore) List(ctx context.Context, limit int) ([]db.Link, error) {
	return f.links, nil
}

type testEnv struct {
	handlers *Handlers
	entries  *fakeEntryStore
	cron     *fakeCronStore
	router   http.Handler
}

func newTestEnv(cfg config.Config) *testEnv {
	entries := newFakeEntryStore()
	cron := &fakeCronStore{}
	h := &Handlers{
		cfg:       cfg,
		entries:   entries,
		cron:      cron,
		companies: &fakeCompanyStore{},
		links:     &fakeLinkStore{},
		runner:    task.NewRunner(cron),
		validate:  validator.New(),
	}
	return &testEnv{handlers: h, entries: entries, cron: cron, router: NewRouter(h)}
}

func devEnv() *testEnv {
	return newTestEnv(config.Config{Port: 5000, Env: "development"})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ===== Service endpoints =====

func TestHealth(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/health", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestHome(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/", "")
	require.Equal(t, 200, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestStatus(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/api/status", "")
	require.Equal(t, 200, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "development", body["environment"])
	assert.Equal(t, float64(5000), body["port"])
}

func TestDBTest(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/api/db/test", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "connected", decode(t, rec)["database"])
}

func TestDBTestUnreachable(t *testing.T) {
	env := devEnv()
	env.entries.connErr = errors.New("dial tcp: connection refused")
	rec := do(t, env.router, "GET", "/api/db/test", "")
	require.Equal(t, 500, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "connection refused")
}

func TestProductionSanitizesBackendErrors(t *testing.T) {
	env := newTestEnv(config.Config{Port: 5000, Env: "production"})
	env.entries.connErr = errors.New("dial tcp 10.0.0.3:5432: connection refused")
	rec := do(t, env.router, "GET", "/api/db/test", "")
	require.Equal(t, 500, rec.Code)
	assert.Equal(t, "internal server error", decode(t, rec)["error"])
}

func TestUnknownRouteIs404JSON(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/nope", "")
	require.Equal(t, 404, rec.Code)
	assert.Equal(t, "Not Found", decode(t, rec)["error"])
}

// ===== Entries =====

func TestCreateThenGetEntry(t *testing.T) {
	env := devEnv()

	rec := do(t, env.router, "POST", "/api/entries", `{"title":"T","content":"C"}`)
	require.Equal(t, 201, rec.Code)
	created := decode(t, rec)
	assert.Equal(t, "T", created["title"])
	assert.Equal(t, "C", created["content"])
	assert.NotEmpty(t, created["created_at"])
	id := int64(created["id"].(float64))
	require.Positive(t, id)

	rec = do(t, env.router, "GET", fmt.Sprintf("/api/entries/%d", id), "")
	require.Equal(t, 200, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, created["title"], got["title"])
	assert.Equal(t, created["content"], got["content"])
	assert.Equal(t, created["id"], got["id"])
}

func TestCreateEntryMissingTitle(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "POST", "/api/entries", `{"content":"C"}`)
	require.Equal(t, 400, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "title")
	assert.Empty(t, env.entries.entries, "no insert on validation failure")
}

func TestCreateEntryMissingContent(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "POST", "/api/entries", `{"title":"T"}`)
	require.Equal(t, 400, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "content")
	assert.Empty(t, env.entries.entries)
}

func TestCreateEntryTitleTooLong(t *testing.T) {
	env := devEnv()
	long := strings.Repeat("x", 256)
	rec := do(t, env.router, "POST", "/api/entries", `{"title":"`+long+`","content":"C"}`)
	require.Equal(t, 400, rec.Code)
}

func TestCreateEntryBadJSON(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "POST", "/api/entries", `{"title":`)
	require.Equal(t, 400, rec.Code)
}

func TestGetEntryNotFound(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/api/entries/999999", "")
	require.Equal(t, 404, rec.Code)
}

func TestGetEntryBadID(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/api/entries/abc", "")
	require.Equal(t, 400, rec.Code)
}

func TestListEntriesEmptyIsArray(t *testing.T) {
	env := devEnv()
	rec := do(t, env.router, "GET", "/api/entries", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

// ===== Cron =====

func TestCronRunTrigger(t *testing.T) {
	env := devEnv()

	rec := do(t, env.router, "POST", "/api/cron/run", "")
	require.Equal(t, 200, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["sequence_number"])

	rec = do(t, env.router, "GET", "/api/cron/run", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["sequence_number"])
}

func TestCronRunFailureIsHTTPErrorNotCrash(t *testing.T) {
	env := devEnv()
	env.cron.appendErr = errors.New("pool exhausted")
	rec := do(t, env.router, "POST", "/api/cron/run", "")
	require.Equal(t, 500, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "cron job failed")
}

func TestListRuns(t *testing.T) {
	env := devEnv()
	do(t, env.router, "POST", "/api/cron/run", "")
	do(t, env.router, "POST", "/api/cron/run", "")

	rec := do(t, env.router, "GET", "/api/test_db", "")
	require.Equal(t, 200, rec.Code)
	var runs []db.CronRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, 2, runs[0].SequenceNumber)
	assert.Equal(t, 1, runs[1].SequenceNumber)
}

// ===== Companies & links =====

func TestListCompaniesAndLinksShape(t *testing.T) {
	env := devEnv()

	rec := do(t, env.router, "GET", "/api/companies", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])

	rec = do(t, env.router, "GET", "/api/links", "")
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])
}
