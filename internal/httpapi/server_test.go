package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/delegation"
	"github.com/alexanderramin/taskseq/internal/repository"
	"github.com/alexanderramin/taskseq/internal/service"
	"github.com/alexanderramin/taskseq/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T) Services {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	sequences := repository.NewSQLiteSequenceRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	members := repository.NewSQLiteMemberRepo(database)

	completion := service.NewCompletionService(sequences, uow)
	seqSvc := service.NewSequenceService(sequences, tasks, uow, completion)
	return Services{
		Sequences:  seqSvc,
		Tasks:      service.NewTaskService(sequences, tasks, uow, completion),
		Next:       service.NewNextTaskService(sequences, tasks),
		Completion: completion,
		Reminders:  service.NewReminderService(sequences, tasks, uow, service.ScopeActionable),
		Delegation: service.NewDelegationService(sequences, tasks, members, uow, delegation.New()),
		Members:    service.NewMemberService(members, uow),
		Imports:    service.NewImportService(seqSvc),
	}
}

func newTestServer(t *testing.T, logs io.Writer) *Server {
	t.Helper()
	if logs == nil {
		logs = io.Discard
	}
	return New(newTestServices(t),
		WithLogger(slog.New(slog.NewTextHandler(logs, nil))),
		WithDefaultUser("parent-1"),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const moveHouse = `{
	"title": "Move house",
	"category": "Home",
	"sequential": true,
	"tasks": [
		{"ref": "pack", "title": "Pack boxes"},
		{"ref": "van", "title": "Book van"},
		{"ref": "unpack", "title": "Unpack", "subtasks": ["Kitchen", "Bedroom"]}
	]
}`

func createMoveHouse(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/families/fam/sequences", moveHouse)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, res["task_count"])
	assert.EqualValues(t, 2, res["dependency_count"])
	return res["id"].(string)
}

func TestServer_SequenceLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	seqID := createMoveHouse(t, srv)

	rec := do(t, srv, http.MethodGet, "/sequences/"+seqID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[sequenceViewJSON](t, rec)
	require.Len(t, view.Tasks, 3)
	assert.Equal(t, "actionable", string(view.State))
	assert.Equal(t, "Home", view.Sequence.Category)
	assert.False(t, *view.Tasks[0].Blocked)
	assert.True(t, *view.Tasks[1].Blocked)
	assert.Equal(t, []string{view.Tasks[0].ID}, view.Tasks[1].PendingDependencies)

	rec = do(t, srv, http.MethodGet, "/sequences/"+seqID+"/next", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	next := decode[nextJSON](t, rec)
	require.NotNil(t, next.Task)
	assert.Equal(t, "Pack boxes", next.Task.Title)

	rec = do(t, srv, http.MethodPut, "/tasks/"+next.Task.ID+"/completed", `{"completed": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	done := decode[taskJSON](t, rec)
	assert.Equal(t, "completed", done.Status)
	assert.Equal(t, "parent-1", done.CompletedBy)

	next = decode[nextJSON](t, do(t, srv, http.MethodGet, "/sequences/"+seqID+"/next", nil))
	assert.Equal(t, "Book van", next.Task.Title)

	rec = do(t, srv, http.MethodPost, "/sequences/"+seqID+"/recompute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[summaryJSON](t, rec)
	assert.Equal(t, 1, sum.CompletedCount)
	assert.Equal(t, 3, sum.TotalCount)
	assert.InDelta(t, 100.0/3, sum.Pct, 1e-9)
	assert.False(t, sum.Healed)

	rec = do(t, srv, http.MethodGet, "/families/fam/sequences", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]overviewJSON](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Book van", list[0].Next.Title)

	rec = do(t, srv, http.MethodDelete, "/sequences/"+seqID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, "/sequences/"+seqID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_TaskEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	seqID := createMoveHouse(t, srv)
	view := decode[sequenceViewJSON](t, do(t, srv, http.MethodGet, "/sequences/"+seqID, nil))
	unpack := view.Tasks[2]

	rec := do(t, srv, http.MethodPost, "/sequences/"+seqID+"/tasks", map[string]any{
		"title":      "Return keys",
		"priority":   "high",
		"depends_on": []string{unpack.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[taskJSON](t, rec)
	assert.Equal(t, 3, added.Position)
	assert.Equal(t, "high", added.Priority)
	assert.Equal(t, "Home", added.Category)

	rec = do(t, srv, http.MethodPatch, "/tasks/"+added.ID, `{"notes": "Landlord is Sam", "due_date": "2025-04-01"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[taskJSON](t, rec)
	assert.Equal(t, "Landlord is Sam", patched.Notes)
	require.NotNil(t, patched.DueDate)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), patched.DueDate.UTC())

	rec = do(t, srv, http.MethodPut, "/tasks/"+unpack.ID+"/subtasks/0", `{"completed": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decode[taskJSON](t, rec).Status)
	rec = do(t, srv, http.MethodPut, "/tasks/"+unpack.ID+"/subtasks/1", `{"completed": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode[taskJSON](t, rec).Status)

	rec = do(t, srv, http.MethodPut, "/sequences/"+seqID+"/order", map[string]any{
		"task_ids": []string{added.ID, view.Tasks[0].ID, view.Tasks[1].ID, unpack.ID},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, decode[taskJSON](t, do(t, srv, http.MethodGet, "/tasks/"+added.ID, nil)).Position)

	rec = do(t, srv, http.MethodDelete, "/sequences/"+seqID+"/tasks/"+unpack.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	after := decode[taskJSON](t, do(t, srv, http.MethodGet, "/tasks/"+added.ID, nil))
	assert.Empty(t, after.Dependencies)
}

func TestServer_ErrorMapping(t *testing.T) {
	srv := newTestServer(t, nil)
	seqID := createMoveHouse(t, srv)
	view := decode[sequenceViewJSON](t, do(t, srv, http.MethodGet, "/sequences/"+seqID, nil))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown sequence", http.MethodGet, "/sequences/missing", nil, http.StatusNotFound},
		{"unknown task", http.MethodGet, "/tasks/missing", nil, http.StatusNotFound},
		{"malformed body", http.MethodPatch, "/tasks/" + view.Tasks[0].ID, `{"title": `, http.StatusBadRequest},
		{"unknown field", http.MethodPatch, "/tasks/" + view.Tasks[0].ID, `{"colour": "red"}`, http.StatusBadRequest},
		{"bad priority", http.MethodPatch, "/sequences/" + seqID, `{"priority": "urgent"}`, http.StatusBadRequest},
		{"bad due date", http.MethodPatch, "/tasks/" + view.Tasks[0].ID, `{"due_date": "next week"}`, http.StatusBadRequest},
		{"dependency cycle", http.MethodPatch, "/tasks/" + view.Tasks[0].ID,
			map[string]any{"dependencies": []string{view.Tasks[2].ID}}, http.StatusUnprocessableEntity},
		{"cyclic definition", http.MethodPost, "/families/fam/sequences",
			`{"title": "Loop", "tasks": [{"ref": "a", "depends_on": ["b"]}, {"ref": "b", "depends_on": ["a"]}]}`,
			http.StatusUnprocessableEntity},
		{"nobody to delegate to", http.MethodPost, "/families/fam/recommendations",
			map[string]any{"task_ids": []string{view.Tasks[0].ID}}, http.StatusConflict},
		{"subtask out of range", http.MethodPut, "/tasks/" + view.Tasks[0].ID + "/subtasks/4", `{"completed": true}`, http.StatusBadRequest},
		{"no route", http.MethodGet, "/nowhere", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[errorBody](t, rec).Error)
		})
	}
}

type brokenSequences struct {
	service.SequenceService
}

func (brokenSequences) Get(context.Context, string) (*app.SequenceView, error) {
	return nil, errors.New("database is locked")
}

func TestServer_InternalErrorsAreGeneric(t *testing.T) {
	var logs bytes.Buffer
	srv := New(Services{Sequences: brokenSequences{}}, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	rec := do(t, srv, http.MethodGet, "/sequences/s1", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "couldn't update the task", decode[errorBody](t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "locked")
	assert.Contains(t, logs.String(), "database is locked")
}

func TestServer_MembersAndDelegation(t *testing.T) {
	srv := newTestServer(t, nil)
	seqID := createMoveHouse(t, srv)
	view := decode[sequenceViewJSON](t, do(t, srv, http.MethodGet, "/sequences/"+seqID, nil))

	rec := do(t, srv, http.MethodPost, "/families/fam/members", `{"name": "Alice", "role": "parent"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	alice := decode[memberJSON](t, rec)

	rec = do(t, srv, http.MethodPut, "/members/"+alice.ID+"/skills", `{"category": "Home", "level": 4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[memberJSON](t, rec).Skills, 1)

	rec = do(t, srv, http.MethodPost, "/families/fam/members", `{"name": "Tim", "role": "child"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	members := decode[[]memberJSON](t, do(t, srv, http.MethodGet, "/families/fam/members", nil))
	assert.Len(t, members, 2)

	taskID := view.Tasks[0].ID
	rec = do(t, srv, http.MethodPost, "/families/fam/recommendations", map[string]any{"task_ids": []string{taskID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recs := decode[map[string]recommendationJSON](t, rec)
	require.Contains(t, recs, taskID)
	assert.Equal(t, alice.ID, recs[taskID].AssigneeID)
	assert.NotEmpty(t, recs[taskID].Reason)

	rec = do(t, srv, http.MethodPut, "/tasks/"+taskID+"/assignee", map[string]string{"member_id": alice.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, alice.ID, decode[taskJSON](t, rec).AssignedTo)

	rec = do(t, srv, http.MethodPost, "/sequences/"+seqID+"/auto-assign", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "manual sequences are not auto-assigned")

	rec = do(t, srv, http.MethodDelete, "/members/"+alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/members/"+alice.ID, nil).Code)
}

func TestServer_Reminders(t *testing.T) {
	srv := newTestServer(t, nil)
	seqID := createMoveHouse(t, srv)

	rec := do(t, srv, http.MethodGet, "/sequences/"+seqID+"/reminders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reminders := decode[[]reminderJSON](t, rec)
	require.Len(t, reminders, 1, "only the unblocked task is reminded")
	assert.Equal(t, "Pack boxes", reminders[0].TaskTitle)
	assert.Contains(t, reminders[0].Message, `"Move house"`)

	rec = do(t, srv, http.MethodPost, "/tasks/"+reminders[0].TaskID+"/reminders/ack", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	family := decode[[]reminderJSON](t, do(t, srv, http.MethodGet, "/families/fam/reminders", nil))
	assert.Empty(t, family)

	rec = do(t, srv, http.MethodPost, "/tasks/missing/reminders/snooze", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_LogsRequests(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(t, &logs)

	do(t, srv, http.MethodGet, "/sequences/missing", nil)

	out := logs.String()
	assert.Contains(t, out, "http_request")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/sequences/missing")
	assert.Contains(t, out, "status=404")
}
