package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buildboard/internal/allocation"
	"buildboard/internal/report"
	"buildboard/internal/repository"
	"buildboard/internal/roster"
	"buildboard/internal/server"
	"buildboard/internal/service"
	"buildboard/internal/task"
	"buildboard/internal/testutil"
)

const rosterYAML = `
team_members:
  - {name: Ann, role: Builder}
  - {name: Bo, role: Builder}
  - {name: Dee, role: Director}
lead_roles: [Builder]
support_roles: [Builder]
`

type env struct {
	sheet *testutil.FakeSheet
	srv   *httptest.Server
}

func newEnv(t *testing.T, tasks ...task.Task) env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	fs := testutil.NewFakeSheet()
	codec := testutil.Codec()
	fs.SeedTasks(codec, tasks...)
	repo := repository.New(fs, codec,
		repository.WithLogger(logger),
		repository.WithIDGenerator(func() string { return "TASK-NEW" }),
	)

	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))
	r, err := roster.Load(path)
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	s := server.New(repo, r, server.WithLogger(logger), server.WithClock(now))
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return env{sheet: fs, srv: srv}
}

func (e env) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func sample(id string, status task.Status, start, end string) task.Task {
	return task.Task{
		ID:          id,
		Type:        "Study Build",
		ProjectName: "ACM-" + id,
		Priority:    task.PriorityHigh,
		EDCSystem:   "Rave",
		StartDate:   start,
		EndDate:     end,
		ScopedHours: 100,
		Status:      status,
		Team:        []string{},
	}
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTasks_Filters(t *testing.T) {
	e := newEnv(t,
		sample("A", task.StatusPendingAllocation, "2024-01-01", "2024-01-12"),
		sample("B", task.StatusInProgress, "2024-01-01", "2024-01-05"),
	)

	resp, body := e.do(t, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []task.Task
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all, 2)

	_, body = e.do(t, http.MethodGet, "/api/tasks?card=overdue", "")
	var overdue []task.Task
	require.NoError(t, json.Unmarshal(body, &overdue))
	require.Len(t, overdue, 1)
	assert.Equal(t, "B", overdue[0].ID)

	resp, _ = e.do(t, http.MethodGet, "/api/tasks?card=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTasks_StoreFailure(t *testing.T) {
	e := newEnv(t)
	e.sheet.RowsErr = service.StoreError(http.StatusForbidden, "forbidden", nil)

	resp, body := e.do(t, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "Failed to fetch tasks")
}

func TestCreateTask_TeamAsString(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/api/tasks",
		`{"taskType":"Study Build","projectName":"ACM-9","team":"Ann, Bo"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created task.Task
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "TASK-NEW", created.ID)
	assert.Equal(t, task.StatusPendingAllocation, created.Status)
	assert.Equal(t, []string{"Ann", "Bo"}, created.Team)
	assert.Equal(t, testutil.FirstRowID, created.RowID)
}

func TestCreateTask_BadInput(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.do(t, http.MethodPost, "/api/tasks", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/tasks", `{"startDate":"01/02/2024"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, e.sheet.Writes())
}

func TestUpdateTask(t *testing.T) {
	e := newEnv(t, sample("A", task.StatusAssigned, "2024-01-01", "2024-01-12"))

	resp, body := e.do(t, http.MethodPut, "/api/tasks/A",
		`{"id":"ignored","projectName":"ACM-A","status":"In Progress","team":["Bo"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	stored := testutil.Codec().Decode(e.sheet.Snapshot()[0])
	assert.Equal(t, "A", stored.ID)
	assert.Equal(t, task.StatusInProgress, stored.Status)
	assert.Equal(t, []string{"Bo"}, stored.Team)

	resp, _ = e.do(t, http.MethodPut, "/api/tasks/missing", `{"status":"Completed"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAllocateTask(t *testing.T) {
	e := newEnv(t, sample("A", task.StatusOnHold, "2024-01-01", "2024-01-12"))

	resp, body := e.do(t, http.MethodPost, "/api/tasks/A/allocate", `{"lead":"Ann","team":["Bo"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got task.Task
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, task.StatusAssigned, got.Status)
	assert.Equal(t, "Ann", got.Lead)
}

func TestTeamNamesMustSurviveTheCell(t *testing.T) {
	e := newEnv(t, sample("A", task.StatusOnHold, "2024-01-01", "2024-01-12"))

	resp, body := e.do(t, http.MethodPost, "/api/tasks", `{"projectName":"ACM-9","team":["Lee, Ann","Bo"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "comma")

	resp, _ = e.do(t, http.MethodPut, "/api/tasks/A", `{"projectName":"ACM-A","team":["Bo","  "]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/tasks/A/allocate", `{"lead":"Ann","team":["Lee, Ann"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, e.sheet.Writes())
}

func TestAvailability(t *testing.T) {
	busy := sample("B", task.StatusInProgress, "2024-01-08", "2024-01-20")
	busy.Lead = "Ann"
	e := newEnv(t, sample("A", task.StatusPendingAllocation, "2024-01-10", "2024-01-15"), busy)

	resp, body := e.do(t, http.MethodGet, "/api/tasks/A/availability?role=lead", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got []allocation.Availability
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Ann", got[0].Member.Name)
	assert.False(t, got[0].Available)
	assert.True(t, got[1].Available)

	resp, _ = e.do(t, http.MethodGet, "/api/tasks/A/availability?role=boss", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/tasks/Z/availability", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHours(t *testing.T) {
	a := sample("A", task.StatusAssigned, "2024-01-01", "2024-01-12")
	a.Lead = "Ann"
	a.Team = []string{"Bo"}
	e := newEnv(t, a)

	resp, body := e.do(t, http.MethodGet, "/api/tasks/A/hours", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got struct {
		Shares []allocation.Share `json:"shares"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, []allocation.Share{
		{Name: "Ann", Role: allocation.ShareLead, Hours: 55},
		{Name: "Bo", Role: allocation.ShareSupport, Hours: 50},
	}, got.Shares)
}

func TestSummary(t *testing.T) {
	e := newEnv(t,
		sample("A", task.StatusPendingAllocation, "2024-01-01", "2024-01-12"),
		sample("B", task.StatusInProgress, "2024-01-01", "2024-01-05"),
	)

	resp, body := e.do(t, http.MethodGet, "/api/reports/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got report.Snapshot
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, report.Summary{Total: 2, Pending: 1, InProgress: 1, Overdue: 1, DueThisWeek: 1}, got.Summary)
	assert.Len(t, got.Idle, 2)
	assert.Empty(t, got.Tasks)
}

func TestRoster(t *testing.T) {
	e := newEnv(t)
	resp, body := e.do(t, http.MethodGet, "/api/roster", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got roster.Data
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got.TeamMembers, 3)
	assert.Equal(t, roster.DefaultEDCSystems, got.EDCSystems)
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.do(t, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
