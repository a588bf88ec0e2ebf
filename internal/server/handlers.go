package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"buildboard/internal/allocation"
	"buildboard/internal/report"
	"buildboard/internal/repository"
	"buildboard/internal/sheet"
	"buildboard/internal/task"
)

// taskRequest is a task as sent by the front end. Team may be a list or a
// delimited string.
type taskRequest struct {
	task.Task
	Team any `json:"team"`
}

func (req taskRequest) toTask() task.Task {
	t := req.Task
	t.Team = sheet.TeamValue(req.Team)
	return t
}

type allocateRequest struct {
	Lead          string `json:"lead"`
	SecondaryLead string `json:"secondaryLead"`
	Team          any    `json:"team"`
}

type hoursResponse struct {
	TaskID string             `json:"taskId"`
	Shares []allocation.Share `json:"shares"`
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errBadRequest("invalid request body", err)
	}
	return nil
}

func (s *Server) listTasks(r *http.Request) (int, any, error) {
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		return 0, nil, err
	}

	q := r.URL.Query()
	card, err := report.ParseCard(q.Get("card"))
	if err != nil {
		return 0, nil, errBadRequest(err.Error(), nil)
	}
	f := report.Filter{
		EDCSystem: q.Get("system"),
		Member:    q.Get("member"),
		Status:    task.Status(q.Get("status")),
		Card:      card,
	}
	return http.StatusOK, f.Apply(tasks, s.now()), nil
}

func (s *Server) getTask(r *http.Request) (int, any, error) {
	t, err := s.tasks.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, t, nil
}

func (s *Server) createTask(r *http.Request) (int, any, error) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	t := req.toTask()
	if err := validate(t); err != nil {
		return 0, nil, err
	}
	created, err := s.tasks.CreateTask(r.Context(), t)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, created, nil
}

func (s *Server) updateTask(r *http.Request) (int, any, error) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	t := req.toTask()
	t.ID = chi.URLParam(r, "id")
	if err := validate(t); err != nil {
		return 0, nil, err
	}
	updated, err := s.tasks.UpdateTask(r.Context(), t)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, updated, nil
}

func (s *Server) allocateTask(r *http.Request) (int, any, error) {
	var req allocateRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	team := sheet.TeamValue(req.Team)
	if err := sheet.CheckTeam(team); err != nil {
		return 0, nil, errBadRequest(err.Error(), err)
	}
	t, err := s.tasks.AllocateTask(r.Context(), chi.URLParam(r, "id"), repository.Allocation{
		Lead:          req.Lead,
		SecondaryLead: req.SecondaryLead,
		Team:          team,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, t, nil
}

// availability assesses the roster against the task's dates. role selects
// the pool: lead, support, or every assignable member when empty.
func (s *Server) availability(r *http.Request) (int, any, error) {
	pool := s.roster.Assignable()
	switch role := r.URL.Query().Get("role"); role {
	case "":
	case "lead":
		pool = s.roster.Leads()
	case "support":
		pool = s.roster.Support()
	default:
		return 0, nil, errBadRequest("unknown role: "+role, nil)
	}

	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		return 0, nil, err
	}
	t, ok := findTask(tasks, chi.URLParam(r, "id"))
	if !ok {
		return 0, nil, errNotFound("Task not found")
	}
	return http.StatusOK, allocation.Assess(t, pool, tasks), nil
}

func (s *Server) hours(r *http.Request) (int, any, error) {
	t, err := s.tasks.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, hoursResponse{TaskID: t.ID, Shares: allocation.TaskShares(t)}, nil
}

func (s *Server) summary(r *http.Request) (int, any, error) {
	tasks, err := s.tasks.ListTasks(r.Context())
	if err != nil {
		return 0, nil, err
	}
	snap := report.Build(tasks, s.roster.Assignable(), s.roster.Snapshot().EDCSystems, s.now())
	snap.Tasks = nil
	return http.StatusOK, snap, nil
}

func (s *Server) getRoster(r *http.Request) (int, any, error) {
	return http.StatusOK, s.roster.Snapshot(), nil
}

// validate rejects dates that are set but do not parse.
func validate(t task.Task) error {
	if err := sheet.CheckTeam(t.Team); err != nil {
		return errBadRequest(err.Error(), err)
	}
	for _, d := range []string{t.StartDate, t.EndDate} {
		if d == "" {
			continue
		}
		if _, err := task.ParseDate(d); err != nil {
			return errBadRequest("invalid date: "+d, err)
		}
	}
	return nil
}

func findTask(tasks []task.Task, id string) (task.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}
