package httpapi

import (
	"net/http"
	"strconv"

	"github.com/alexanderramin/taskseq/internal/app"
	"github.com/alexanderramin/taskseq/internal/domain"
	"github.com/alexanderramin/taskseq/internal/importer"
	"github.com/gorilla/mux"
)

// Sequences

func (s *Server) listSequences(w http.ResponseWriter, r *http.Request) {
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("archived"))
	overviews, err := s.svc.Sequences.ListByFamily(r.Context(), mux.Vars(r)["familyID"], includeArchived)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]overviewJSON, 0, len(overviews))
	for _, o := range overviews {
		out = append(out, overviewJSON{Sequence: toSequenceJSON(o.Sequence), Next: optionalTaskJSON(o.Next), State: o.State})
	}
	writeJSON(w, http.StatusOK, out)
}

// createSequence accepts the same document as a sequence definition file.
func (s *Server) createSequence(w http.ResponseWriter, r *http.Request) {
	var file importer.SequenceFile
	if err := decodeJSON(r, &file); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Imports.Import(r.Context(), &file, mux.Vars(r)["familyID"], s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":               res.SequenceID,
		"title":            res.Title,
		"task_count":       res.TaskCount,
		"dependency_count": res.DependencyCount,
	})
}

func (s *Server) getSequence(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.Sequences.Get(r.Context(), mux.Vars(r)["sequenceID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSequenceViewJSON(view))
}

func (s *Server) updateSequence(w http.ResponseWriter, r *http.Request) {
	var patch sequencePatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := patch.update()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	seq, err := s.svc.Sequences.Update(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSequenceJSON(seq))
}

func (s *Server) deleteSequence(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sequences.Delete(r.Context(), mux.Vars(r)["sequenceID"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) archiveSequence(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sequences.Archive(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unarchiveSequence(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sequences.Unarchive(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) nextTask(w http.ResponseWriter, r *http.Request) {
	next, err := s.svc.Next.Resolve(r.Context(), mux.Vars(r)["sequenceID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nextJSON{SequenceID: next.SequenceID, State: next.State, Task: optionalTaskJSON(next.Task)})
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	samples, err := s.svc.Completion.ProgressHistory(r.Context(), mux.Vars(r)["sequenceID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]sampleJSON, 0, len(samples))
	for _, p := range samples {
		out = append(out, sampleJSON{RecordedAt: p.RecordedAt, Pct: p.Pct})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) recompute(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Completion.RecomputeSequence(r.Context(), mux.Vars(r)["sequenceID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryJSON{
		SequenceID:     sum.SequenceID,
		CompletedCount: sum.CompletedCount,
		TotalCount:     sum.TotalCount,
		Pct:            sum.Pct,
		Status:         string(sum.Status),
		CompletedAt:    sum.CompletedAt,
		Healed:         sum.Healed,
	})
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskIDs []string `json:"task_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Tasks.ReorderTasks(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r), body.TaskIDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tasks

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	spec, err := body.spec()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.AddTask(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r), spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskJSON(task))
}

func (s *Server) removeTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.svc.Tasks.RemoveTask(r.Context(), vars["sequenceID"], vars["taskID"], s.userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.Tasks.Get(r.Context(), mux.Vars(r)["taskID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch taskPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := patch.update()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.UpdateTask(r.Context(), mux.Vars(r)["taskID"], s.userID(r), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

type completedBody struct {
	Completed bool `json:"completed"`
}

func (s *Server) setCompleted(w http.ResponseWriter, r *http.Request) {
	var body completedBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.SetCompleted(r.Context(), mux.Vars(r)["taskID"], s.userID(r), body.Completed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

func (s *Server) setSubTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		s.writeError(w, r, &badRequest{err})
		return
	}
	var body completedBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Tasks.SetSubTaskCompleted(r.Context(), vars["taskID"], index, body.Completed, s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

// Reminders

func (s *Server) sequenceReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.svc.Reminders.EvaluateReminders(r.Context(), mux.Vars(r)["sequenceID"], s.now())
	s.writeReminders(w, r, reminders, err)
}

func (s *Server) familyReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := s.svc.Reminders.EvaluateFamily(r.Context(), mux.Vars(r)["familyID"], s.now())
	s.writeReminders(w, r, reminders, err)
}

func (s *Server) writeReminders(w http.ResponseWriter, r *http.Request, reminders []app.ReminderToSend, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]reminderJSON, 0, len(reminders))
	for _, rem := range reminders {
		out = append(out, toReminderJSON(rem))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) acknowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reminders.Acknowledge(r.Context(), mux.Vars(r)["taskID"], s.now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) snooze(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Reminders.Snooze(r.Context(), mux.Vars(r)["taskID"], s.now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delegation

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TaskIDs []string `json:"task_ids"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.svc.Delegation.Recommend(r.Context(), mux.Vars(r)["familyID"], body.TaskIDs, nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make(map[string]recommendationJSON, len(recs))
	for id, rec := range recs {
		out[id] = toRecommendationJSON(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) assign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MemberID string `json:"member_id"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	task, err := s.svc.Delegation.Apply(r.Context(), mux.Vars(r)["taskID"], body.MemberID, s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

func (s *Server) autoAssign(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Delegation.AutoAssign(r.Context(), mux.Vars(r)["sequenceID"], s.userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]recommendationJSON, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecommendationJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

// Members

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.svc.Members.List(r.Context(), mux.Vars(r)["familyID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]memberJSON, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createMember(w http.ResponseWriter, r *http.Request) {
	var body memberBody
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	m := &domain.Member{
		ID:       body.ID,
		FamilyID: mux.Vars(r)["familyID"],
		Name:     body.Name,
		Role:     domain.MemberRole(body.Role),
	}
	if err := s.svc.Members.Create(r.Context(), m); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberJSON(m))
}

func (s *Server) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Members.Get(r.Context(), mux.Vars(r)["memberID"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}

func (s *Server) deleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Members.Delete(r.Context(), mux.Vars(r)["memberID"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setSkill(w http.ResponseWriter, r *http.Request) {
	var skill domain.Skill
	if err := decodeJSON(r, &skill); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Members.SetSkill(r.Context(), mux.Vars(r)["memberID"], skill)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberJSON(m))
}
