package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"solocraft/internal/engine"
)

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.GetUserProgress(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleListMissions accepts optional status and projectId query filters.
func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status, err := engine.ParseMissionStatus(q.Get("status"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	f := engine.MissionFilter{Status: status}
	if q.Has("projectId") {
		pid := q.Get("projectId")
		f.ProjectID = &pid
	}

	missions, err := s.svc.ListMissions(r.Context(), f)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

func (s *Server) handleActiveDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.svc.ActiveDebts(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleClearedDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.svc.ClearedDebts(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debts)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// handleCurrentProject answers the selected project, or null.
func (s *Server) handleCurrentProject(w http.ResponseWriter, r *http.Request) {
	cur, err := s.svc.CurrentProject(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

type createMissionRequest struct {
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Difficulty  string          `json:"difficulty"`
	Constraints *string         `json:"constraints"`
	Rewards     json.RawMessage `json:"rewards"`
	Punishment  *string         `json:"punishment"`
	ProjectID   *string         `json:"projectId"`
}

// parseRewards accepts a JSON number or a numeric string. Absent is zero.
func parseRewards(raw json.RawMessage) (int, error) {
	invalid := engine.ValidationError{Field: "rewards", Reason: "must be a non-negative integer"}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n json.Number
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, invalid
		}
		n = json.Number(strings.TrimSpace(str))
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return 0, invalid
	}

	v, err := strconv.Atoi(n.String())
	if err != nil || v < 0 {
		return 0, invalid
	}
	return v, nil
}

func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	difficulty, err := engine.ParseDifficulty(req.Difficulty)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	rewards, err := parseRewards(req.Rewards)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	res, err := s.svc.CreateMission(r.Context(), engine.CreateMissionInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  difficulty,
		Constraints: req.Constraints,
		Rewards:     rewards,
		Punishment:  req.Punishment,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, Response{"missionId": res.MissionID, "projectId": res.ProjectID})
}

type missionRequest struct {
	MissionID string `json:"missionId"`
}

func (s *Server) handleCompleteMission(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	res, err := s.svc.CompleteMission(r.Context(), req.MissionID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, Response{"levelUp": res.LevelUp, "xp": res.XP, "newLevel": res.NewLevel})
}

func (s *Server) handleFailMission(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	res, err := s.svc.FailMission(r.Context(), req.MissionID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, Response{"effects": res.Effects})
}

func (s *Server) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	var req missionRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.svc.DeleteMission(r.Context(), req.MissionID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, nil)
}

type ticketRequest struct {
	Purpose string `json:"purpose"`
}

func (s *Server) handleUseTicket(t engine.TicketType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ticketRequest
		if err := readJSON(r, &req); err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		res, err := s.svc.UseTicket(r.Context(), t, req.Purpose)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		writeOK(w, Response{"debtId": res.DebtID, "remaining": res.Remaining, "projectId": res.ProjectID})
	}
}

type insightRequest struct {
	DebtID      string `json:"debtId"`
	InsightText string `json:"insightText"`
}

func (s *Server) handleWriteInsight(w http.ResponseWriter, r *http.Request) {
	var req insightRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.svc.WriteInsight(r.Context(), req.DebtID, req.InsightText); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, nil)
}

type projectRequest struct {
	ProjectID           string  `json:"projectId"`
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	HelpTicketLimit     *int    `json:"helpTicketLimit"`
	TutorialTicketLimit *int    `json:"tutorialTicketLimit"`
	MakeCurrent         bool    `json:"makeCurrent"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	in := engine.CreateProjectInput{
		Description:         req.Description,
		HelpTicketLimit:     req.HelpTicketLimit,
		TutorialTicketLimit: req.TutorialTicketLimit,
		MakeCurrent:         req.MakeCurrent,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	id, err := s.svc.CreateProject(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, Response{"projectId": id})
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	err := s.svc.UpdateProject(r.Context(), engine.UpdateProjectInput{
		ID:                  req.ProjectID,
		Name:                req.Name,
		Description:         req.Description,
		HelpTicketLimit:     req.HelpTicketLimit,
		TutorialTicketLimit: req.TutorialTicketLimit,
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.svc.DeleteProject(r.Context(), req.ProjectID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, nil)
}

// handleSetCurrentProject clears the selection when projectId is empty or
// null.
func (s *Server) handleSetCurrentProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.svc.SetCurrentProject(r.Context(), req.ProjectID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeOK(w, nil)
}
