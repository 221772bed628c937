package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sistemapolicial/officer-registry/internal/auth"
	"github.com/sistemapolicial/officer-registry/internal/officer"
)

// Child-record handlers. The POST routes are scoped to one officer; the GET
// routes serve both the scoped form and the top-level cross-officer listing,
// where the absent {officerID} parameter means "all officers".

func (s *Server) handleAddTraining(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var in struct {
		Course      string `json:"course"`
		CourseType  string `json:"course_type"`
		Institution string `json:"institution"`
		CourseDate  string `json:"course_date"`
		Result      string `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.service.AddTraining(r.Context(), id, officer.TrainingInput{
		Course:      in.Course,
		CourseType:  in.CourseType,
		Institution: in.Institution,
		CourseDate:  in.CourseDate,
		Result:      in.Result,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListTraining(w http.ResponseWriter, r *http.Request) {
	id, err := listScope(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.service.ListTraining(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []officer.TrainingRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddCompetency(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var in struct {
		AssessedOn     string `json:"assessed_on"`
		Institution    string `json:"institution"`
		Result         string `json:"result"`
		ValidUntil     string `json:"valid_until"`
		CertificateURL string `json:"certificate_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.service.AddCompetency(r.Context(), id, officer.CompetencyInput{
		AssessedOn:     in.AssessedOn,
		Institution:    in.Institution,
		Result:         in.Result,
		ValidUntil:     in.ValidUntil,
		CertificateURL: in.CertificateURL,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListCompetencies(w http.ResponseWriter, r *http.Request) {
	id, err := listScope(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.service.ListCompetencies(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []officer.CompetencyRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAddEvaluation(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var in struct {
		Type         string `json:"type"`
		Date         string `json:"date"`
		Score        string `json:"score"`
		Evaluator    string `json:"evaluator"`
		Observations string `json:"observations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.service.AddEvaluation(r.Context(), id, officer.EvaluationInput{
		Type:         in.Type,
		Date:         in.Date,
		Score:        in.Score,
		Evaluator:    in.Evaluator,
		Observations: in.Observations,
	}, auth.UserID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	id, err := listScope(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.service.ListEvaluations(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if records == nil {
		records = []officer.EvaluationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// listScope resolves the officer scope for a GET listing: the {officerID}
// parameter when present, or 0 (all officers) on the top-level routes.
func listScope(r *http.Request) (int64, error) {
	if chi.URLParam(r, "officerID") == "" {
		return 0, nil
	}
	return officerIDParam(r)
}
