package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sistemapolicial/officer-registry/internal/auth"
	"github.com/sistemapolicial/officer-registry/internal/officer"
)

// handleLogin exchanges a username and password for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	session, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleRegisterOfficer processes a multipart officer registration with an
// optional credential PDF under the "credential" form field.
func (s *Server) handleRegisterOfficer(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	in := officer.RegistrationInput{
		FullName:       r.FormValue("full_name"),
		CURP:           r.FormValue("curp"),
		CUIP:           r.FormValue("cuip"),
		CUP:            r.FormValue("cup"),
		Age:            r.FormValue("age"),
		Sex:            r.FormValue("sex"),
		MaritalStatus:  r.FormValue("marital_status"),
		Area:           r.FormValue("area"),
		Rank:           r.FormValue("rank"),
		CurrentPost:    r.FormValue("current_post"),
		JoinDate:       r.FormValue("join_date"),
		Education:      r.FormValue("education"),
		ContactPhone:   r.FormValue("contact_phone"),
		EmergencyPhone: r.FormValue("emergency_phone"),
		Duties:         r.FormValue("duties"),
	}

	var upload *officer.AttachmentUpload
	file, header, err := r.FormFile("credential")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > maxSize {
			writeMessage(w, http.StatusBadRequest, "credential file exceeds the size limit")
			return
		}
		upload = &officer.AttachmentUpload{
			Reader:       file,
			ContentType:  header.Header.Get("Content-Type"),
			OriginalName: header.Filename,
		}
	case errors.Is(err, http.ErrMissingFile):
		// Credential is optional.
	default:
		writeMessage(w, http.StatusBadRequest, "invalid credential upload")
		return
	}

	created, err := s.service.Register(r.Context(), in, upload, auth.UserID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// formOverhead is headroom on top of the file size limit for the other
// multipart fields and boundaries.
const formOverhead = 64 << 10

// handleGetOfficer returns one officer with all child records.
func (s *Server) handleGetOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := s.service.Detail(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleSearchOfficers answers ?term= lookups, active officers first.
func (s *Server) handleSearchOfficers(w http.ResponseWriter, r *http.Request) {
	results, err := s.service.Search(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if results == nil {
		results = []officer.Summary{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleOfficerStats returns active/inactive counts.
func (s *Server) handleOfficerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleSetStatus activates or deactivates an officer.
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		writeMessage(w, http.StatusBadRequest, `body must be {"active": true|false}`)
		return
	}

	if err := s.service.SetActive(r.Context(), id, *req.Active); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": *req.Active})
}

// handleCredential streams the stored credential PDF.
func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	id, err := officerIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	f, att, err := s.service.Credential(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, att.Filename))
	io.Copy(w, f) //nolint:errcheck
}

// officerIDParam parses the {officerID} route parameter. It returns 0 when
// the route has no such parameter, which list handlers treat as "all".
func officerIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "officerID")
	if raw == "" {
		return 0, errors.New("missing officer id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid officer id %q", raw)
	}
	return id, nil
}
