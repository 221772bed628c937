package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sistemapolicial/officer-registry/internal/auth"
	"github.com/sistemapolicial/officer-registry/internal/config"
	"github.com/sistemapolicial/officer-registry/internal/filestore"
	"github.com/sistemapolicial/officer-registry/internal/officer"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	files, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	service := officer.NewService(officer.NewMemoryStore(), files)

	users := auth.NewMemoryUserStore()
	_, err = users.Add("capturista", "clave-segura")
	require.NoError(t, err)
	authService := auth.NewService(users, "test-signing-key", time.Hour)

	cfg := &config.Config{
		Env:    "test",
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Upload: config.UploadConfig{MaxFileSize: 10 << 20},
	}
	srv := NewServer(cfg, service, authService, nil)

	rec := do(t, srv, http.MethodPost, "/login", "",
		jsonBody(t, map[string]string{"username": "capturista", "password": "clave-segura"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)

	return srv, resp.Data.Token
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func do(t *testing.T, srv *Server, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

var registrationFields = map[string]string{
	"full_name":       "Juan Carlos Hernandez Lopez",
	"curp":            "ABCD850101HDFXYZ01",
	"cuip":            "HELA850101A1B2C3D4E5",
	"cup":             "CUP-0042",
	"age":             "38",
	"sex":             "Masculino",
	"marital_status":  "Casado",
	"area":            "Operaciones",
	"rank":            "Suboficial",
	"current_post":    "Patrullero",
	"join_date":       "2015-06-01",
	"education":       "Preparatoria",
	"contact_phone":   "555-123-4567",
	"emergency_phone": "555-987-6543",
	"duties":          "Patrullaje y vigilancia",
}

// registrationForm builds a multipart registration body. overrides replaces
// field values; an empty override removes the field. pdf, when non-empty,
// becomes the credential file.
func registrationForm(t *testing.T, overrides map[string]string, pdf string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range registrationFields {
		if v, ok := overrides[name]; ok {
			value = v
		}
		if value == "" {
			continue
		}
		require.NoError(t, mw.WriteField(name, value))
	}

	if pdf != "" {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="credential"; filename="credencial.pdf"`},
			"Content-Type":        {"application/pdf"},
		})
		require.NoError(t, err)
		_, err = part.Write([]byte(pdf))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func registerOfficer(t *testing.T, srv *Server, token string, overrides map[string]string, pdf string) int64 {
	t.Helper()
	body, ct := registrationForm(t, overrides, pdf)
	rec := do(t, srv, http.MethodPost, "/officers", token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/login", "",
		jsonBody(t, map[string]string{"username": "capturista", "password": "wrong"}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/officers/search?term=x", "/officers/stats", "/training"} {
		rec := do(t, srv, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterOfficer(t *testing.T) {
	srv, token := newTestServer(t)

	body, ct := registrationForm(t, nil, "%PDF-1.4 credencial")
	rec := do(t, srv, http.MethodPost, "/officers", token, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID         int64  `json:"id"`
			CURP       string `json:"curp"`
			Active     bool   `json:"active"`
			Attachment *struct {
				ContentType string `json:"content_type"`
			} `json:"attachment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ABCD850101HDFXYZ01", resp.Data.CURP)
	assert.True(t, resp.Data.Active)
	require.NotNil(t, resp.Data.Attachment)
	assert.Equal(t, "application/pdf", resp.Data.Attachment.ContentType)
}

func TestRegisterOfficerMissingFields(t *testing.T) {
	srv, token := newTestServer(t)

	body, ct := registrationForm(t, map[string]string{"full_name": "", "duties": ""}, "")
	rec := do(t, srv, http.MethodPost, "/officers", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "full_name")
	assert.Contains(t, rec.Body.String(), "duties")
}

func TestRegisterOfficerBadCURP(t *testing.T) {
	srv, token := newTestServer(t)

	body, ct := registrationForm(t, map[string]string{"curp": "1BCD850101HDFXYZ01"}, "")
	rec := do(t, srv, http.MethodPost, "/officers", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "characters 1-4")
}

func TestRegisterOfficerDuplicate(t *testing.T) {
	srv, token := newTestServer(t)
	registerOfficer(t, srv, token, nil, "")

	body, ct := registrationForm(t, nil, "")
	rec := do(t, srv, http.MethodPost, "/officers", token, body, ct)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflicts")
	assert.Contains(t, rec.Body.String(), "curp")
}

func TestGetOfficerDetail(t *testing.T) {
	srv, token := newTestServer(t)
	id := registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodPost, fmt.Sprintf("/officers/%d/training", id), token,
		jsonBody(t, map[string]string{
			"course":      "Formacion Inicial",
			"course_type": "Inicial",
			"institution": "Academia Estatal",
			"course_date": "2020-03-15",
			"result":      "Aprobado",
		}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/officers/%d", id), token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Officer struct {
				ID int64 `json:"id"`
			} `json:"officer"`
			Training []json.RawMessage `json:"training"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.Data.Officer.ID)
	assert.Len(t, resp.Data.Training, 1)
}

func TestGetOfficerNotFound(t *testing.T) {
	srv, token := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/officers/999", token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchOfficers(t *testing.T) {
	srv, token := newTestServer(t)
	registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodGet, "/officers/search?term=hernandez", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			FullName string `json:"full_name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Juan Carlos Hernandez Lopez", resp.Data[0].FullName)

	rec = do(t, srv, http.MethodGet, "/officers/search?term=", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetStatus(t *testing.T) {
	srv, token := newTestServer(t)
	id := registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodPut, fmt.Sprintf("/officers/%d/status", id), token,
		jsonBody(t, map[string]bool{"active": false}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/officers/stats", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"inactive":1`)

	rec = do(t, srv, http.MethodPut, fmt.Sprintf("/officers/%d/status", id), token,
		strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/officers/999/status", token,
		jsonBody(t, map[string]bool{"active": true}), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCredentialDownload(t *testing.T) {
	srv, token := newTestServer(t)
	content := "%PDF-1.4 body"
	id := registerOfficer(t, srv, token, nil, content)

	rec := do(t, srv, http.MethodGet, fmt.Sprintf("/officers/%d/credential", id), token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, content, rec.Body.String())
}

func TestCredentialMissing(t *testing.T) {
	srv, token := newTestServer(t)
	id := registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodGet, fmt.Sprintf("/officers/%d/credential", id), token, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEvaluationRecordsRegisteredBy(t *testing.T) {
	srv, token := newTestServer(t)
	id := registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodPost, fmt.Sprintf("/officers/%d/evaluations", id), token,
		jsonBody(t, map[string]string{
			"type":      "Desempeno",
			"date":      "2024-01-10",
			"score":     "92.5",
			"evaluator": "Cmdte. Ruiz",
		}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Score        *float64 `json:"score"`
			RegisteredBy int64    `json:"registered_by"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Score)
	assert.Equal(t, 92.5, *resp.Data.Score)
	assert.Equal(t, int64(1), resp.Data.RegisteredBy)
}

func TestCrossOfficerListings(t *testing.T) {
	srv, token := newTestServer(t)
	id := registerOfficer(t, srv, token, nil, "")

	rec := do(t, srv, http.MethodPost, fmt.Sprintf("/officers/%d/competencies", id), token,
		jsonBody(t, map[string]string{
			"assessed_on": "2023-05-20",
			"institution": "Centro de Evaluacion",
			"result":      "Competente",
			"valid_until": "2026-05-20",
		}), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/competencies", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Centro de Evaluacion")

	// Empty listings come back as [] rather than null.
	rec = do(t, srv, http.MethodGet, "/evaluations", token, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
