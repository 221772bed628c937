// Package officer provides the core business logic for the officer registry:
// input validation, the registration workflow, child records, status
// lifecycle, and search. This package has no HTTP dependencies and can be
// driven by any transport.
package officer

import "time"

// DateFormat is the calendar date layout used across inputs and responses.
const DateFormat = "2006-01-02"

// SearchLimit caps the number of rows a search may return.
const SearchLimit = 50

// Officer is the central entity: one row in the officers table.
type Officer struct {
	ID             int64       `json:"id"`
	FullName       string      `json:"full_name"`
	CURP           string      `json:"curp"`
	CUIP           string      `json:"cuip"`
	CUP            string      `json:"cup"`
	Age            int         `json:"age"`
	Sex            string      `json:"sex"`
	MaritalStatus  string      `json:"marital_status"`
	Area           string      `json:"area"`
	Rank           string      `json:"rank"`
	CurrentPost    string      `json:"current_post"`
	JoinDate       time.Time   `json:"join_date"`
	Education      string      `json:"education"`
	ContactPhone   string      `json:"contact_phone"`
	EmergencyPhone string      `json:"emergency_phone"`
	Duties         string      `json:"duties"`
	Attachment     *Attachment `json:"attachment,omitempty"`
	Active         bool        `json:"active"`
	RegisteredBy   int64       `json:"registered_by"`
	RegisteredAt   time.Time   `json:"registered_at"`
}

// Attachment describes the stored credential PDF associated with an officer.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Draft is a normalized, validated, not-yet-persisted officer.
// Produced only by ParseDraft; stores may assume its fields are clean.
type Draft struct {
	FullName       string
	CURP           string
	CUIP           string
	CUP            string
	Age            int
	Sex            string
	MaritalStatus  string
	Area           string
	Rank           string
	CurrentPost    string
	JoinDate       time.Time
	Education      string
	ContactPhone   string
	EmergencyPhone string
	Duties         string
}

// Summary is the row shape returned by search.
type Summary struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	CURP          string `json:"curp"`
	CUIP          string `json:"cuip"`
	CUP           string `json:"cup"`
	Rank          string `json:"rank"`
	Area          string `json:"area"`
	Active        bool   `json:"active"`
	HasCredential bool   `json:"has_credential"`
}

// Stats counts officers by lifecycle state.
type Stats struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// Detail bundles an officer with all of its child records.
type Detail struct {
	Officer      *Officer           `json:"officer"`
	Training     []TrainingRecord   `json:"training"`
	Competencies []CompetencyRecord `json:"competencies"`
	Evaluations  []EvaluationRecord `json:"evaluations"`
}

// TrainingRecord is a completed course entry for one officer.
// Child records are insert-only; they are never updated in place.
type TrainingRecord struct {
	ID          int64     `json:"id"`
	OfficerID   int64     `json:"officer_id"`
	OfficerName string    `json:"officer_name,omitempty"`
	Course      string    `json:"course"`
	CourseType  string    `json:"course_type"`
	Institution string    `json:"institution"`
	CourseDate  time.Time `json:"course_date"`
	Result      string    `json:"result,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompetencyRecord is a basic-competency assessment entry for one officer.
type CompetencyRecord struct {
	ID             int64     `json:"id"`
	OfficerID      int64     `json:"officer_id"`
	OfficerName    string    `json:"officer_name,omitempty"`
	AssessedOn     time.Time `json:"assessed_on"`
	Institution    string    `json:"institution"`
	Result         string    `json:"result"`
	ValidUntil     time.Time `json:"valid_until"`
	CertificateURL string    `json:"certificate_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EvaluationRecord is a periodic evaluation entry for one officer.
// Score, when present, lies in [0,100].
type EvaluationRecord struct {
	ID           int64     `json:"id"`
	OfficerID    int64     `json:"officer_id"`
	OfficerName  string    `json:"officer_name,omitempty"`
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	Score        *float64  `json:"score,omitempty"`
	Evaluator    string    `json:"evaluator"`
	Observations string    `json:"observations,omitempty"`
	RegisteredBy int64     `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}
