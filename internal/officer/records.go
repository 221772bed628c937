package officer

// records.go validates child-record submissions (training, competencies,
// evaluations). Each child references exactly one officer and is insert-only.

import (
	"strconv"
	"strings"
	"time"
)

// TrainingInput is a raw training-course submission.
type TrainingInput struct {
	Course      string
	CourseType  string
	Institution string
	CourseDate  string
	Result      string
}

// CompetencyInput is a raw basic-competency submission.
type CompetencyInput struct {
	AssessedOn     string
	Institution    string
	Result         string
	ValidUntil     string
	CertificateURL string
}

// EvaluationInput is a raw evaluation submission. Score is optional.
type EvaluationInput struct {
	Type         string
	Date         string
	Score        string
	Evaluator    string
	Observations string
}

func (in *TrainingInput) parse(officerID int64) (*TrainingRecord, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"course", &in.Course},
		{"course_type", &in.CourseType},
		{"institution", &in.Institution},
		{"course_date", &in.CourseDate},
	} {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	date, err := time.Parse(DateFormat, in.CourseDate)
	if err != nil {
		return nil, &ValidationError{Field: "course_date", Value: in.CourseDate, Message: "date must be in YYYY-MM-DD format"}
	}

	return &TrainingRecord{
		OfficerID:   officerID,
		Course:      in.Course,
		CourseType:  in.CourseType,
		Institution: in.Institution,
		CourseDate:  date,
		Result:      strings.TrimSpace(in.Result),
	}, nil
}

func (in *CompetencyInput) parse(officerID int64) (*CompetencyRecord, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"assessed_on", &in.AssessedOn},
		{"institution", &in.Institution},
		{"result", &in.Result},
		{"valid_until", &in.ValidUntil},
	} {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	assessed, err := time.Parse(DateFormat, in.AssessedOn)
	if err != nil {
		return nil, &ValidationError{Field: "assessed_on", Value: in.AssessedOn, Message: "date must be in YYYY-MM-DD format"}
	}
	validUntil, err := time.Parse(DateFormat, in.ValidUntil)
	if err != nil {
		return nil, &ValidationError{Field: "valid_until", Value: in.ValidUntil, Message: "date must be in YYYY-MM-DD format"}
	}

	return &CompetencyRecord{
		OfficerID:      officerID,
		AssessedOn:     assessed,
		Institution:    in.Institution,
		Result:         in.Result,
		ValidUntil:     validUntil,
		CertificateURL: strings.TrimSpace(in.CertificateURL),
	}, nil
}

func (in *EvaluationInput) parse(officerID, registeredBy int64) (*EvaluationRecord, error) {
	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"type", &in.Type},
		{"date", &in.Date},
		{"evaluator", &in.Evaluator},
	} {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	date, err := time.Parse(DateFormat, in.Date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Value: in.Date, Message: "date must be in YYYY-MM-DD format"}
	}

	var score *float64
	if s := strings.TrimSpace(in.Score); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &ValidationError{Field: "score", Value: s, Message: "score must be a number"}
		}
		if v < 0 || v > 100 {
			return nil, &ValidationError{Field: "score", Value: s, Message: "score must be between 0 and 100"}
		}
		score = &v
	}

	return &EvaluationRecord{
		OfficerID:    officerID,
		Type:         in.Type,
		Date:         date,
		Score:        score,
		Evaluator:    in.Evaluator,
		Observations: strings.TrimSpace(in.Observations),
		RegisteredBy: registeredBy,
	}, nil
}
