package officer

// validate.go turns raw form input into a normalized Draft.
//
// Validation happens in two passes:
//  1. Presence: every required field must be non-blank after trimming;
//     all blanks are reported together in one MissingFieldsError.
//  2. Shape: CURP grammar, age range, date sanity, and phone digit count,
//     each failing with a field-level ValidationError.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RegistrationInput is the raw officer submission, one string per form field.
type RegistrationInput struct {
	FullName       string
	CURP           string
	CUIP           string
	CUP            string
	Age            string
	Sex            string
	MaritalStatus  string
	Area           string
	Rank           string
	CurrentPost    string
	JoinDate       string
	Education      string
	ContactPhone   string
	EmergencyPhone string
	Duties         string
}

// curpPattern is the full 18-character CURP grammar:
// 4 letters, 6 digits (birth date AAMMDD), H or M, 5 letters (birthplace),
// 1 alphanumeric and 1 digit (check characters).
var curpPattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM][A-Z]{5}[0-9A-Z][0-9]$`)

// curpSegments are prefixes of the grammar checked in positional order, so a
// failure message can name the exact segment that broke.
var curpSegments = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`^[A-Z]{4}`), "characters 1-4 must be letters (name initials)"},
	{regexp.MustCompile(`^[A-Z]{4}[0-9]{6}`), "characters 5-10 must be digits (birth date AAMMDD)"},
	{regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM]`), "character 11 must be H or M (sex marker)"},
	{regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM][A-Z]{5}`), "characters 12-16 must be letters (birthplace)"},
	{regexp.MustCompile(`^[A-Z]{4}[0-9]{6}[HM][A-Z]{5}[0-9A-Z][0-9]$`), "characters 17-18 must be alphanumeric (check characters)"},
}

// blockedPrefixes is the official list of four-letter combinations a CURP
// may not start with.
var blockedPrefixes = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"BUEI", "CACA", "CACO", "CAGA", "CAGO", "CAKA", "CAKO", "COGE",
		"COJA", "COJE", "COJI", "COJO", "COLA", "CULO", "FALO", "FETO",
		"GETA", "GUEY", "JOTO", "KACA", "KACO", "KAGA", "KAGO", "KAKA",
		"KAKO", "KOGE", "KOJO", "KULO", "MAME", "MAMO", "MEAR", "MEAS",
		"MEON", "MION", "MOCO", "MULA", "PEDA", "PEDO", "PENE", "PIPI",
		"PITO", "POPO", "PUTA", "PUTO", "QULO", "RATA", "RUIN",
	} {
		blockedPrefixes[w] = struct{}{}
	}
}

// ParseDraft validates raw input and returns a normalized Draft.
// All string fields are trimmed, the CURP upper-cased, and phone numbers
// reduced to digits. Errors are *MissingFieldsError or *ValidationError.
func ParseDraft(in RegistrationInput) (*Draft, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"full_name", &in.FullName},
		{"curp", &in.CURP},
		{"cuip", &in.CUIP},
		{"cup", &in.CUP},
		{"age", &in.Age},
		{"sex", &in.Sex},
		{"marital_status", &in.MaritalStatus},
		{"area", &in.Area},
		{"rank", &in.Rank},
		{"current_post", &in.CurrentPost},
		{"join_date", &in.JoinDate},
		{"education", &in.Education},
		{"contact_phone", &in.ContactPhone},
		{"emergency_phone", &in.EmergencyPhone},
		{"duties", &in.Duties},
	}

	var missing []string
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	curp := strings.ToUpper(in.CURP)
	if err := ValidateCURP(curp); err != nil {
		return nil, err
	}

	age, err := strconv.Atoi(in.Age)
	if err != nil {
		return nil, &ValidationError{Field: "age", Value: in.Age, Message: "age must be a number"}
	}
	if age < 18 || age > 100 {
		return nil, &ValidationError{Field: "age", Value: in.Age, Message: "age must be between 18 and 100"}
	}

	joinDate, err := time.Parse(DateFormat, in.JoinDate)
	if err != nil {
		return nil, &ValidationError{Field: "join_date", Value: in.JoinDate, Message: "date must be in YYYY-MM-DD format"}
	}
	if joinDate.After(time.Now()) {
		return nil, &ValidationError{Field: "join_date", Value: in.JoinDate, Message: "join date cannot be in the future"}
	}

	contactPhone, err := normalizePhone("contact_phone", in.ContactPhone)
	if err != nil {
		return nil, err
	}
	emergencyPhone, err := normalizePhone("emergency_phone", in.EmergencyPhone)
	if err != nil {
		return nil, err
	}

	return &Draft{
		FullName:       in.FullName,
		CURP:           curp,
		CUIP:           in.CUIP,
		CUP:            in.CUP,
		Age:            age,
		Sex:            in.Sex,
		MaritalStatus:  in.MaritalStatus,
		Area:           in.Area,
		Rank:           in.Rank,
		CurrentPost:    in.CurrentPost,
		JoinDate:       joinDate,
		Education:      in.Education,
		ContactPhone:   contactPhone,
		EmergencyPhone: emergencyPhone,
		Duties:         in.Duties,
	}, nil
}

// ValidateCURP checks an already upper-cased CURP against the 18-character
// grammar. Failures name the positional segment that broke so the caller
// knows what to correct.
func ValidateCURP(curp string) error {
	if len(curp) != 18 {
		return &ValidationError{
			Field:   "curp",
			Value:   curp,
			Message: fmt.Sprintf("CURP must be exactly 18 characters (got %d)", len(curp)),
		}
	}

	if !curpPattern.MatchString(curp) {
		for _, seg := range curpSegments {
			if !seg.pattern.MatchString(curp) {
				return &ValidationError{Field: "curp", Value: curp, Message: seg.message}
			}
		}
		return &ValidationError{Field: "curp", Value: curp, Message: "invalid CURP format"}
	}

	if _, blocked := blockedPrefixes[curp[:4]]; blocked {
		return &ValidationError{
			Field:   "curp",
			Value:   curp,
			Message: "the first four letters form a combination that is not allowed",
		}
	}

	return nil
}

var nonDigits = regexp.MustCompile(`\D`)

// normalizePhone strips non-digit characters and requires at least 10 digits.
func normalizePhone(field, raw string) (string, error) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < 10 {
		return "", &ValidationError{
			Field:   field,
			Value:   raw,
			Message: "phone number must have at least 10 digits",
		}
	}
	return digits, nil
}

// ValidateAttachment enforces the credential content type. Size limits are
// enforced earlier by the upload layer.
func ValidateAttachment(contentType string) error {
	if contentType != "application/pdf" {
		return &InvalidAttachmentError{ContentType: contentType}
	}
	return nil
}
