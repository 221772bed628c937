package officer

// postgres.go is the production Store backed by pgx. All queries are plain
// SQL; registration runs its duplicate pre-check and insert in one
// transaction, with UNIQUE constraints as the authoritative race guard.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewPostgresStore wraps a pool. acquireTimeout bounds how long any operation
// may wait for a pooled connection before failing as ErrUnavailable.
func NewPostgresStore(pool *pgxpool.Pool, acquireTimeout time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, acquireTimeout: acquireTimeout}
}

// acquire checks a connection out of the pool with a bounded wait.
func (s *PostgresStore) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.acquireTimeout)
	defer cancel()

	conn, err := s.pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: pool acquire timed out after %s", ErrUnavailable, s.acquireTimeout)
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr, true
	}
	return nil, false
}

// uniqueConstraintField maps officers table constraint names to the
// identifier field they guard.
func uniqueConstraintField(constraint string) string {
	switch constraint {
	case "officers_curp_key":
		return "curp"
	case "officers_cuip_key":
		return "cuip"
	case "officers_cup_key":
		return "cup"
	}
	return ""
}

func (s *PostgresStore) CreateOfficer(ctx context.Context, draft *Draft, att *Attachment, registeredBy int64) (int64, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Pre-check inside the transaction so the response can name every
	// colliding identifier. The UNIQUE constraints below remain the
	// authoritative guard against concurrent registrations.
	conflicts, err := findIdentifierConflicts(ctx, tx, draft)
	if err != nil {
		return 0, err
	}
	if len(conflicts) > 0 {
		return 0, &DuplicateError{Conflicts: conflicts}
	}

	var pdfFilename, pdfContentType *string
	var pdfSize *int64
	if att != nil {
		pdfFilename = &att.Filename
		pdfContentType = &att.ContentType
		pdfSize = &att.Size
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO officers (
			full_name, curp, cuip, cup, age, sex, marital_status,
			area, rank, current_post, join_date, education,
			contact_phone, emergency_phone, duties,
			pdf_filename, pdf_content_type, pdf_size, registered_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id`,
		draft.FullName, draft.CURP, draft.CUIP, draft.CUP, draft.Age,
		draft.Sex, draft.MaritalStatus, draft.Area, draft.Rank,
		draft.CurrentPost, draft.JoinDate, draft.Education,
		draft.ContactPhone, draft.EmergencyPhone, draft.Duties,
		pdfFilename, pdfContentType, pdfSize, registeredBy,
	).Scan(&id)
	if err != nil {
		// A concurrent registration can commit between the pre-check and
		// this insert; the constraint violation is still a duplicate.
		if pgErr, ok := isUniqueViolation(err); ok {
			field := uniqueConstraintField(pgErr.ConstraintName)
			value := draft.CURP
			switch field {
			case "cuip":
				value = draft.CUIP
			case "cup":
				value = draft.CUP
			}
			return 0, &DuplicateError{Conflicts: []FieldConflict{{Field: field, Value: value}}}
		}
		return 0, fmt.Errorf("insert officer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit registration: %w", err)
	}
	return id, nil
}

// findIdentifierConflicts returns every CURP/CUIP/CUP of the draft that
// already belongs to an existing officer.
func findIdentifierConflicts(ctx context.Context, tx pgx.Tx, draft *Draft) ([]FieldConflict, error) {
	rows, err := tx.Query(ctx,
		`SELECT curp, cuip, cup FROM officers WHERE curp = $1 OR cuip = $2 OR cup = $3`,
		draft.CURP, draft.CUIP, draft.CUP)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}
	defer rows.Close()

	var conflicts []FieldConflict
	for rows.Next() {
		var curp, cuip, cup string
		if err := rows.Scan(&curp, &cuip, &cup); err != nil {
			return nil, fmt.Errorf("scan duplicate row: %w", err)
		}
		if curp == draft.CURP {
			conflicts = append(conflicts, FieldConflict{Field: "curp", Value: curp})
		}
		if cuip == draft.CUIP {
			conflicts = append(conflicts, FieldConflict{Field: "cuip", Value: cuip})
		}
		if cup == draft.CUP {
			conflicts = append(conflicts, FieldConflict{Field: "cup", Value: cup})
		}
	}
	return conflicts, rows.Err()
}

const officerColumns = `
	id, full_name, curp, cuip, cup, age, sex, marital_status,
	area, rank, current_post, join_date, education,
	contact_phone, emergency_phone, duties,
	pdf_filename, pdf_content_type, pdf_size,
	active, registered_by, registered_at`

func (s *PostgresStore) GetOfficer(ctx context.Context, id int64) (*Officer, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+officerColumns+` FROM officers WHERE id = $1`, id)
	return scanOfficer(row)
}

func scanOfficer(row pgx.Row) (*Officer, error) {
	var o Officer
	var pdfFilename, pdfContentType *string
	var pdfSize *int64
	err := row.Scan(
		&o.ID, &o.FullName, &o.CURP, &o.CUIP, &o.CUP, &o.Age, &o.Sex,
		&o.MaritalStatus, &o.Area, &o.Rank, &o.CurrentPost, &o.JoinDate,
		&o.Education, &o.ContactPhone, &o.EmergencyPhone, &o.Duties,
		&pdfFilename, &pdfContentType, &pdfSize,
		&o.Active, &o.RegisteredBy, &o.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan officer: %w", err)
	}
	if pdfFilename != nil {
		o.Attachment = &Attachment{Filename: *pdfFilename}
		if pdfContentType != nil {
			o.Attachment.ContentType = *pdfContentType
		}
		if pdfSize != nil {
			o.Attachment.Size = *pdfSize
		}
	}
	return &o, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id int64, active bool) error {
	conn, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE officers SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// likeEscaper neutralizes LIKE metacharacters so a search term always means
// a literal substring. The queries declare the matching ESCAPE character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (s *PostgresStore) Search(ctx context.Context, term string, limit int) ([]Summary, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	pattern := "%" + escapeLike(term) + "%"
	rows, err := conn.Query(ctx, `
		SELECT id, full_name, curp, cuip, cup, rank, area, active,
		       pdf_filename IS NOT NULL
		FROM officers
		WHERE full_name ILIKE $1 ESCAPE '\'
		   OR curp      ILIKE $1 ESCAPE '\'
		   OR cuip      ILIKE $1 ESCAPE '\'
		   OR cup       ILIKE $1 ESCAPE '\'
		ORDER BY active DESC, full_name ASC
		LIMIT $2`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search officers: %w", err)
	}
	defer rows.Close()

	var results []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.FullName, &sum.CURP, &sum.CUIP, &sum.CUP,
			&sum.Rank, &sum.Area, &sum.Active, &sum.HasCredential); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		results = append(results, sum)
	}
	return results, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (Stats, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer conn.Release()

	var stats Stats
	err = conn.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE active),
		       COUNT(*) FILTER (WHERE NOT active)
		FROM officers`).Scan(&stats.Active, &stats.Inactive)
	if err != nil {
		return Stats{}, fmt.Errorf("count officers: %w", err)
	}
	return stats, nil
}

// insertChild verifies the parent officer exists and runs the insert, both
// inside one transaction.
func (s *PostgresStore) insertChild(ctx context.Context, officerID int64, insert func(pgx.Tx) (int64, error)) (int64, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM officers WHERE id = $1)`, officerID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check officer exists: %w", err)
	}
	if !exists {
		return 0, ErrNotFound
	}

	id, err := insert(tx)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) AddTraining(ctx context.Context, rec *TrainingRecord) (int64, error) {
	return s.insertChild(ctx, rec.OfficerID, func(tx pgx.Tx) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO training (officer_id, course, course_type, institution, course_date, result)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
			RETURNING id`,
			rec.OfficerID, rec.Course, rec.CourseType, rec.Institution, rec.CourseDate, rec.Result,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert training: %w", err)
		}
		return id, nil
	})
}

func (s *PostgresStore) AddCompetency(ctx context.Context, rec *CompetencyRecord) (int64, error) {
	return s.insertChild(ctx, rec.OfficerID, func(tx pgx.Tx) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO competencies (officer_id, assessed_on, institution, result, valid_until, certificate_url)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
			RETURNING id`,
			rec.OfficerID, rec.AssessedOn, rec.Institution, rec.Result, rec.ValidUntil, rec.CertificateURL,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert competency: %w", err)
		}
		return id, nil
	})
}

func (s *PostgresStore) AddEvaluation(ctx context.Context, rec *EvaluationRecord) (int64, error) {
	return s.insertChild(ctx, rec.OfficerID, func(tx pgx.Tx) (int64, error) {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO evaluations (officer_id, eval_type, eval_date, score, evaluator, observations, registered_by)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)
			RETURNING id`,
			rec.OfficerID, rec.Type, rec.Date, rec.Score, rec.Evaluator, rec.Observations, rec.RegisteredBy,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert evaluation: %w", err)
		}
		return id, nil
	})
}

func (s *PostgresStore) ListTraining(ctx context.Context, officerID int64) ([]TrainingRecord, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT t.id, t.officer_id, o.full_name, t.course, t.course_type,
		       t.institution, t.course_date, COALESCE(t.result, ''), t.created_at
		FROM training t
		JOIN officers o ON o.id = t.officer_id
		WHERE $1 = 0 OR t.officer_id = $1
		ORDER BY t.course_date DESC`,
		officerID)
	if err != nil {
		return nil, fmt.Errorf("list training: %w", err)
	}
	defer rows.Close()

	var records []TrainingRecord
	for rows.Next() {
		var rec TrainingRecord
		if err := rows.Scan(&rec.ID, &rec.OfficerID, &rec.OfficerName, &rec.Course,
			&rec.CourseType, &rec.Institution, &rec.CourseDate, &rec.Result, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan training row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) ListCompetencies(ctx context.Context, officerID int64) ([]CompetencyRecord, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT c.id, c.officer_id, o.full_name, c.assessed_on, c.institution,
		       c.result, c.valid_until, COALESCE(c.certificate_url, ''), c.created_at
		FROM competencies c
		JOIN officers o ON o.id = c.officer_id
		WHERE $1 = 0 OR c.officer_id = $1
		ORDER BY c.assessed_on DESC`,
		officerID)
	if err != nil {
		return nil, fmt.Errorf("list competencies: %w", err)
	}
	defer rows.Close()

	var records []CompetencyRecord
	for rows.Next() {
		var rec CompetencyRecord
		if err := rows.Scan(&rec.ID, &rec.OfficerID, &rec.OfficerName, &rec.AssessedOn,
			&rec.Institution, &rec.Result, &rec.ValidUntil, &rec.CertificateURL, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan competency row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, officerID int64) ([]EvaluationRecord, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
		SELECT e.id, e.officer_id, o.full_name, e.eval_type, e.eval_date,
		       e.score, e.evaluator, COALESCE(e.observations, ''), e.registered_by, e.created_at
		FROM evaluations e
		JOIN officers o ON o.id = e.officer_id
		WHERE $1 = 0 OR e.officer_id = $1
		ORDER BY e.eval_date DESC, e.created_at DESC`,
		officerID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var records []EvaluationRecord
	for rows.Next() {
		var rec EvaluationRecord
		if err := rows.Scan(&rec.ID, &rec.OfficerID, &rec.OfficerName, &rec.Type, &rec.Date,
			&rec.Score, &rec.Evaluator, &rec.Observations, &rec.RegisteredBy, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
