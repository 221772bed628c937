package officer

import "context"

// Store is the persistence boundary for the registry. There is exactly one
// production implementation (PostgresStore); the in-memory implementation
// exists for tests.
//
// CreateOfficer must run its duplicate check and insert inside a single
// transaction, and the backing schema must enforce CURP/CUIP/CUP uniqueness
// itself so concurrent registrations racing on the same identifier are
// serialized by the database: exactly one wins, the loser gets
// *DuplicateError.
type Store interface {
	// CreateOfficer persists a validated draft and returns the new id.
	// Returns *DuplicateError when any of CURP/CUIP/CUP already exist.
	CreateOfficer(ctx context.Context, draft *Draft, att *Attachment, registeredBy int64) (int64, error)

	// GetOfficer returns one officer by id, or ErrNotFound.
	GetOfficer(ctx context.Context, id int64) (*Officer, error)

	// SetActive updates the lifecycle flag unconditionally (last-write-wins),
	// or returns ErrNotFound when no row matches.
	SetActive(ctx context.Context, id int64, active bool) error

	// Search matches term as a case-insensitive substring of name/CURP/CUIP/CUP,
	// ordered active-first then name ascending, capped at limit rows.
	Search(ctx context.Context, term string, limit int) ([]Summary, error)

	// CountByStatus returns active/inactive officer counts.
	CountByStatus(ctx context.Context) (Stats, error)

	// AddTraining inserts a training record after verifying the officer
	// exists (ErrNotFound otherwise), within its own transaction.
	AddTraining(ctx context.Context, rec *TrainingRecord) (int64, error)
	AddCompetency(ctx context.Context, rec *CompetencyRecord) (int64, error)
	AddEvaluation(ctx context.Context, rec *EvaluationRecord) (int64, error)

	// ListTraining returns training records joined with the officer's name,
	// newest first. officerID 0 lists records for all officers.
	ListTraining(ctx context.Context, officerID int64) ([]TrainingRecord, error)
	ListCompetencies(ctx context.Context, officerID int64) ([]CompetencyRecord, error)
	ListEvaluations(ctx context.Context, officerID int64) ([]EvaluationRecord, error)
}
