package officer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sistemapolicial/officer-registry/internal/logging"
)

// FileStore is the credential attachment storage boundary. Files live outside
// the database transaction; the service deletes any file it wrote whenever
// the surrounding registration fails.
type FileStore interface {
	// Save streams r to storage under a generated name and returns it
	// along with the number of bytes written.
	Save(r io.Reader) (filename string, size int64, err error)

	// Open returns the stored file for reading.
	Open(filename string) (io.ReadSeekCloser, error)

	// Remove deletes a stored file.
	Remove(filename string) error
}

// AttachmentUpload is an incoming credential file, not yet validated.
type AttachmentUpload struct {
	Reader       io.Reader
	ContentType  string
	OriginalName string
}

// Service implements the registry workflows on top of a Store and a FileStore.
type Service struct {
	store Store
	files FileStore
}

// NewService creates a Service.
func NewService(store Store, files FileStore) *Service {
	return &Service{store: store, files: files}
}

// Register runs the full officer registration workflow: validate the input,
// persist the optional credential PDF, and insert the row transactionally.
// When the insert fails after the file was written, the file is removed so
// storage holds no orphans.
func (s *Service) Register(ctx context.Context, in RegistrationInput, upload *AttachmentUpload, registeredBy int64) (*Officer, error) {
	draft, err := ParseDraft(in)
	if err != nil {
		return nil, err
	}

	var att *Attachment
	if upload != nil {
		if err := ValidateAttachment(upload.ContentType); err != nil {
			return nil, err
		}
		filename, size, err := s.files.Save(upload.Reader)
		if err != nil {
			return nil, fmt.Errorf("store credential: %w", err)
		}
		att = &Attachment{Filename: filename, ContentType: upload.ContentType, Size: size}
	}

	id, err := s.store.CreateOfficer(ctx, draft, att, registeredBy)
	if err != nil {
		if att != nil {
			if rmErr := s.files.Remove(att.Filename); rmErr != nil {
				logging.FromContext(ctx).Warn("orphaned credential file could not be removed",
					"filename", att.Filename, "error", rmErr)
			}
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("officer registered",
		"officer_id", id, "curp", draft.CURP, "registered_by", registeredBy)

	return s.store.GetOfficer(ctx, id)
}

// Get returns one officer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Officer, error) {
	return s.store.GetOfficer(ctx, id)
}

// Detail returns an officer together with all child records. The three child
// lists are independent reads, so they are fetched concurrently.
func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	o, err := s.store.GetOfficer(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Officer: o}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail.Training, err = s.store.ListTraining(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Competencies, err = s.store.ListCompetencies(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		detail.Evaluations, err = s.store.ListEvaluations(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

// SetActive toggles the lifecycle flag. The flag has exactly two states with
// unconditional transitions in both directions.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("officer status updated", "officer_id", id, "active", active)
	return nil
}

// Search returns officers whose name or identifiers contain term,
// case-insensitively, active officers first. A blank term is rejected rather
// than returning the whole table.
func (s *Service) Search(ctx context.Context, term string) ([]Summary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, &ValidationError{Field: "term", Message: "search term is required"}
	}
	return s.store.Search(ctx, term, SearchLimit)
}

// Stats returns active/inactive officer counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.CountByStatus(ctx)
}

// AddTraining validates and inserts a training record for the officer.
func (s *Service) AddTraining(ctx context.Context, officerID int64, in TrainingInput) (*TrainingRecord, error) {
	rec, err := in.parse(officerID)
	if err != nil {
		return nil, err
	}
	id, err := s.store.AddTraining(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

// AddCompetency validates and inserts a competency record for the officer.
func (s *Service) AddCompetency(ctx context.Context, officerID int64, in CompetencyInput) (*CompetencyRecord, error) {
	rec, err := in.parse(officerID)
	if err != nil {
		return nil, err
	}
	id, err := s.store.AddCompetency(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

// AddEvaluation validates and inserts an evaluation record for the officer.
func (s *Service) AddEvaluation(ctx context.Context, officerID int64, in EvaluationInput, registeredBy int64) (*EvaluationRecord, error) {
	rec, err := in.parse(officerID, registeredBy)
	if err != nil {
		return nil, err
	}
	id, err := s.store.AddEvaluation(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	return rec, nil
}

// ListTraining lists training records, optionally filtered by officer (0 = all).
func (s *Service) ListTraining(ctx context.Context, officerID int64) ([]TrainingRecord, error) {
	return s.store.ListTraining(ctx, officerID)
}

// ListCompetencies lists competency records, optionally filtered by officer.
func (s *Service) ListCompetencies(ctx context.Context, officerID int64) ([]CompetencyRecord, error) {
	return s.store.ListCompetencies(ctx, officerID)
}

// ListEvaluations lists evaluation records, optionally filtered by officer.
func (s *Service) ListEvaluations(ctx context.Context, officerID int64) ([]EvaluationRecord, error) {
	return s.store.ListEvaluations(ctx, officerID)
}

// Credential opens the stored credential PDF for an officer. A database row
// whose file is missing on disk is logged and surfaced as not found; the row
// itself stays intact so the credential can be re-uploaded.
func (s *Service) Credential(ctx context.Context, id int64) (io.ReadSeekCloser, *Attachment, error) {
	o, err := s.store.GetOfficer(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if o.Attachment == nil {
		return nil, nil, fmt.Errorf("%w: officer has no credential", ErrNotFound)
	}

	f, err := s.files.Open(o.Attachment.Filename)
	if err != nil {
		logging.FromContext(ctx).Warn("credential file missing from storage",
			"officer_id", id, "filename", o.Attachment.Filename, "error", err)
		return nil, nil, fmt.Errorf("%w: credential file missing", ErrNotFound)
	}
	return f, o.Attachment, nil
}
