package file

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

// Service orchestrates create/update/delete/migrate over file records,
// picking the adapter that matches each record's current backend. Every
// successful mutation leaves exactly one consistent set of backing bytes;
// failed mutations roll back or log what they could not clean.
type Service struct {
	repo  Repository
	local LocalStore
	media MediaStore // nil when the remote store is not configured
	log   *logrus.Logger

	// Mutations on the same record id are serialized; different ids run in
	// parallel. Entries are never evicted (bounded by record count).
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

func NewService(repo Repository, local LocalStore, media MediaStore, log *logrus.Logger) *Service {
	return &Service{
		repo:  repo,
		local: local,
		media: media,
		log:   log,
		locks: make(map[int64]*sync.Mutex),
	}
}

// Create validates the request, stores every staged upload on the requested
// backend and persists a new record. If any store/upload fails mid-batch,
// everything stored in this call is removed (best effort) and no record is
// persisted.
func (s *Service) Create(ctx context.Context, in CreateFileInput) (*domain.File, error) {
	if err := s.validateCreate(in); err != nil {
		s.discardStaging(in.Main, in.Additional)
		return nil, err
	}

	var stored []domain.Attachment
	fail := func(cause error) (*domain.File, error) {
		if err := s.removeAttachments(ctx, in.Backend, stored); err != nil {
			s.log.WithError(err).Warn("create rollback: could not remove stored attachments")
		}
		s.discardStaging(in.Main, in.Additional)
		return nil, cause
	}

	var main *domain.Attachment
	if in.Main != nil {
		att, err := s.storeStaged(ctx, in.Backend, *in.Main, folderFor(in.Name, "main"))
		if err != nil {
			return fail(err)
		}
		stored = append(stored, att)
		main = &att
	}

	additional := make([]domain.Attachment, 0, len(in.Additional))
	for _, staged := range in.Additional {
		att, err := s.storeStaged(ctx, in.Backend, staged, folderFor(in.Name, "additional"))
		if err != nil {
			return fail(err)
		}
		stored = append(stored, att)
		additional = append(additional, att)
	}

	f := &domain.File{
		Name:            in.Name,
		StorageBackend:  in.Backend,
		MainFile:        main,
		AdditionalFiles: additional,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return fail(fmt.Errorf("persist file record: %w", err))
	}

	return f, nil
}

func (s *Service) List(ctx context.Context) ([]domain.File, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.File, error) {
	return s.getRecord(ctx, id)
}

// Update is partial: only the name/slots present in the input are touched.
// Replaced slots delete the old bytes first (deletion failure is logged, not
// fatal) and then store the new bytes on the record's current backend. Only
// Migrate changes the backend itself.
func (s *Service) Update(ctx context.Context, id int64, in UpdateFileInput) (*domain.File, error) {
	unlock := s.lockRecord(id)
	defer unlock()

	f, err := s.getRecord(ctx, id)
	if err != nil {
		s.discardStaging(in.Main, in.Additional)
		return nil, err
	}

	if in.Name != "" {
		if err := validateName(in.Name); err != nil {
			s.discardStaging(in.Main, in.Additional)
			return nil, err
		}
		f.Name = in.Name
	}

	if in.Main != nil {
		if f.MainFile != nil {
			if err := s.removeAttachment(ctx, f.StorageBackend, *f.MainFile); err != nil {
				s.log.WithError(err).WithField("file_id", id).
					Warn("update: could not remove previous main attachment bytes")
			}
		}
		att, err := s.storeStaged(ctx, f.StorageBackend, *in.Main, folderFor(f.Name, "main"))
		if err != nil {
			// Old bytes may already be gone; the record keeps its previous
			// metadata for this slot. Known accepted gap.
			s.log.WithError(err).WithField("file_id", id).
				Warn("update: main replacement failed after old bytes were removed")
			s.discardStaging(nil, in.Additional)
			return nil, err
		}
		f.MainFile = &att
	}

	if in.Additional != nil {
		if err := s.removeAttachments(ctx, f.StorageBackend, f.AdditionalFiles); err != nil {
			s.log.WithError(err).WithField("file_id", id).
				Warn("update: could not remove previous additional attachment bytes")
		}
		newList := make([]domain.Attachment, 0, len(in.Additional))
		for i, staged := range in.Additional {
			att, err := s.storeStaged(ctx, f.StorageBackend, staged, folderFor(f.Name, "additional"))
			if err != nil {
				if rbErr := s.removeAttachments(ctx, f.StorageBackend, newList); rbErr != nil {
					s.log.WithError(rbErr).Warn("update rollback: could not remove new attachments")
				}
				s.discardStaging(nil, in.Additional[i:])
				return nil, err
			}
			newList = append(newList, att)
		}
		f.AdditionalFiles = newList
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("persist file record: %w", err)
	}
	return f, nil
}

// Delete sweeps all backing bytes best-effort (failures are aggregated and
// logged, never block the sweep) and then removes the record regardless of
// individual deletion outcomes.
func (s *Service) Delete(ctx context.Context, id int64) error {
	unlock := s.lockRecord(id)
	defer unlock()

	f, err := s.getRecord(ctx, id)
	if err != nil {
		return err
	}

	if err := s.removeAttachments(ctx, f.StorageBackend, allAttachments(f)); err != nil {
		s.log.WithError(err).WithField("file_id", id).
			Warn("delete: some backing bytes could not be removed")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}
	return nil
}

// Migrate re-homes every attachment's bytes onto the target backend and flips
// the record in one update. Only local -> remote is supported. Uploads are
// staged in memory until all succeed, so a failed migration leaves the record
// and its local files untouched.
func (s *Service) Migrate(ctx context.Context, id int64, target domain.StorageBackend) (*domain.File, error) {
	if !target.Valid() {
		return nil, ErrInvalidBackend
	}

	unlock := s.lockRecord(id)
	defer unlock()

	f, err := s.getRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.StorageBackend == target {
		return f, nil
	}
	if target == domain.BackendLocal {
		return nil, ErrNotImplemented
	}
	if s.media == nil {
		return nil, ErrRemoteUnavailable
	}

	var uploaded []domain.Attachment
	fail := func(cause error) (*domain.File, error) {
		if rbErr := s.removeAttachments(ctx, domain.BackendRemote, uploaded); rbErr != nil {
			s.log.WithError(rbErr).WithField("file_id", id).
				Warn("migrate rollback: could not remove uploaded objects")
		}
		return nil, fmt.Errorf("%w: %w", ErrMigration, cause)
	}

	migrateOne := func(att domain.Attachment, slot string) (domain.Attachment, error) {
		if att.Local == nil {
			return domain.Attachment{}, fmt.Errorf("attachment %q has no local variant", att.OriginalName)
		}
		info, err := s.media.Upload(ctx, att.Local.Path, folderFor(f.Name, slot))
		if err != nil {
			return domain.Attachment{}, err
		}
		return domain.Attachment{
			FieldName:    att.FieldName,
			OriginalName: att.OriginalName,
			Encoding:     att.Encoding,
			MimeType:     att.MimeType,
			Size:         att.Size,
			Remote:       info,
		}, nil
	}

	var newMain *domain.Attachment
	if f.MainFile != nil {
		att, err := migrateOne(*f.MainFile, "main")
		if err != nil {
			return fail(err)
		}
		uploaded = append(uploaded, att)
		newMain = &att
	}

	newAdditional := make([]domain.Attachment, 0, len(f.AdditionalFiles))
	for _, old := range f.AdditionalFiles {
		att, err := migrateOne(old, "additional")
		if err != nil {
			return fail(err)
		}
		uploaded = append(uploaded, att)
		newAdditional = append(newAdditional, att)
	}

	// Every upload succeeded: old local bytes go away, then the record
	// flips backend and attachments in a single update.
	if err := s.removeAttachments(ctx, domain.BackendLocal, allAttachments(f)); err != nil {
		s.log.WithError(err).WithField("file_id", id).
			Warn("migrate: could not remove old local files")
	}

	f.StorageBackend = domain.BackendRemote
	f.MainFile = newMain
	f.AdditionalFiles = newAdditional
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("%w: persist migrated record: %w", ErrMigration, err)
	}
	return f, nil
}

func (s *Service) validateCreate(in CreateFileInput) error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if !in.Backend.Valid() {
		return ErrInvalidBackend
	}
	if in.Main == nil && len(in.Additional) == 0 {
		return ErrNoFiles
	}
	if in.Backend == domain.BackendRemote && s.media == nil {
		return ErrRemoteUnavailable
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > domain.MaxFileNameLen {
		return ErrNameTooLong
	}
	return nil
}

// storeStaged puts one staged upload onto the given backend and returns the
// resulting attachment. On the remote backend the staging copy is deleted
// once the upload is acknowledged.
func (s *Service) storeStaged(ctx context.Context, backend domain.StorageBackend, staged StagedUpload, folder string) (domain.Attachment, error) {
	att := domain.Attachment{
		FieldName:    staged.FieldName,
		OriginalName: staged.OriginalName,
		Encoding:     staged.Encoding,
		MimeType:     staged.MimeType,
		Size:         staged.Size,
	}

	switch backend {
	case domain.BackendLocal:
		info, err := s.local.Store(staged.Path, staged.OriginalName)
		if err != nil {
			return domain.Attachment{}, err
		}
		att.Local = info
	case domain.BackendRemote:
		if s.media == nil {
			return domain.Attachment{}, ErrRemoteUnavailable
		}
		info, err := s.media.Upload(ctx, staged.Path, folder)
		if err != nil {
			return domain.Attachment{}, err
		}
		att.Remote = info
		if err := s.local.Remove(staged.Path); err != nil {
			s.log.WithError(err).WithField("path", staged.Path).
				Warn("could not remove staging copy after remote upload")
		}
	default:
		return domain.Attachment{}, ErrInvalidBackend
	}

	return att, nil
}

// removeAttachment deletes one attachment's backing bytes via the adapter
// matching backend.
func (s *Service) removeAttachment(ctx context.Context, backend domain.StorageBackend, att domain.Attachment) error {
	switch {
	case backend == domain.BackendLocal && att.Local != nil:
		return s.local.Remove(att.Local.Path)
	case backend == domain.BackendRemote && att.Remote != nil:
		if s.media == nil {
			return ErrRemoteUnavailable
		}
		return s.media.Remove(ctx, att.Remote.PublicID)
	}
	return fmt.Errorf("attachment %q has no %s variant", att.OriginalName, backend)
}

// removeAttachments attempts every deletion independently and returns the
// aggregate of whatever failed.
func (s *Service) removeAttachments(ctx context.Context, backend domain.StorageBackend, atts []domain.Attachment) error {
	var errs []error
	for _, att := range atts {
		if err := s.removeAttachment(ctx, backend, att); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// discardStaging removes leftover staging files after a failed operation.
// Staged paths that were already consumed are simply absent.
func (s *Service) discardStaging(main *StagedUpload, additional []StagedUpload) {
	if main != nil {
		if err := s.local.Remove(main.Path); err != nil {
			s.log.WithError(err).WithField("path", main.Path).Warn("could not discard staging file")
		}
	}
	for _, staged := range additional {
		if err := s.local.Remove(staged.Path); err != nil {
			s.log.WithError(err).WithField("path", staged.Path).Warn("could not discard staging file")
		}
	}
}

func (s *Service) getRecord(ctx context.Context, id int64) (*domain.File, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *Service) lockRecord(id int64) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[id] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func folderFor(name, slot string) string {
	return name + "/" + slot
}

func allAttachments(f *domain.File) []domain.Attachment {
	atts := make([]domain.Attachment, 0, 1+len(f.AdditionalFiles))
	if f.MainFile != nil {
		atts = append(atts, *f.MainFile)
	}
	return append(atts, f.AdditionalFiles...)
}
