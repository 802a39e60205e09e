package settings

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Repository is the persistence contract for settings.
type Repository interface {
	Get(ctx context.Context, key string) (Setting, bool, error)
	Upsert(ctx context.Context, s Setting) error
	List(ctx context.Context) ([]Setting, error)
	ListPublic(ctx context.Context) ([]Setting, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrInvalidArgument = errors.New("settings: invalid argument")
	ErrNotFound        = errors.New("settings: not found")
)

// Service reads and writes encrypted settings.
//
// Boundary invariant: Public() is the only method whose output may cross to a
// browser-held session. Everything else is server-side or admin-only.
type Service struct {
	repo  Repository
	box   *cipherBox
	log   *slog.Logger
	clock func() time.Time
}

func NewService(repo Repository, encryptionKey string, log *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("settings: repository is required")
	}
	box, err := newCipherBox(encryptionKey)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, box: box, log: log, clock: time.Now}, nil
}

// Get returns the decrypted value for key, or ErrNotFound.
// Undecryptable rows (e.g. written with a rotated key) are treated as absent.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrInvalidArgument
	}
	row, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	plain, err := s.box.decrypt(row.Value)
	if err != nil {
		s.log.Warn("setting undecryptable", "key", key)
		return "", ErrNotFound
	}
	return plain, nil
}

// Set encrypts and upserts a setting.
func (s *Service) Set(ctx context.Context, key, value, category string, isPublic bool, updatedBy string) error {
	if key == "" || category == "" {
		return ErrInvalidArgument
	}
	enc, err := s.box.encrypt(value)
	if err != nil {
		return err
	}
	return s.repo.Upsert(ctx, Setting{
		Key:       key,
		Value:     enc,
		Category:  category,
		IsPublic:  isPublic,
		UpdatedBy: updatedBy,
		UpdatedAt: s.clock().UTC(),
	})
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, key)
}

// All returns every setting decrypted, grouped by category. Admin-only.
func (s *Service) All(ctx context.Context) (map[string]map[string]DecryptedSetting, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]DecryptedSetting)
	for _, row := range rows {
		plain, err := s.box.decrypt(row.Value)
		if err != nil {
			s.log.Warn("setting undecryptable", "key", row.Key)
			continue
		}
		if out[row.Category] == nil {
			out[row.Category] = make(map[string]DecryptedSetting)
		}
		out[row.Category][row.Key] = DecryptedSetting{
			Value:     plain,
			IsPublic:  row.IsPublic,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return out, nil
}

// Public returns a flat key->value map of public settings only.
// Private rows never enter this map; the filter runs on the repository query
// AND is re-checked here so a repo bug cannot leak secrets.
func (s *Service) Public(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if !row.IsPublic {
			continue
		}
		plain, err := s.box.decrypt(row.Value)
		if err != nil {
			s.log.Warn("setting undecryptable", "key", row.Key)
			continue
		}
		out[row.Key] = plain
	}
	return out, nil
}
