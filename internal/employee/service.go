package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/frahmantamala/training-tracker/internal/auth"
)

var ErrProtected = errors.New("the seed administrator cannot be modified")

type Repository interface {
	Create(ctx context.Context, e *Employee) error
	GetByID(ctx context.Context, id string) (*Employee, error)
	GetMany(ctx context.Context, ids []string) ([]*Employee, error)
	List(ctx context.Context, company string) ([]*Employee, error)
	Delete(ctx context.Context, id string) error
	// Upsert inserts new employees and refreshes name, part, group and
	// company of existing ones. Role and password are left alone.
	Upsert(ctx context.Context, employees []*Employee) (int, error)
}

type Options struct {
	DefaultPassword string
	BCryptCost      int
	ProtectedID     string
}

type Service struct {
	repo   Repository
	opts   Options
	logger *slog.Logger
}

func NewService(repo Repository, opts Options, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Register creates a staff account with the default password. Registration
// does not add the employee to courses that already exist.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*Employee, error) {
	return s.create(ctx, dto, s.opts.DefaultPassword)
}

// Create is the admin variant of Register; an empty password falls back to
// the default one.
func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	password := dto.Password
	if strings.TrimSpace(password) == "" {
		password = s.opts.DefaultPassword
	}
	return s.create(ctx, dto.RegisterDTO, password)
}

func (s *Service) create(ctx context.Context, dto RegisterDTO, password string) (*Employee, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("employee validation failed", "error", appErr, "id", dto.ID)
		return nil, appErr
	}

	id, err := NormalizeID(dto.ID)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.opts.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	e := NewEmployee(id, dto.Name, dto.Part, dto.Group, dto.Company, hash)
	if err := s.repo.Create(ctx, e); err != nil {
		if !errors.Is(err, ErrAlreadyExists) {
			s.logger.Error("failed to create employee", "error", err, "employee_id", id)
		}
		return nil, err
	}

	s.logger.Info("employee registered", "employee_id", id, "company", e.Company)
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	normalized, err := NormalizeID(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, normalized)
}

func (s *Service) GetMany(ctx context.Context, ids []string) ([]*Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.repo.GetMany(ctx, ids)
}

// List returns employees sorted by name. Search is diacritic-insensitive on
// the name and a substring match on the id.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	all, err := s.repo.List(ctx, filter.Company)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, err
	}

	result := make([]*Employee, 0, len(all))
	for _, e := range all {
		if e.Matches(filter.Search) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return FoldSearch(result[i].Name) < FoldSearch(result[j].Name)
	})
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	normalized, err := NormalizeID(id)
	if err != nil {
		return ErrNotFound
	}
	if normalized == s.opts.ProtectedID {
		s.logger.Warn("refused to delete seed administrator", "employee_id", normalized)
		return ErrProtected
	}
	if err := s.repo.Delete(ctx, normalized); err != nil {
		return err
	}
	s.logger.Info("employee deleted", "employee_id", normalized)
	return nil
}

// Import upserts parsed spreadsheet rows. Invalid rows are reported and
// skipped, the seed administrator is never touched, and when an id repeats
// the last row wins.
func (s *Service) Import(ctx context.Context, rows []ImportRow, defaultCompany string) (*ImportResult, error) {
	result := &ImportResult{Errors: []ImportRowError{}}

	hash, err := auth.HashPassword(s.opts.DefaultPassword, s.opts.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	byID := make(map[string]int)
	var batch []*Employee
	for _, row := range rows {
		id, err := NormalizeID(row.ID)
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Line: row.Line, ID: row.ID, Message: err.Error()})
			continue
		}
		if id == s.opts.ProtectedID {
			result.Skipped++
			continue
		}
		if strings.TrimSpace(row.Name) == "" {
			result.Errors = append(result.Errors, ImportRowError{Line: row.Line, ID: id, Message: "name is required"})
			continue
		}
		company := row.Company
		if company == "" {
			company = defaultCompany
		}
		if company != CompanyPrimary && company != CompanyVendor {
			result.Errors = append(result.Errors, ImportRowError{Line: row.Line, ID: id, Message: fmt.Sprintf("unknown company %q", company)})
			continue
		}

		e := NewEmployee(id, row.Name, row.Part, row.Group, company, hash)
		if idx, ok := byID[id]; ok {
			batch[idx] = e
			result.Skipped++
			continue
		}
		byID[id] = len(batch)
		batch = append(batch, e)
	}

	if len(batch) > 0 {
		n, err := s.repo.Upsert(ctx, batch)
		if err != nil {
			s.logger.Error("employee import failed", "error", err, "rows", len(batch))
			return nil, fmt.Errorf("import employees: %w", err)
		}
		result.Imported = n
	}

	s.logger.Info("employee import finished",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}
