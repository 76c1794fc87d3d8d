package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/cepadmin/cepadmin/internal/directory"
)

// DefaultCustomerID addresses the customer of the service credential.
const DefaultCustomerID = "my_customer"

const defaultMaxConcurrency = 8

// Directory is the read-only view of the directory the evaluator needs.
type Directory interface {
	GetUser(ctx context.Context, userKey string) (directory.User, error)
	ListRoleAssignments(ctx context.Context, userKey, customerID string) ([]directory.RoleAssignment, error)
	GetRole(ctx context.Context, customerID, roleID string) (directory.Role, error)
}

// Recorder receives one observation per finished evaluation.
type Recorder interface {
	ObserveEvaluation(state string, err error, elapsed time.Duration)
}

// ServiceConfig tunes the evaluator.
type ServiceConfig struct {
	// CustomerID is used when the user record carries none.
	CustomerID string
	// MaxConcurrency bounds parallel role fetches within one evaluation.
	MaxConcurrency int
}

// Service decides whether a user is a CEP delegated admin. It keeps no state
// between calls and is safe for concurrent use.
type Service struct {
	dir      Directory
	catalog  Catalog
	cfg      ServiceConfig
	logger   *slog.Logger
	recorder Recorder
}

// NewService constructs a Service evaluating against catalog.
func NewService(dir Directory, catalog Catalog, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.CustomerID == "" {
		cfg.CustomerID = DefaultCustomerID
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, catalog: catalog, cfg: cfg, logger: logger}
}

// WithRecorder attaches an evaluation recorder.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Catalog returns the catalog the service evaluates against.
func (s *Service) Catalog() Catalog {
	return s.catalog
}

// GetRoles evaluates the caller identified by email. Either a complete Result
// or an error is returned, never both.
func (s *Service) GetRoles(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		s.observe(StateUnauthenticated, ErrUnauthenticated, 0)
		return Result{}, ErrUnauthenticated
	}

	evaluationID := uuid.NewString()
	logger := s.logger.With(slog.String("evaluation_id", evaluationID), slog.String("user", email))
	start := time.Now()

	result, err := s.evaluate(ctx, email)
	elapsed := time.Since(start)
	if err != nil {
		var internal *InternalError
		if errors.As(err, &internal) {
			internal.EvaluationID = evaluationID
		}
		logger.Error("evaluate roles", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		s.observe(StateFailed, err, elapsed)
		return Result{}, err
	}

	logger.Info("evaluate roles",
		slog.String("state", string(result.State)),
		slog.Bool("cep_admin", result.IsCEPAdmin),
		slog.Int("missing", len(result.MissingPrivileges)),
		slog.Duration("elapsed", elapsed),
	)
	s.observe(result.State, nil, elapsed)
	return result, nil
}

func (s *Service) evaluate(ctx context.Context, email string) (Result, error) {
	user, err := s.dir.GetUser(ctx, email)
	if err != nil {
		return Result{}, &InternalError{Stage: StageUserLookup, Err: err}
	}
	if user.IsAdmin {
		return Result{IsSuperAdmin: true, IsCEPAdmin: true, State: StateSuperAdmin}, nil
	}

	customerID := user.CustomerID
	if customerID == "" {
		customerID = s.cfg.CustomerID
	}

	assignments, err := s.dir.ListRoleAssignments(ctx, email, customerID)
	if err != nil {
		return Result{}, &InternalError{Stage: StageAssignments, Err: err}
	}
	if len(assignments) == 0 {
		return Result{MissingPrivileges: s.catalog.Entries(), State: StateNoRoles}, nil
	}

	roles, err := s.fetchRoles(ctx, customerID, assignments)
	if err != nil {
		return Result{}, &InternalError{Stage: StageRoles, Err: err}
	}

	missing := s.catalog.Missing(AggregatePrivileges(roles))
	if missing == nil {
		return Result{IsCEPAdmin: true, State: StateEvaluated}, nil
	}
	return Result{MissingPrivileges: missing, State: StateEvaluated}, nil
}

// fetchRoles loads each distinct assigned role concurrently. The first failure
// cancels the rest and no roles are returned.
func (s *Service) fetchRoles(ctx context.Context, customerID string, assignments []directory.RoleAssignment) ([]directory.Role, error) {
	roleIDs := lo.Compact(lo.Uniq(lo.Map(assignments, func(a directory.RoleAssignment, _ int) string {
		return a.RoleID
	})))

	roles := make([]directory.Role, len(roleIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, roleID := range roleIDs {
		g.Go(func() error {
			role, err := s.dir.GetRole(gctx, customerID, roleID)
			if err != nil {
				return fmt.Errorf("role %s: %w", roleID, err)
			}
			roles[i] = role
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Service) observe(state State, err error, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveEvaluation(string(state), err, elapsed)
}
