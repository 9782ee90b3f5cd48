package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/metrics"
	"alcyxob/run-plan/internal/planner"
	"alcyxob/run-plan/internal/repository"
	"alcyxob/run-plan/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// --- Error Definitions ---
var (
	ErrPlanNotLoaded     = errors.New("plan has not been loaded")
	ErrWeekNotFound      = errors.New("week not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrInvalidRegister   = errors.New("invalid week register")
	ErrSnapshotsDisabled = errors.New("snapshots require object storage")
)

const (
	defaultSaveDebounce = 800 * time.Millisecond
	defaultSaveTimeout  = 10 * time.Second
	snapshotPrefix      = "snapshots"
)

// RegisterResult is returned after a week register is submitted.
type RegisterResult struct {
	Decision planner.Decision `json:"decision"`
	Adjusted bool             `json:"adjusted"`
	Week     *domain.Week     `json:"week"`
	NextWeek *domain.Week     `json:"next_week,omitempty"`
}

// Snapshot points at an immutable copy of the plan in object storage.
type Snapshot struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlanService owns the single in-memory plan and every operation on it.
// Weeks and sessions are addressed by 1-based week number and 0-based session index.
type PlanService interface {
	Load(ctx context.Context) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error

	Plan(ctx context.Context) (*domain.Plan, error)
	CurrentWeek(ctx context.Context) (int, error)
	Week(ctx context.Context, number int) (*domain.Week, error)
	Summary(ctx context.Context, number int) (planner.WeekSummary, error)
	Achievements(ctx context.Context) (planner.Achievements, error)
	Progression(ctx context.Context) ([]planner.ProgressPoint, error)
	SessionDetails(ctx context.Context, number, index int) (planner.SessionDetails, error)

	LogSession(ctx context.Context, number, index int, done bool, km *float64) (*domain.Week, error)
	FillPlanned(ctx context.Context, number int) (*domain.Week, error)
	ResetWeek(ctx context.Context, number int) (*domain.Week, error)
	SubmitRegister(ctx context.Context, number int, register domain.WeekRegister) (*RegisterResult, error)
	ImportPlan(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	CreateSnapshot(ctx context.Context) (*Snapshot, error)
}

// PlanServiceConfig carries the plan identity and save timing.
type PlanServiceConfig struct {
	PlanID       string
	PlanName     string
	SaveDebounce time.Duration
	SaveTimeout  time.Duration
}

// planService implements PlanService.
type planService struct {
	repo    repository.PlanRepository
	blobs   storage.BlobStorage // nil disables snapshots
	metrics *metrics.Manager
	cfg     PlanServiceConfig
	now     func() time.Time

	mu    sync.Mutex // guards everything below
	plan  *domain.Plan
	dirty bool
	timer *time.Timer

	saveMu sync.Mutex // keeps saves in order
}

// NewPlanService creates the plan orchestrator. blobs may be nil.
func NewPlanService(repo repository.PlanRepository, blobs storage.BlobStorage, m *metrics.Manager, cfg PlanServiceConfig) PlanService {
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = defaultSaveDebounce
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = defaultSaveTimeout
	}
	return &planService{
		repo:    repo,
		blobs:   blobs,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Load reads the plan, seeding the default one when the store is empty,
// and normalizes it. A normalized plan that changed is saved right away.
func (s *planService) Load(ctx context.Context) error {
	plan, err := s.repo.Get(ctx, s.cfg.PlanID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Infof("plan [%s] not found, seeding default plan", s.cfg.PlanID)
		plan = domain.NewDefaultPlan(s.cfg.PlanID, s.cfg.PlanName, "")
	case err != nil:
		return fmt.Errorf("load plan: %w", err)
	}
	plan.ID = s.cfg.PlanID

	if err := plan.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	modified := planner.Normalize(plan, s.now())

	s.mu.Lock()
	s.plan = plan
	s.dirty = s.dirty || modified
	s.mu.Unlock()

	log.Infof("plan [%s] loaded, current week: %d", plan.ID, s.weekNumber(plan))

	if modified {
		return s.Flush(ctx)
	}
	return nil
}

// Flush saves the plan now if there are unsaved changes.
func (s *planService) Flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty || s.plan == nil {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.plan.Clone()
	s.dirty = false
	s.mu.Unlock()

	if err := s.save(ctx, snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Close flushes pending changes and stops the debounce timer.
func (s *planService) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func (s *planService) save(ctx context.Context, plan *domain.Plan) error {
	defer func(begin time.Time) {
		s.metrics.HistSaveDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	if err := s.repo.Save(ctx, plan); err != nil {
		s.metrics.CounterSaves.WithLabelValues(metrics.SaveError).Inc()
		log.Errorf("save plan [%s]: %s", plan.ID, err)
		return err
	}
	s.metrics.CounterSaves.WithLabelValues(metrics.SaveOK).Inc()
	log.Debugf("plan [%s] saved", plan.ID)
	return nil
}

// scheduleSave marks the plan dirty and restarts the debounce timer.
// Callers hold s.mu.
func (s *planService) scheduleSave() {
	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.SaveDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
		defer cancel()
		if err := s.Flush(ctx); err != nil {
			log.Errorf("debounced save failed: %s", err)
		}
	})
}

func (s *planService) weekNumber(p *domain.Plan) int {
	start, err := domain.ParseDate(p.StartDate)
	if err != nil {
		return 1
	}
	return planner.GetWeekNumber(start, s.now(), len(p.Weeks))
}

// loadedPlan returns the plan. Callers hold s.mu.
func (s *planService) loadedPlan() (*domain.Plan, error) {
	if s.plan == nil {
		return nil, ErrPlanNotLoaded
	}
	return s.plan, nil
}

// weekIndex maps a week number to its index. Callers hold s.mu.
func (s *planService) weekIndex(number int) (int, error) {
	p, err := s.loadedPlan()
	if err != nil {
		return 0, err
	}
	if number < 1 || number > len(p.Weeks) {
		return 0, fmt.Errorf("%w: %d", ErrWeekNotFound, number)
	}
	return number - 1, nil
}

func (s *planService) Plan(_ context.Context) (*domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadedPlan()
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// CurrentWeek is the week the calendar points at today.
func (s *planService) CurrentWeek(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadedPlan()
	if err != nil {
		return 0, err
	}
	return s.weekNumber(p), nil
}

func (s *planService) Week(_ context.Context, number int) (*domain.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.weekIndex(number)
	if err != nil {
		return nil, err
	}
	return cloneWeek(s.plan, idx), nil
}

func (s *planService) Summary(_ context.Context, number int) (planner.WeekSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.weekIndex(number)
	if err != nil {
		return planner.WeekSummary{}, err
	}
	summary, _ := planner.Summarize(s.plan, idx)
	return summary, nil
}

func (s *planService) Achievements(_ context.Context) (planner.Achievements, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadedPlan()
	if err != nil {
		return planner.Achievements{}, err
	}
	return planner.CalculateAchievements(p), nil
}

func (s *planService) Progression(_ context.Context) ([]planner.ProgressPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadedPlan()
	if err != nil {
		return nil, err
	}
	return planner.Progression(p), nil
}

func (s *planService) SessionDetails(_ context.Context, number, index int) (planner.SessionDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.weekIndex(number)
	if err != nil {
		return planner.SessionDetails{}, err
	}
	w := &s.plan.Weeks[idx]
	if index < 0 || index >= len(w.Sessions) {
		return planner.SessionDetails{}, fmt.Errorf("%w: week %d session %d", ErrSessionNotFound, number, index)
	}
	return planner.DescribeSession(s.plan, w, w.Sessions[index]), nil
}

func (s *planService) LogSession(_ context.Context, number, index int, done bool, km *float64) (*domain.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.weekIndex(number)
	if err != nil {
		return nil, err
	}
	if !planner.LogSession(s.plan, idx, index, done, km) {
		return nil, fmt.Errorf("%w: week %d session %d", ErrSessionNotFound, number, index)
	}
	s.metrics.CounterSessions.Inc()
	s.scheduleSave()
	return cloneWeek(s.plan, idx), nil
}

func (s *planService) FillPlanned(_ context.Context, number int) (*domain.Week, error) {
	return s.mutateWeek(number, planner.FillPlanned)
}

func (s *planService) ResetWeek(_ context.Context, number int) (*domain.Week, error) {
	return s.mutateWeek(number, planner.ResetWeek)
}

func (s *planService) mutateWeek(number int, fn func(*domain.Plan, int) bool) (*domain.Week, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.weekIndex(number)
	if err != nil {
		return nil, err
	}
	if fn(s.plan, idx) {
		s.scheduleSave()
	}
	return cloneWeek(s.plan, idx), nil
}

// SubmitRegister stores the week's questionnaire, adapts the following
// week and saves immediately.
func (s *planService) SubmitRegister(ctx context.Context, number int, register domain.WeekRegister) (*RegisterResult, error) {
	if err := register.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegister, err)
	}

	s.mu.Lock()
	idx, err := s.weekIndex(number)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	reg := register
	s.plan.Weeks[idx].Register = &reg

	decision := planner.AdjustNextWeek(s.plan, idx, register)
	result := &RegisterResult{
		Decision: decision,
		Adjusted: decision != planner.DecisionNone,
		Week:     cloneWeek(s.plan, idx),
	}
	if idx+1 < len(s.plan.Weeks) {
		result.NextWeek = cloneWeek(s.plan, idx+1)
	}
	s.dirty = true
	s.mu.Unlock()

	if result.Adjusted {
		s.metrics.CounterAdjustments.WithLabelValues(string(decision)).Inc()
		log.Infof("week %d register: %s applied to week %d", number, decision, number+1)
	}

	if err := s.Flush(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// ImportPlan replaces the whole plan after validating it.
func (s *planService) ImportPlan(_ context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if plan == nil {
		return nil, ErrInvalidPlan
	}
	p := plan.Clone()
	p.ID = s.cfg.PlanID
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	planner.Normalize(p, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = p
	s.scheduleSave()
	log.Infof("plan [%s] imported", p.ID)
	return p.Clone(), nil
}

// CreateSnapshot writes an immutable copy of the current plan to object
// storage and returns a presigned download link.
func (s *planService) CreateSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.blobs == nil {
		return nil, ErrSnapshotsDisabled
	}

	s.mu.Lock()
	p, err := s.loadedPlan()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	body, err := json.MarshalIndent(p, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	key := path.Join(snapshotPrefix, s.cfg.PlanID, uuid.NewString()+".json")
	if err := s.blobs.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	url, err := s.blobs.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}

	log.Infof("plan snapshot stored at [%s]", key)
	return &Snapshot{Key: key, DownloadURL: url, CreatedAt: s.now().UTC()}, nil
}

func cloneWeek(p *domain.Plan, idx int) *domain.Week {
	w := p.Weeks[idx].Clone()
	return &w
}
