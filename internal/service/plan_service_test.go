package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"alcyxob/run-plan/internal/domain"
	"alcyxob/run-plan/internal/metrics"
	"alcyxob/run-plan/internal/planner"
	"alcyxob/run-plan/internal/repository"
	"alcyxob/run-plan/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPlanRepo struct {
	mu      sync.Mutex
	plans   map[string]*domain.Plan
	saves   int
	getErr  error
	saveErr error
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: map[string]*domain.Plan{}}
}

func (r *memPlanRepo) Get(_ context.Context, id string) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memPlanRepo) Save(_ context.Context, p *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.plans[p.ID] = p.Clone()
	r.saves++
	return nil
}

func (r *memPlanRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *memPlanRepo) stored(id string) *domain.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plans[id].Clone()
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobs) PutObject(_ context.Context, key string, body []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *memBlobs) GetObject(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return b, nil
}

func (m *memBlobs) DeleteObject(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memBlobs) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://blobs.local/" + key + "?sig=x", nil
}

var testToday = time.Date(2026, 1, 19, 9, 30, 0, 0, time.UTC)

func newTestPlanService(t *testing.T, repo repository.PlanRepository, blobs storage.BlobStorage, debounce time.Duration) (*planService, *metrics.Manager) {
	t.Helper()
	m := metrics.NewTestManager()
	svc := NewPlanService(repo, blobs, m, PlanServiceConfig{
		PlanID:       "main",
		PlanName:     "Test 10K",
		SaveDebounce: debounce,
	}).(*planService)
	svc.now = func() time.Time { return testToday }
	t.Cleanup(func() {
		svc.mu.Lock()
		if svc.timer != nil {
			svc.timer.Stop()
		}
		svc.mu.Unlock()
	})
	return svc, m
}

func loadedService(t *testing.T, debounce time.Duration) (*planService, *memPlanRepo, *metrics.Manager) {
	t.Helper()
	repo := newMemPlanRepo()
	svc, m := newTestPlanService(t, repo, nil, debounce)
	require.NoError(t, svc.Load(context.Background()))
	return svc, repo, m
}

func TestPlanService_LoadSeedsDefaultPlan(t *testing.T) {
	svc, repo, m := loadedService(t, time.Hour)

	assert.Equal(t, 1, repo.saveCount(), "seeded plan is saved right away")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSaves.WithLabelValues(metrics.SaveOK)))

	stored := repo.stored("main")
	require.NotNil(t, stored)
	assert.Equal(t, "Test 10K", stored.Name)
	assert.Equal(t, "2026-01-19", stored.StartDate)
	for _, w := range stored.Weeks {
		assert.Len(t, w.Sessions, domain.WeekSlots)
	}

	week, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, week)
}

func TestPlanService_LoadNormalizedPlanDoesNotSave(t *testing.T) {
	repo := newMemPlanRepo()
	p := domain.NewDefaultPlan("main", "Stored", "2026-01-05")
	planner.Normalize(p, testToday)
	repo.plans["main"] = p

	svc, _ := newTestPlanService(t, repo, nil, time.Hour)
	require.NoError(t, svc.Load(context.Background()))
	assert.Zero(t, repo.saveCount())

	week, err := svc.CurrentWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, week, "two weeks after the start date")
}

func TestPlanService_LoadErrors(t *testing.T) {
	t.Run("invalid plan", func(t *testing.T) {
		repo := newMemPlanRepo()
		p := domain.NewDefaultPlan("main", "Broken", "2026-01-05")
		p.Weeks = p.Weeks[:10]
		repo.plans["main"] = p

		svc, _ := newTestPlanService(t, repo, nil, time.Hour)
		err := svc.Load(context.Background())
		assert.ErrorIs(t, err, ErrInvalidPlan)
		assert.ErrorIs(t, err, domain.ErrWrongWeekCount)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newMemPlanRepo()
		repo.getErr = errors.New("connection refused")

		svc, _ := newTestPlanService(t, repo, nil, time.Hour)
		err := svc.Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPlanService_NotLoaded(t *testing.T) {
	svc, _ := newTestPlanService(t, newMemPlanRepo(), nil, time.Hour)
	ctx := context.Background()

	_, err := svc.Plan(ctx)
	assert.ErrorIs(t, err, ErrPlanNotLoaded)
	_, err = svc.Week(ctx, 1)
	assert.ErrorIs(t, err, ErrPlanNotLoaded)
	_, err = svc.LogSession(ctx, 1, 0, true, nil)
	assert.ErrorIs(t, err, ErrPlanNotLoaded)
	assert.NoError(t, svc.Flush(ctx))
}

func TestPlanService_WeekAndSessionLookup(t *testing.T) {
	svc, _, _ := loadedService(t, time.Hour)
	ctx := context.Background()

	w, err := svc.Week(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, "Race", w.Phase)

	_, err = svc.Week(ctx, 0)
	assert.ErrorIs(t, err, ErrWeekNotFound)
	_, err = svc.Week(ctx, 13)
	assert.ErrorIs(t, err, ErrWeekNotFound)

	_, err = svc.SessionDetails(ctx, 1, 7)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.LogSession(ctx, 1, -1, true, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	d, err := svc.SessionDetails(ctx, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, "Progressive Long Run", d.Title)
}

func TestPlanService_ReturnsCopies(t *testing.T) {
	svc, _, _ := loadedService(t, time.Hour)
	ctx := context.Background()

	w, err := svc.Week(ctx, 1)
	require.NoError(t, err)
	w.Sessions[1].Km = 99

	again, err := svc.Week(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, again.Sessions[1].Km)
}

func TestPlanService_LogSessionDebouncesSaves(t *testing.T) {
	svc, repo, m := loadedService(t, 50*time.Millisecond)
	ctx := context.Background()

	km := 4.5
	w, err := svc.LogSession(ctx, 1, 1, true, &km)
	require.NoError(t, err)
	assert.Equal(t, 4.5, w.RealizedKm)
	_, err = svc.LogSession(ctx, 1, 2, true, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.saveCount(), "nothing saved before the quiet period")
	assert.Eventually(t, func() bool { return repo.saveCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return repo.saveCount() > 2 }, 100*time.Millisecond, 10*time.Millisecond)

	stored := repo.stored("main")
	assert.True(t, stored.Weeks[0].Sessions[2].Done)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterSessions))
}

func TestPlanService_FlushForcesPendingSave(t *testing.T) {
	svc, repo, _ := loadedService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.FillPlanned(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saveCount())

	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, 2, repo.saveCount())
	assert.Equal(t, 22.0, repo.stored("main").Weeks[0].RealizedKm)

	require.NoError(t, svc.Flush(ctx), "nothing pending")
	assert.Equal(t, 2, repo.saveCount())
}

func TestPlanService_FailedSaveStaysPending(t *testing.T) {
	svc, repo, m := loadedService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.ResetWeek(ctx, 1)
	require.NoError(t, err)
	_, err = svc.FillPlanned(ctx, 2)
	require.NoError(t, err)

	repo.mu.Lock()
	repo.saveErr = errors.New("disk full")
	repo.mu.Unlock()
	require.Error(t, svc.Flush(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSaves.WithLabelValues(metrics.SaveError)))

	repo.mu.Lock()
	repo.saveErr = nil
	repo.mu.Unlock()
	require.NoError(t, svc.Close(ctx))
	assert.Equal(t, 2, repo.saveCount())
}

func TestPlanService_SummaryAchievementsProgression(t *testing.T) {
	svc, _, _ := loadedService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.FillPlanned(ctx, 1)
	require.NoError(t, err)

	s, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, s.ProgressPercent)
	assert.Equal(t, 22.0, s.TotalKm)
	assert.Equal(t, 220, s.XP)

	a, err := svc.Achievements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, a.CurrentStreak)
	assert.Contains(t, a.Badges, planner.BadgePerfectWeek)

	points, err := svc.Progression(ctx)
	require.NoError(t, err)
	require.Len(t, points, 12)
	assert.Equal(t, 22.0, points[0].RealizedKm)

	_, err = svc.Summary(ctx, 20)
	assert.ErrorIs(t, err, ErrWeekNotFound)
}

func TestPlanService_SubmitRegisterAdjustsAndSaves(t *testing.T) {
	svc, repo, m := loadedService(t, time.Hour)
	ctx := context.Background()

	// Nothing logged in week 1: adherence is zero, so week 2 is reduced.
	res, err := svc.SubmitRegister(ctx, 1, domain.WeekRegister{Pain: 2, Sleep: 7})
	require.NoError(t, err)
	assert.Equal(t, planner.DecisionReduce, res.Decision)
	assert.True(t, res.Adjusted)
	require.NotNil(t, res.Week.Register)
	assert.Equal(t, 2, res.Week.Register.Pain)
	require.NotNil(t, res.NextWeek)
	assert.True(t, res.NextWeek.AutoAdjusted)
	assert.Equal(t, 21.0, res.NextWeek.TargetKmMax, "floor(24 * 0.9)")
	assert.Equal(t, 18.0, res.NextWeek.TargetKmMin)

	assert.Equal(t, 2, repo.saveCount(), "saved without waiting for the debounce")
	assert.Equal(t, 21.0, repo.stored("main").Weeks[1].TargetKmMax)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterAdjustments.WithLabelValues(string(planner.DecisionReduce))))
}

func TestPlanService_SubmitRegisterLastWeek(t *testing.T) {
	svc, repo, m := loadedService(t, time.Hour)

	res, err := svc.SubmitRegister(context.Background(), 12, domain.WeekRegister{Ill: true})
	require.NoError(t, err)
	assert.Equal(t, planner.DecisionNone, res.Decision)
	assert.False(t, res.Adjusted)
	assert.Nil(t, res.NextWeek)
	assert.Equal(t, 2, repo.saveCount(), "the register itself is saved")
	assert.Zero(t, testutil.ToFloat64(m.CounterAdjustments.WithLabelValues(string(planner.DecisionReduce))))
}

func TestPlanService_SubmitRegisterValidation(t *testing.T) {
	svc, repo, _ := loadedService(t, time.Hour)

	_, err := svc.SubmitRegister(context.Background(), 1, domain.WeekRegister{Pain: 14})
	assert.ErrorIs(t, err, ErrInvalidRegister)
	assert.ErrorIs(t, err, domain.ErrInvalidRegister)

	_, err = svc.SubmitRegister(context.Background(), 0, domain.WeekRegister{})
	assert.ErrorIs(t, err, ErrWeekNotFound)
	assert.Equal(t, 1, repo.saveCount())
}

func TestPlanService_ImportPlan(t *testing.T) {
	svc, repo, _ := loadedService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.ImportPlan(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	bad := domain.NewDefaultPlan("other", "Bad", "2026-01-05")
	bad.PaceRanges.EasyMin = 0
	_, err = svc.ImportPlan(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.ErrorIs(t, err, domain.ErrInvalidPaceRange)

	incoming := domain.NewDefaultPlan("other", "Imported", "2026-01-12")
	incoming.Weeks[9].LongRunKm = 15
	got, err := svc.ImportPlan(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, "main", got.ID)
	assert.Equal(t, "Imported", got.Name)
	assert.Equal(t, domain.LongRunCeilKm, got.Weeks[9].LongRunKm, "safety is enforced on import")
	assert.Len(t, got.Weeks[0].Sessions, domain.WeekSlots)
	assert.Equal(t, "other", incoming.ID, "caller's plan is untouched")

	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, "Imported", repo.stored("main").Name)
}

func TestPlanService_Snapshots(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := loadedService(t, time.Hour)
	_, err := svc.CreateSnapshot(ctx)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)

	blobs := &memBlobs{objects: map[string][]byte{}}
	withBlobs, _ := newTestPlanService(t, newMemPlanRepo(), blobs, time.Hour)
	_, err = withBlobs.CreateSnapshot(ctx)
	assert.ErrorIs(t, err, ErrPlanNotLoaded)

	require.NoError(t, withBlobs.Load(ctx))
	snap, err := withBlobs.CreateSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(snap.Key, "snapshots/main/"))
	assert.True(t, strings.HasSuffix(snap.Key, ".json"))
	assert.Contains(t, snap.DownloadURL, snap.Key)
	assert.Equal(t, testToday, snap.CreatedAt)
	assert.Contains(t, string(blobs.objects[snap.Key]), `"start_date": "2026-01-19"`)
}
