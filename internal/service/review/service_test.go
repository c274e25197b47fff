package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adaptivelang/srs-backend/internal/domain"
	"github.com/adaptivelang/srs-backend/pkg/kmutex"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stateRepoMock struct {
	GetFunc     func(ctx context.Context, userID, itemID uuid.UUID) (domain.ReviewState, error)
	CreateFunc  func(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error)
	UpdateFunc  func(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error)
	ListDueFunc func(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ReviewState, error)
}

func (m *stateRepoMock) Get(ctx context.Context, userID, itemID uuid.UUID) (domain.ReviewState, error) {
	return m.GetFunc(ctx, userID, itemID)
}

func (m *stateRepoMock) Create(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	return m.CreateFunc(ctx, state)
}

func (m *stateRepoMock) Update(ctx context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	return m.UpdateFunc(ctx, state)
}

func (m *stateRepoMock) ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ReviewState, error) {
	return m.ListDueFunc(ctx, userID, now, limit)
}

type logRepoMock struct {
	CreateEncounterFunc func(ctx context.Context, enc *domain.Encounter) (*domain.Encounter, error)
	CreateLogFunc       func(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error)
	GetStatsFunc        func(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error)
}

func (m *logRepoMock) CreateEncounter(ctx context.Context, enc *domain.Encounter) (*domain.Encounter, error) {
	return m.CreateEncounterFunc(ctx, enc)
}

func (m *logRepoMock) CreateLog(ctx context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error) {
	return m.CreateLogFunc(ctx, log)
}

func (m *logRepoMock) GetStats(ctx context.Context, userID uuid.UUID) (domain.ReviewStats, error) {
	return m.GetStatsFunc(ctx, userID)
}

type itemRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (domain.Item, error)
}

func (m *itemRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Item, error) {
	return m.GetByIDFunc(ctx, id)
}

type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStateRepo is a stateful in-memory store with version checking, used by
// the concurrency tests.
type memStateRepo struct {
	mu     sync.Mutex
	states map[string]domain.ReviewState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]domain.ReviewState)}
}

func pairKey(userID, itemID uuid.UUID) string {
	return userID.String() + "/" + itemID.String()
}

func (m *memStateRepo) Get(_ context.Context, userID, itemID uuid.UUID) (domain.ReviewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[pairKey(userID, itemID)]
	if !ok {
		return domain.ReviewState{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memStateRepo) Create(_ context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(state.UserID, state.ItemID)
	if _, ok := m.states[key]; ok {
		return domain.ReviewState{}, domain.ErrAlreadyExists
	}
	m.states[key] = state
	return state, nil
}

func (m *memStateRepo) Update(_ context.Context, state domain.ReviewState) (domain.ReviewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey(state.UserID, state.ItemID)
	current, ok := m.states[key]
	if !ok {
		return domain.ReviewState{}, domain.ErrNotFound
	}
	if current.Version != state.Version {
		return domain.ReviewState{}, domain.ErrConflict
	}
	state.Version++
	m.states[key] = state
	return state, nil
}

func (m *memStateRepo) ListDue(_ context.Context, userID uuid.UUID, now time.Time, limit int) ([]domain.ReviewState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.ReviewState
	for _, s := range m.states {
		if s.UserID == userID && s.IsDue(now) && len(due) < limit {
			due = append(due, s)
		}
	}
	return due, nil
}

func newTestService(t *testing.T, states stateRepo, logs logRepo, items itemRepo) *Service {
	t.Helper()
	return &Service{
		states: states,
		logs:   logs,
		items:  items,
		tx:     txManagerMock{},
		locks:  kmutex.New(),
		log:    slog.Default(),
		cfg:    Config{Model: ModelSM2},
	}
}

func noopLogRepo() *logRepoMock {
	return &logRepoMock{
		CreateEncounterFunc: func(_ context.Context, enc *domain.Encounter) (*domain.Encounter, error) {
			return enc, nil
		},
		CreateLogFunc: func(_ context.Context, log *domain.ReviewLog) (*domain.ReviewLog, error) {
			return log, nil
		},
	}
}

func foundItemRepo(item domain.Item) *itemRepoMock {
	return &itemRepoMock{
		GetByIDFunc: func(_ context.Context, _ uuid.UUID) (domain.Item, error) {
			return item, nil
		},
	}
}

// ---------------------------------------------------------------------------
// LogEncounter
// ---------------------------------------------------------------------------

func TestService_LogEncounter_CreatesDefaultState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	states := newMemStateRepo()
	svc := newTestService(t, states, noopLogRepo(), foundItemRepo(domain.Item{ID: itemID}))

	enc, err := svc.LogEncounter(context.Background(), LogEncounterInput{
		UserID:  userID,
		ItemID:  itemID,
		Signals: []string{"tapped_word"},
	})
	if err != nil {
		t.Fatalf("LogEncounter() unexpected error: %v", err)
	}
	if enc.ID == uuid.Nil {
		t.Error("LogEncounter() returned encounter without id")
	}

	state, err := states.Get(context.Background(), userID, itemID)
	if err != nil {
		t.Fatalf("expected review state to be created, got %v", err)
	}
	if state.State != domain.CardStateNew {
		t.Errorf("created state = %s, want NEW", state.State)
	}
	if state.EaseFactor != domain.DefaultEaseFactor {
		t.Errorf("created ease = %v, want %v", state.EaseFactor, domain.DefaultEaseFactor)
	}
	if state.Repetitions != 0 || state.IntervalDays != 0 {
		t.Errorf("created reps/interval = %d/%d, want 0/0", state.Repetitions, state.IntervalDays)
	}
}

func TestService_LogEncounter_SecondEncounterKeepsState(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	states := newMemStateRepo()
	svc := newTestService(t, states, noopLogRepo(), foundItemRepo(domain.Item{ID: itemID}))

	ctx := context.Background()
	in := LogEncounterInput{UserID: userID, ItemID: itemID}
	if _, err := svc.LogEncounter(ctx, in); err != nil {
		t.Fatalf("first LogEncounter() error: %v", err)
	}

	// Grade between the encounters so the state moves off its defaults.
	if _, err := svc.Grade(ctx, GradeInput{UserID: userID, ItemID: itemID, Grade: domain.GradeGood}); err != nil {
		t.Fatalf("Grade() error: %v", err)
	}

	if _, err := svc.LogEncounter(ctx, in); err != nil {
		t.Fatalf("second LogEncounter() error: %v", err)
	}

	state, _ := states.Get(ctx, userID, itemID)
	if state.Repetitions != 1 {
		t.Errorf("second encounter reset state: reps = %d, want 1", state.Repetitions)
	}
}

func TestService_LogEncounter_UnknownItem(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemStateRepo(), noopLogRepo(), &itemRepoMock{
		GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.Item, error) {
			return domain.Item{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
		},
	})

	_, err := svc.LogEncounter(context.Background(), LogEncounterInput{
		UserID: uuid.New(),
		ItemID: uuid.New(),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("LogEncounter() error = %v, want ErrNotFound", err)
	}
}

func TestService_LogEncounter_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemStateRepo(), noopLogRepo(), foundItemRepo(domain.Item{}))

	negative := -5
	_, err := svc.LogEncounter(context.Background(), LogEncounterInput{
		UserID:    uuid.Nil,
		ItemID:    uuid.New(),
		LatencyMs: &negative,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("LogEncounter() error = %v, want ErrValidation", err)
	}
}

// ---------------------------------------------------------------------------
// Grade
// ---------------------------------------------------------------------------

func TestService_Grade_FirstSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	states := newMemStateRepo()

	var logged *domain.ReviewLog
	logs := noopLogRepo()
	logs.CreateLogFunc = func(_ context.Context, l *domain.ReviewLog) (*domain.ReviewLog, error) {
		logged = l
		return l, nil
	}

	svc := newTestService(t, states, logs, foundItemRepo(domain.Item{ID: itemID}))

	ctx := context.Background()
	if _, err := svc.LogEncounter(ctx, LogEncounterInput{UserID: userID, ItemID: itemID}); err != nil {
		t.Fatalf("LogEncounter() error: %v", err)
	}

	updated, err := svc.Grade(ctx, GradeInput{UserID: userID, ItemID: itemID, Grade: domain.GradeEasy})
	if err != nil {
		t.Fatalf("Grade() unexpected error: %v", err)
	}

	if updated.IntervalDays != 1 {
		t.Errorf("interval = %d, want 1", updated.IntervalDays)
	}
	if updated.Repetitions != 1 {
		t.Errorf("reps = %d, want 1", updated.Repetitions)
	}
	if updated.EaseFactor != 2.6 {
		t.Errorf("ease = %v, want 2.6", updated.EaseFactor)
	}
	if updated.State != domain.CardStateReview {
		t.Errorf("state = %s, want REVIEW", updated.State)
	}

	if logged == nil {
		t.Fatal("expected a review log to be written")
	}
	if logged.Grade != domain.GradeEasy {
		t.Errorf("logged grade = %v, want EASY", logged.Grade)
	}
	if logged.PrevState == nil || logged.PrevState.Repetitions != 0 {
		t.Error("logged snapshot should capture the pre-grade state")
	}
}

func TestService_Grade_UngradedPair(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemStateRepo(), noopLogRepo(), foundItemRepo(domain.Item{}))

	_, err := svc.Grade(context.Background(), GradeInput{
		UserID: uuid.New(),
		ItemID: uuid.New(),
		Grade:  domain.GradeGood,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Grade() error = %v, want ErrNotFound", err)
	}
}

func TestService_Grade_InvalidGrade(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemStateRepo(), noopLogRepo(), foundItemRepo(domain.Item{}))

	for _, grade := range []domain.ReviewGrade{0, 5, -1} {
		_, err := svc.Grade(context.Background(), GradeInput{
			UserID: uuid.New(),
			ItemID: uuid.New(),
			Grade:  grade,
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Grade(%d) error = %v, want ErrValidation", grade, err)
		}
	}
}

func TestService_Grade_ConcurrentSamePairSerializes(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	states := newMemStateRepo()

	var mu sync.Mutex
	var logCount int
	logs := noopLogRepo()
	logs.CreateLogFunc = func(_ context.Context, l *domain.ReviewLog) (*domain.ReviewLog, error) {
		mu.Lock()
		logCount++
		mu.Unlock()
		return l, nil
	}

	svc := newTestService(t, states, logs, foundItemRepo(domain.Item{ID: itemID}))

	ctx := context.Background()
	if _, err := svc.LogEncounter(ctx, LogEncounterInput{UserID: userID, ItemID: itemID}); err != nil {
		t.Fatalf("LogEncounter() error: %v", err)
	}

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Grade(ctx, GradeInput{UserID: userID, ItemID: itemID, Grade: domain.GradeGood})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Grade() failed: %v", err)
		}
	}

	state, _ := states.Get(ctx, userID, itemID)
	if state.Repetitions != writers {
		t.Errorf("reps = %d, want %d (each grade must observe the previous one)", state.Repetitions, writers)
	}
	if logCount != writers {
		t.Errorf("review logs = %d, want %d", logCount, writers)
	}
}

// ---------------------------------------------------------------------------
// ListDue / Stats
// ---------------------------------------------------------------------------

func TestService_ListDue_DefaultLimit(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	states := &stateRepoMock{
		ListDueFunc: func(_ context.Context, uid uuid.UUID, _ time.Time, limit int) ([]domain.ReviewState, error) {
			if uid != userID {
				t.Errorf("unexpected userID: got %v, want %v", uid, userID)
			}
			if limit != defaultDueLimit {
				t.Errorf("limit = %d, want %d", limit, defaultDueLimit)
			}
			return nil, nil
		},
	}
	svc := newTestService(t, states, noopLogRepo(), foundItemRepo(domain.Item{}))

	if _, err := svc.ListDue(context.Background(), ListDueInput{UserID: userID}); err != nil {
		t.Fatalf("ListDue() unexpected error: %v", err)
	}
}

func TestService_ListDue_LimitTooLarge(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newMemStateRepo(), noopLogRepo(), foundItemRepo(domain.Item{}))

	_, err := svc.ListDue(context.Background(), ListDueInput{UserID: uuid.New(), Limit: 500})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ListDue() error = %v, want ErrValidation", err)
	}
}

func TestService_Stats(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	want := domain.ReviewStats{
		TotalReviews: 12,
		GradeCounts:  domain.GradeCounts{Again: 2, Good: 7, Easy: 3},
		AccuracyRate: 10.0 / 12.0,
		ActiveDays:   4,
	}
	logs := noopLogRepo()
	logs.GetStatsFunc = func(_ context.Context, uid uuid.UUID) (domain.ReviewStats, error) {
		if uid != userID {
			t.Errorf("unexpected userID: got %v, want %v", uid, userID)
		}
		return want, nil
	}
	svc := newTestService(t, newMemStateRepo(), logs, foundItemRepo(domain.Item{}))

	got, err := svc.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("Stats() unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	if _, err := svc.Stats(context.Background(), uuid.Nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Stats(nil) error = %v, want ErrValidation", err)
	}
}
