package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/franckalain/fitplan/internal/database"
	"github.com/franckalain/fitplan/internal/ml"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
	"github.com/franckalain/fitplan/internal/store"
)

func testProfile() models.UserProfile {
	return models.UserProfile{
		Name:               "Bikash",
		Gender:             models.GenderMale,
		Age:                35,
		Height:             170,
		Weight:             82,
		BodyFat:            24,
		FitnessLevel:       models.LevelBeginner,
		Goal:               models.GoalFatLoss,
		Location:           models.LocationGym,
		TimeAvailable:      60,
		DietaryPreference:  models.DietEggetarian,
		GymDays:            4,
		IncludeSupplements: models.No,
		PreferredSplit:     models.SplitUpperLower,
		Budget:             models.BudgetMedium,
	}
}

// stubModel wraps the local generator so tests can fail, block or corrupt
// individual calls.
type stubModel struct {
	mu       sync.Mutex
	inner    ml.Model
	err      error
	started  chan struct{}
	release  chan struct{}
	waitCtx  bool
	mutate   func(doc map[string]any)
	requests []prompt.Request
}

func newStub(t *testing.T) *stubModel {
	t.Helper()
	inner, err := ml.NewLocalModelFactory(ml.LocalConfig{}).CreateModel()
	if err != nil {
		t.Fatalf("CreateModel failed: %v", err)
	}
	return &stubModel{inner: inner}
}

func (s *stubModel) Load(context.Context) error { return nil }
func (s *stubModel) Close() error               { return nil }

func (s *stubModel) Generate(ctx context.Context, req prompt.Request) (*models.FitnessPlan, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	err, mutate := s.err, s.mutate
	s.mu.Unlock()

	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.waitCtx {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	plan, err := s.inner.Generate(ctx, req)
	if err != nil || mutate == nil {
		return plan, err
	}
	data, _ := json.Marshal(plan)
	var doc map[string]any
	json.Unmarshal(data, &doc)
	mutate(doc)
	data, _ = json.Marshal(doc)
	return ml.DecodePlan(string(data), req.Schema)
}

func (s *stubModel) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type failingRecorder struct{}

func (failingRecorder) Append(context.Context, string, models.UserProfile, models.FitnessPlan) (models.AdminRecord, error) {
	return models.AdminRecord{}, store.ErrStorageUnavailable
}

func newPlanner(t *testing.T) (*Planner, *stubModel, *store.History) {
	t.Helper()
	stub := newStub(t)
	history := store.NewHistory(database.NewMemoryDB(), 0)
	return New(stub, history), stub, history
}

func expectState(t *testing.T, p *Planner, state State, week int) {
	t.Helper()
	gotState, gotWeek := p.State()
	if gotState != state || gotWeek != week {
		t.Fatalf("state = %s(%d), want %s(%d)", gotState, gotWeek, state, week)
	}
}

func TestSubmitProfileAndProgress(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	p.SetUser("user-1")

	res, err := p.SubmitProfile(ctx, testProfile())
	if err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	expectState(t, p, PlanReady, 1)
	if res.Plan.WeekNumber != 1 || res.Record.Plan.WeekNumber != 1 {
		t.Errorf("week 1 plan numbered %d", res.Plan.WeekNumber)
	}
	if res.Record.UserID != "user-1" {
		t.Errorf("record user = %q", res.Record.UserID)
	}

	for week := 2; week <= 3; week++ {
		res, err := p.RequestNextWeek(ctx)
		if err != nil {
			t.Fatalf("RequestNextWeek failed: %v", err)
		}
		if res.Plan.WeekNumber != week {
			t.Errorf("got week %d, want %d", res.Plan.WeekNumber, week)
		}
		expectState(t, p, PlanReady, week)
	}

	if got := stub.requests[2].WeekNumber; got != 3 {
		t.Errorf("third request asked for week %d", got)
	}
	if stub.requests[2].Profile != testProfile() {
		t.Error("next week should reuse the submitted profile")
	}

	records, _ := history.ListAll(ctx)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []int{3, 2, 1} {
		if records[i].Plan.WeekNumber != want {
			t.Errorf("record %d has week %d, want %d", i, records[i].Plan.WeekNumber, want)
		}
	}
}

func TestWeekNumberIsOverwritten(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	stub.mutate = func(doc map[string]any) { doc["weekNumber"] = 99 }

	p.ViewRecord(models.AdminRecord{User: testProfile(), Plan: models.FitnessPlan{WeekNumber: 3}})
	res, err := p.RequestNextWeek(ctx)
	if err != nil {
		t.Fatalf("RequestNextWeek failed: %v", err)
	}
	if res.Plan.WeekNumber != 4 {
		t.Errorf("week = %d, want 4", res.Plan.WeekNumber)
	}
	records, _ := history.ListAll(ctx)
	if len(records) != 1 || records[0].Plan.WeekNumber != 4 {
		t.Errorf("expected one record for week 4, got %+v", records)
	}
}

func TestNextWeekFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	p.ViewRecord(models.AdminRecord{User: testProfile(), Plan: models.FitnessPlan{WeekNumber: 3}})

	stub.setErr(&ml.GenerationError{Kind: ml.KindTransportFailure, Err: errors.New("503")})
	if _, err := p.RequestNextWeek(ctx); !errors.Is(err, ml.ErrTransportFailure) {
		t.Fatalf("expected TransportFailure, got %v", err)
	}
	expectState(t, p, PlanReady, 3)

	records, _ := history.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("failed generation must not be recorded, got %d", len(records))
	}

	stub.setErr(nil)
	res, err := p.RequestNextWeek(ctx)
	if err != nil || res.Plan.WeekNumber != 4 {
		t.Errorf("retry should produce week 4, got %d, %v", res.Plan.WeekNumber, err)
	}
}

func TestSchemaMismatchAppendsNothing(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	stub.mutate = func(doc map[string]any) { delete(doc, "macros") }

	_, err := p.SubmitProfile(ctx, testProfile())
	if !errors.Is(err, ml.ErrSchemaMismatch) {
		t.Fatalf("expected SchemaMismatch, got %v", err)
	}
	expectState(t, p, NoPlan, 0)
	if _, plan, ok := p.Current(); ok || plan != nil {
		t.Error("no plan should be active")
	}
	records, _ := history.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestNextWeekWithoutPlan(t *testing.T) {
	p, stub, _ := newPlanner(t)
	if _, err := p.RequestNextWeek(context.Background()); !errors.Is(err, ErrNoPlan) {
		t.Errorf("expected ErrNoPlan, got %v", err)
	}
	if len(stub.requests) != 0 {
		t.Error("no request should be sent without a plan")
	}
}

func TestInvalidProfileIsRejected(t *testing.T) {
	p, stub, _ := newPlanner(t)
	profile := testProfile()
	profile.GymDays = 2

	_, err := p.SubmitProfile(context.Background(), profile)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	expectState(t, p, NoPlan, 0)
	if len(stub.requests) != 0 {
		t.Error("invalid profile should never reach the model")
	}
}

func TestSecondRequestWhileGeneratingIsBusy(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	stub.started = make(chan struct{})
	stub.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := p.SubmitProfile(ctx, testProfile())
		done <- err
	}()
	<-stub.started

	expectState(t, p, Generating, 0)
	if _, err := p.SubmitProfile(ctx, testProfile()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if _, err := p.RequestNextWeek(ctx); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := p.ViewRecord(models.AdminRecord{}); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(stub.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first request failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not finish")
	}

	records, _ := history.ListAll(ctx)
	if len(records) != 1 {
		t.Errorf("expected exactly one record, got %d", len(records))
	}
	if len(stub.requests) != 1 {
		t.Errorf("expected one model call, got %d", len(stub.requests))
	}
}

func TestViewRecordDoesNotAppend(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)

	res, err := p.SubmitProfile(ctx, testProfile())
	if err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	p.RequestNextWeek(ctx)

	if err := p.ViewRecord(res.Record); err != nil {
		t.Fatalf("ViewRecord failed: %v", err)
	}
	expectState(t, p, PlanReady, 1)
	profile, plan, ok := p.Current()
	if !ok || plan.WeekNumber != 1 || profile != testProfile() {
		t.Errorf("unexpected active plan %+v", plan)
	}

	records, _ := history.ListAll(ctx)
	if len(records) != 2 || len(stub.requests) != 2 {
		t.Errorf("viewing must not generate or append: %d records, %d calls", len(records), len(stub.requests))
	}
}

func TestUnsavedPlanKeepsPlanActive(t *testing.T) {
	p := New(newStub(t), failingRecorder{})

	res, err := p.SubmitProfile(context.Background(), testProfile())
	var unsaved *UnsavedPlanError
	if !errors.As(err, &unsaved) {
		t.Fatalf("expected UnsavedPlanError, got %v", err)
	}
	if !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("unsaved error should wrap the storage error, got %v", err)
	}
	if unsaved.Plan.WeekNumber != 1 || res.Plan.WeekNumber != 1 {
		t.Error("unsaved plan should still be returned")
	}
	expectState(t, p, PlanReady, 1)
	if _, plan, ok := p.Current(); !ok || plan == nil {
		t.Error("plan should stay active after a failed save")
	}
}

func TestCancellationAppendsNothing(t *testing.T) {
	stub := newStub(t)
	stub.waitCtx = true
	history := store.NewHistory(database.NewMemoryDB(), 0)
	p := New(ml.WithTimeout(stub, 0), history)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.SubmitProfile(ctx, testProfile()); !errors.Is(err, ml.ErrCanceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}
	expectState(t, p, NoPlan, 0)

	timed := New(ml.WithTimeout(stub, 10*time.Millisecond), history)
	if _, err := timed.SubmitProfile(context.Background(), testProfile()); !errors.Is(err, ml.ErrTimeout) {
		t.Fatalf("expected Timeout, got %v", err)
	}

	records, _ := history.ListAll(context.Background())
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestReset(t *testing.T) {
	p, _, _ := newPlanner(t)
	if _, err := p.SubmitProfile(context.Background(), testProfile()); err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}
	p.Reset()
	expectState(t, p, NoPlan, 0)
}

func TestResetDuringGenerationDiscardsResult(t *testing.T) {
	ctx := context.Background()
	p, stub, history := newPlanner(t)
	p.SetUser("alice")
	stub.started = make(chan struct{})
	stub.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := p.SubmitProfile(ctx, testProfile())
		done <- err
	}()
	<-stub.started

	p.SetUser("")
	p.Reset()
	p.SetUser("bob")
	if _, err := p.SubmitProfile(ctx, testProfile()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy until the dropped request returns, got %v", err)
	}
	close(stub.release)

	select {
	case err := <-done:
		if !errors.Is(err, ml.ErrCanceled) || !errors.Is(err, ErrReset) {
			t.Fatalf("expected Canceled after reset, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not finish")
	}

	expectState(t, p, NoPlan, 0)
	if _, plan, ok := p.Current(); ok || plan != nil {
		t.Error("reset plan must not become active")
	}
	if _, err := p.RequestNextWeek(ctx); !errors.Is(err, ErrNoPlan) {
		t.Errorf("expected ErrNoPlan for the next user, got %v", err)
	}
	records, _ := history.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("expected no records, got %+v", records)
	}
}

func TestResetDuringFailedGenerationLeavesNoPlan(t *testing.T) {
	ctx := context.Background()
	p, stub, _ := newPlanner(t)
	if _, err := p.SubmitProfile(ctx, testProfile()); err != nil {
		t.Fatalf("SubmitProfile failed: %v", err)
	}

	stub.setErr(&ml.GenerationError{Kind: ml.KindTransportFailure, Err: errors.New("503")})
	stub.started = make(chan struct{})
	stub.release = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := p.RequestNextWeek(ctx)
		done <- err
	}()
	<-stub.started
	p.Reset()
	close(stub.release)

	if err := <-done; !errors.Is(err, ml.ErrTransportFailure) {
		t.Fatalf("expected TransportFailure, got %v", err)
	}
	expectState(t, p, NoPlan, 0)
}
