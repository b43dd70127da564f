// Package session tracks which plan week a client is looking at and drives
// generation of the next one.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/ml"
	"github.com/franckalain/fitplan/internal/models"
	"github.com/franckalain/fitplan/internal/prompt"
)

type State int

const (
	NoPlan State = iota
	Generating
	PlanReady
)

func (s State) String() string {
	switch s {
	case NoPlan:
		return "no_plan"
	case Generating:
		return "generating"
	case PlanReady:
		return "plan_ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrBusy is returned when a generation is already in flight
	ErrBusy = errors.New("a plan is already being generated")
	// ErrNoPlan is returned by RequestNextWeek before any plan exists
	ErrNoPlan = errors.New("no active plan")
	// ErrReset is the cause of the Canceled error returned when Reset drops
	// an in-flight generation
	ErrReset = errors.New("session reset during generation")
)

// UnsavedPlanError means the plan was generated and is active but could not
// be written to history.
type UnsavedPlanError struct {
	Plan models.FitnessPlan
	Err  error
}

func (e *UnsavedPlanError) Error() string {
	return fmt.Sprintf("plan shown but not saved: %v", e.Err)
}

func (e *UnsavedPlanError) Unwrap() error {
	return e.Err
}

// Recorder appends successful generations to the plan history.
type Recorder interface {
	Append(ctx context.Context, userID string, profile models.UserProfile, plan models.FitnessPlan) (models.AdminRecord, error)
}

// Result is a freshly generated plan and, when it was persisted, its record.
type Result struct {
	Plan   models.FitnessPlan
	Record models.AdminRecord
}

// Planner is the per-session state machine. All methods are safe for
// concurrent use; at most one generation runs at a time.
type Planner struct {
	model   ml.Model
	history Recorder

	mu      sync.Mutex
	userID  string
	state   State
	busy    bool
	// epoch is bumped by Reset; a generation started under an older epoch
	// is discarded
	epoch   uint64
	week    int
	profile models.UserProfile
	plan    *models.FitnessPlan
}

func New(model ml.Model, history Recorder) *Planner {
	return &Planner{model: model, history: history}
}

// SetUser links later records to userID. An empty id records anonymously.
func (p *Planner) SetUser(userID string) {
	p.mu.Lock()
	p.userID = userID
	p.mu.Unlock()
}

// State returns the current state and, in PlanReady, the active week.
func (p *Planner) State() (State, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.week
}

// Current returns the active profile and plan, if any.
func (p *Planner) Current() (models.UserProfile, *models.FitnessPlan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plan == nil {
		return models.UserProfile{}, nil, false
	}
	plan := *p.plan
	return p.profile, &plan, true
}

// Reset drops the active plan. A generation in flight keeps the planner busy
// until it returns, but its result is discarded and nothing is recorded.
func (p *Planner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.week, p.plan = 0, nil
	p.profile = models.UserProfile{}
	if !p.busy {
		p.state = NoPlan
	}
}

// SubmitProfile generates week 1 for profile.
func (p *Planner) SubmitProfile(ctx context.Context, profile models.UserProfile) (Result, error) {
	return p.generate(ctx, func() (models.UserProfile, int, error) {
		return profile, 1, nil
	})
}

// RequestNextWeek generates week n+1 of the active plan with the same profile.
func (p *Planner) RequestNextWeek(ctx context.Context) (Result, error) {
	return p.generate(ctx, func() (models.UserProfile, int, error) {
		if p.state != PlanReady {
			return models.UserProfile{}, 0, ErrNoPlan
		}
		return p.profile, p.week + 1, nil
	})
}

// ViewRecord makes a stored record the active plan. Nothing is generated or
// appended.
func (p *Planner) ViewRecord(record models.AdminRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	plan := record.Plan
	p.state = PlanReady
	p.week = plan.WeekNumber
	p.profile = record.User
	p.plan = &plan
	return nil
}

type snapshot struct {
	state   State
	week    int
	profile models.UserProfile
	plan    *models.FitnessPlan
}

// restore puts back the state from before a failed generation, or NoPlan
// when the planner was reset meanwhile.
func (p *Planner) restore(s snapshot, epoch uint64) {
	p.mu.Lock()
	if p.epoch == epoch {
		p.state, p.week, p.profile, p.plan = s.state, s.week, s.profile, s.plan
	} else {
		p.state = NoPlan
	}
	p.busy = false
	p.mu.Unlock()
}

func discarded(week int) error {
	logger.Debug("discarding generation after reset", "week", week)
	return &ml.GenerationError{Kind: ml.KindCanceled, Err: ErrReset}
}

// generate runs one request. target is evaluated under the lock and picks
// the profile and week to request.
func (p *Planner) generate(ctx context.Context, target func() (models.UserProfile, int, error)) (Result, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return Result{}, ErrBusy
	}
	profile, week, err := target()
	if err != nil {
		p.mu.Unlock()
		return Result{}, err
	}
	prev := snapshot{state: p.state, week: p.week, profile: p.profile, plan: p.plan}
	userID, epoch := p.userID, p.epoch
	p.busy = true
	p.state = Generating
	p.mu.Unlock()

	req, err := prompt.Build(profile, week)
	if err != nil {
		p.restore(prev, epoch)
		return Result{}, err
	}

	logger.Debug("generating plan", "week", week, "user", userID)
	plan, err := p.model.Generate(ctx, req)
	if err == nil && plan == nil {
		err = &ml.GenerationError{Kind: ml.KindEmptyResponse}
	}
	if err == nil && ctx.Err() != nil {
		kind := ml.KindCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = ml.KindTimeout
		}
		err = &ml.GenerationError{Kind: kind, Err: ctx.Err()}
	}
	if err != nil {
		p.restore(prev, epoch)
		logger.Warn("plan generation failed", "week", week, "kind", ml.KindOf(err), "err", err)
		return Result{}, err
	}
	active := *plan
	active.WeekNumber = week

	// The plan becomes active before it is persisted.
	p.mu.Lock()
	if p.epoch != epoch {
		p.state, p.busy = NoPlan, false
		p.mu.Unlock()
		return Result{}, discarded(week)
	}
	p.state = PlanReady
	p.week = week
	p.profile = profile
	p.plan = &active
	p.mu.Unlock()

	result := Result{Plan: active}
	record, err := p.history.Append(ctx, userID, profile, active)

	p.mu.Lock()
	p.busy = false
	stale := p.epoch != epoch
	if stale {
		p.state = NoPlan
	}
	p.mu.Unlock()

	if stale {
		// Already recorded for the user who asked; just not shown to the next.
		return Result{}, discarded(week)
	}
	if err != nil {
		logger.Error("plan generated but not saved", "week", week, "err", err)
		return result, &UnsavedPlanError{Plan: active, Err: err}
	}
	result.Record = record
	logger.Info("plan generated", "week", week, "record", record.ID)
	return result, nil
}
