// Package registry holds the process-wide activity registry: every activity
// offered by the school and the ordered list of students signed up for it.
package registry

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/models"
)

const (
	OperationList     = "list"
	OperationEnroll   = "enroll"
	OperationWithdraw = "withdraw"
)

// Store persists participant rosters. found is false when nothing has been
// saved for the activity yet.
type Store interface {
	LoadParticipants(ctx context.Context, activity string) (participants []string, found bool, err error)
	SaveParticipants(ctx context.Context, activity string, participants []string) error
}

type Dependencies struct {
	Store         Store // nil keeps rosters in memory only
	Logger        logger.Logger
	Observability *observability.Observability
	StoreTimeout  time.Duration
}

// Registry is safe for concurrent use. Activities are fixed at construction;
// only their participant lists change.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]models.Activity

	store        Store
	storeTimeout time.Duration
	logger       logger.Logger
	obs          *observability.Observability
}

func New(activities models.ActivityMap, deps Dependencies) *Registry {
	r := &Registry{
		activities:   make(map[string]models.Activity, len(activities)),
		store:        deps.Store,
		storeTimeout: deps.StoreTimeout,
		logger:       deps.Logger,
		obs:          deps.Observability,
	}
	if r.logger == nil {
		r.logger = logger.NewNoOpLogger()
	}
	if r.obs == nil {
		r.obs = observability.Disabled()
	}
	if r.storeTimeout <= 0 {
		r.storeTimeout = 3 * time.Second
	}

	for name, activity := range activities {
		r.activities[name] = activity.Clone()
	}
	return r
}

// Restore replaces each activity's participants with the stored roster, when
// one exists. Stored rosters for activities not in the registry are ignored.
func (r *Registry) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	restored := 0
	for _, name := range r.sortedNames() {
		participants, found, err := r.store.LoadParticipants(ctx, name)
		if err != nil {
			return fmt.Errorf("restore roster for %s: %w", name, err)
		}
		if !found {
			continue
		}
		activity := r.activities[name]
		activity.Participants = append(make([]string, 0, len(participants)), participants...)
		r.activities[name] = activity
		restored++
	}

	r.logger.Info("rosters restored", map[string]interface{}{
		"restored":   restored,
		"activities": len(r.activities),
	})
	return nil
}

// List returns a snapshot of every activity. Callers may modify it freely.
func (r *Registry) List(ctx context.Context) models.ActivityMap {
	start := time.Now()

	r.mu.RLock()
	out := make(models.ActivityMap, len(r.activities))
	for name, activity := range r.activities {
		out[name] = activity.Clone()
	}
	r.mu.RUnlock()

	r.record(ctx, OperationList, start, nil)
	return out
}

// Get returns a snapshot of one activity.
func (r *Registry) Get(ctx context.Context, name string) (models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return models.Activity{}, errors.NewActivityNotFoundError(name)
	}
	return activity.Clone(), nil
}

// Names returns all activity names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

// Enroll appends email to the activity's participants. Neither duplicates nor
// MaxParticipants are checked.
func (r *Registry) Enroll(ctx context.Context, name, email string) error {
	start := time.Now()
	err := r.enroll(ctx, name, email)
	r.record(ctx, OperationEnroll, start, err)
	return err
}

func (r *Registry) enroll(ctx context.Context, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return errors.NewActivityNotFoundError(name)
	}

	updated := make([]string, len(activity.Participants), len(activity.Participants)+1)
	copy(updated, activity.Participants)
	updated = append(updated, email)

	if err := r.persist(ctx, name, updated); err != nil {
		return err
	}

	activity.Participants = updated
	r.activities[name] = activity

	r.logger.Info("participant enrolled", map[string]interface{}{
		"activity":     name,
		"email":        email,
		"participants": len(updated),
	})
	return nil
}

// Withdraw removes the first occurrence of email from the activity's participants.
func (r *Registry) Withdraw(ctx context.Context, name, email string) error {
	start := time.Now()
	err := r.withdraw(ctx, name, email)
	r.record(ctx, OperationWithdraw, start, err)
	return err
}

func (r *Registry) withdraw(ctx context.Context, name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return errors.NewActivityNotFoundError(name)
	}

	idx := slices.Index(activity.Participants, email)
	if idx < 0 {
		return errors.NewParticipantNotFoundError(name, email)
	}

	updated := slices.Delete(slices.Clone(activity.Participants), idx, idx+1)

	if err := r.persist(ctx, name, updated); err != nil {
		return err
	}

	activity.Participants = updated
	r.activities[name] = activity

	r.logger.Info("participant withdrawn", map[string]interface{}{
		"activity":     name,
		"email":        email,
		"participants": len(updated),
	})
	return nil
}

// persist writes the roster through to the store. Called with r.mu held so
// stored order matches in-memory order.
func (r *Registry) persist(ctx context.Context, name string, participants []string) error {
	if r.store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.storeTimeout)
	defer cancel()

	if err := r.store.SaveParticipants(ctx, name, participants); err != nil {
		r.logger.Error("roster save failed", map[string]interface{}{
			"activity": name,
			"error":    err,
		})
		return errors.NewRegistryStoreFailedError(name, err)
	}
	return nil
}

func (r *Registry) sortedNames() []string {
	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = string(errors.Normalize(err).Code)
	}
	r.obs.RecordOperation(ctx, operation, status)
	r.obs.RecordOperationDuration(ctx, operation, time.Since(start))
}
