package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	alertmodel "aparajita/internal/alert/model"
	"aparajita/internal/common/apperr"
	"aparajita/internal/common/logger"
	"aparajita/internal/common/metrics"
	"aparajita/internal/geo"
	locmodel "aparajita/internal/location/model"
	"aparajita/internal/safeexit/model"
)

// AlertCreator is the slice of the alert manager the state machine needs.
type AlertCreator interface {
	Create(ctx context.Context, sourceUserID, displayName string, loc geo.Point) *alertmodel.DistressAlert
}

// ContactNotifier delivers a distress notification to one contact.
// Fire-and-forget from the machine's perspective.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, contactID, alertID string) error
}

// Locator resolves a user's current position.
type Locator interface {
	Current(userID string) (locmodel.LocationSample, bool)
}

// Registry holds the per-user safe-exit machines and drives their
// transitions. All transitions happen under one mutex, so a Disable racing
// the scheduled tick is observed atomically: whichever takes the lock first
// wins.
type Registry struct {
	mu       sync.Mutex
	configs  map[string]*model.Config
	deadline map[string]time.Time

	alerts   AlertCreator
	notifier ContactNotifier
	locator  Locator
	names    func(userID string) string
	now      func() time.Time
}

func NewRegistry(alerts AlertCreator, notifier ContactNotifier, locator Locator) *Registry {
	return &Registry{
		configs:  make(map[string]*model.Config),
		deadline: make(map[string]time.Time),
		alerts:   alerts,
		notifier: notifier,
		locator:  locator,
		names:    func(userID string) string { return userID },
		now:      time.Now,
	}
}

// SetClock overrides the time source for tests.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// SetDisplayNames overrides how the auto-created alert labels the user.
func (r *Registry) SetDisplayNames(fn func(userID string) string) { r.names = fn }

// Arm validates cfg and transitions Idle/Cleared to Armed. Re-arming while
// already Armed replaces the deadline and contact set; arming while
// Triggered fails with ErrAlreadyTriggered. The deadline is the
// next wall-clock occurrence of the target time; a time already past today
// rolls over to tomorrow.
func (r *Registry) Arm(cfg model.Config) (*model.Config, error) {
	if cfg.TargetTime == nil || len(cfg.NotifyContactIDs) == 0 {
		return nil, fmt.Errorf("arm for %s: %w", cfg.UserID, apperr.ErrIncompleteConfig)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.configs[cfg.UserID]
	if ok && cur.State == model.StateTriggered {
		return nil, fmt.Errorf("arm for %s, reset required: %w", cfg.UserID, apperr.ErrAlreadyTriggered)
	}

	now := r.now()
	armed := now
	stored := &model.Config{
		UserID:           cfg.UserID,
		TargetTime:       cfg.TargetTime,
		NotifyContactIDs: append([]string(nil), cfg.NotifyContactIDs...),
		State:            model.StateArmed,
		ArmedAt:          &armed,
	}
	r.configs[cfg.UserID] = stored
	r.deadline[cfg.UserID] = cfg.TargetTime.NextAfter(now)

	logger.Info("safe_exit_armed",
		fmt.Sprintf("armed for %s, deadline %s", cfg.TargetTime, r.deadline[cfg.UserID].Format(time.RFC3339)),
		cfg.UserID, "")
	out := *stored
	return &out, nil
}

// Configure stores or updates the user's target time and contact circle
// without changing state. An Armed machine gets its deadline recomputed
// from the new target.
func (r *Registry) Configure(cfg model.Config) *model.Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.configs[cfg.UserID]
	if !ok {
		stored = &model.Config{UserID: cfg.UserID, State: model.StateIdle}
		r.configs[cfg.UserID] = stored
	}
	if cfg.TargetTime != nil {
		stored.TargetTime = cfg.TargetTime
	}
	if cfg.NotifyContactIDs != nil {
		stored.NotifyContactIDs = append([]string(nil), cfg.NotifyContactIDs...)
	}
	if stored.State == model.StateArmed && stored.TargetTime != nil {
		r.deadline[cfg.UserID] = stored.TargetTime.NextAfter(r.now())
	}

	logger.Info("safe_exit_configured", "safe-exit config updated", cfg.UserID, "")
	out := *stored
	return &out
}

// Toggle enables or disables the protocol using the stored config.
// Enabling without a target time or contacts fails with
// ErrIncompleteConfig; enabling an already-Armed or Triggered machine is a
// no-op, as is disabling one that is not Armed.
func (r *Registry) Toggle(userID string, enable bool) (*model.Config, error) {
	if !enable {
		r.Disable(userID)
		cfg, ok := r.Get(userID)
		if !ok {
			cfg = model.Config{UserID: userID, State: model.StateIdle}
		}
		return &cfg, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[userID]
	if !ok || cfg.TargetTime == nil || len(cfg.NotifyContactIDs) == 0 {
		return nil, fmt.Errorf("toggle on for %s: %w", userID, apperr.ErrIncompleteConfig)
	}
	if cfg.State == model.StateArmed || cfg.State == model.StateTriggered {
		out := *cfg
		return &out, nil
	}

	now := r.now()
	armed := now
	cfg.State = model.StateArmed
	cfg.ArmedAt = &armed
	r.deadline[userID] = cfg.TargetTime.NextAfter(now)

	logger.Info("safe_exit_armed",
		fmt.Sprintf("armed for %s, deadline %s", cfg.TargetTime, r.deadline[userID].Format(time.RFC3339)),
		userID, "")
	out := *cfg
	return &out, nil
}

// Disable transitions Armed to Cleared. A machine that is not Armed is left
// untouched; disabling twice is not an error.
func (r *Registry) Disable(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[userID]
	if !ok || cfg.State != model.StateArmed {
		return
	}
	cfg.State = model.StateCleared
	cfg.ArmedAt = nil
	delete(r.deadline, userID)
	logger.Info("safe_exit_cleared", "protocol disabled before deadline", userID, "")
}

// Reset returns a Triggered machine to Idle. The auto-created alert is not
// touched; clearing it is a separate action on the alert manager.
func (r *Registry) Reset(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, ok := r.configs[userID]
	if !ok || cfg.State != model.StateTriggered {
		return
	}
	cfg.State = model.StateIdle
	cfg.ArmedAt = nil
	logger.Info("safe_exit_reset", "protocol reset to idle", userID, "")
}

// Get returns a copy of the user's config, or false if never configured.
func (r *Registry) Get(userID string) (model.Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[userID]
	if !ok {
		return model.Config{}, false
	}
	return *cfg, true
}

// Tick fires every armed machine whose deadline has passed. Runs on the
// periodic scheduler, independent of location events.
func (r *Registry) Tick(ctx context.Context) {
	now := r.now()

	r.mu.Lock()
	var due []*model.Config
	for userID, cfg := range r.configs {
		if cfg.State != model.StateArmed {
			continue
		}
		if dl, ok := r.deadline[userID]; ok && !now.Before(dl) {
			cfg.State = model.StateTriggered
			delete(r.deadline, userID)
			due = append(due, cfg)
		}
	}
	// Copies taken under the lock; the escalation below runs without it.
	triggered := make([]model.Config, 0, len(due))
	for _, cfg := range due {
		triggered = append(triggered, *cfg)
	}
	r.mu.Unlock()

	for _, cfg := range triggered {
		r.escalate(ctx, cfg)
	}
}

// escalate raises the distress alert and notifies the contact circle,
// exactly as a manual panic action would.
func (r *Registry) escalate(ctx context.Context, cfg model.Config) {
	metrics.SafeExitTriggers.Inc()

	var loc geo.Point
	if sample, ok := r.locator.Current(cfg.UserID); ok {
		loc = sample.Point
	} else {
		logger.Warn("safe_exit_no_location", "no location on record at trigger time", cfg.UserID, "", "")
	}

	alert := r.alerts.Create(ctx, cfg.UserID, r.names(cfg.UserID), loc)
	logger.Info("safe_exit_triggered",
		fmt.Sprintf("deadline %s passed, alert raised", cfg.TargetTime), cfg.UserID, alert.ID)

	for _, contactID := range cfg.NotifyContactIDs {
		contactID := contactID
		go func() {
			if err := r.notifier.NotifyContact(ctx, contactID, alert.ID); err != nil {
				metrics.NotificationFailures.Inc()
				logger.Warn("notify_contact_failed",
					fmt.Sprintf("could not reach contact %s", contactID), cfg.UserID, alert.ID, err.Error())
			}
		}()
	}
}
