// ABOUTME: Two-step account deletion
// ABOUTME: Password check, then a cancelable countdown that deletes the account and signs out

package feature

import (
	"context"
	"fmt"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
	"github.com/interntrack/admin-cli/internal/countdown"
)

// DeletionPhase is where the deletion flow stands
type DeletionPhase int

const (
	DeletionIdle DeletionPhase = iota
	DeletionVerifying
	DeletionCounting
	DeletionDeleting
	DeletionDone
)

// DeletionState is what the delete-account dialog renders
type DeletionState struct {
	Phase     DeletionPhase
	Remaining int
	// Err is shown under the password field
	Err string
}

// Label is the countdown line shown while the deletion is pending
func (s DeletionState) Label() string {
	return fmt.Sprintf("Deleting in %d seconds...", s.Remaining)
}

// AccountDeletion runs the delete-account dialog. The countdown and the
// delete request run on a background context so closing the dialog must go
// through Cancel.
type AccountDeletion struct {
	deps Deps

	mu    sync.Mutex
	state DeletionState
	timer *countdown.Countdown
	done  chan error
}

// NewAccountDeletion creates an idle deletion flow
func NewAccountDeletion(d Deps) *AccountDeletion {
	return &AccountDeletion{deps: d.withDefaults()}
}

// State returns the dialog state
func (a *AccountDeletion) State() DeletionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AccountDeletion) set(fn func(st *DeletionState)) {
	a.mu.Lock()
	fn(&a.state)
	a.mu.Unlock()
	a.deps.changed()
}

// Verify checks the password and, on success, starts the countdown. The
// returned channel yields the deletion result once the countdown fires.
func (a *AccountDeletion) Verify(ctx context.Context, password string) (<-chan error, error) {
	a.mu.Lock()
	if a.state.Phase != DeletionIdle {
		a.mu.Unlock()
		return nil, fmt.Errorf("account deletion already in progress")
	}
	a.state = DeletionState{Phase: DeletionVerifying}
	a.mu.Unlock()
	a.deps.changed()

	if err := a.deps.API.VerifyPassword(ctx, password); err != nil {
		if client.IsUnauthorized(err) {
			a.set(func(st *DeletionState) { *st = DeletionState{} })
			a.deps.expire()
			return nil, err
		}
		msg := "The provided password is incorrect."
		if vErr, ok := client.AsValidation(err); ok {
			if m := vErr.Fields["password"]; m != "" {
				msg = m
			}
		}
		a.set(func(st *DeletionState) { *st = DeletionState{Err: msg} })
		return nil, err
	}

	done := make(chan error, 1)
	a.mu.Lock()
	a.done = done
	a.state = DeletionState{Phase: DeletionCounting, Remaining: a.deps.Countdown}
	a.mu.Unlock()
	a.deps.changed()

	timer := countdown.Start(a.deps.Countdown, a.deps.CountdownTick, a.tick, a.fire)
	a.mu.Lock()
	a.timer = timer
	a.mu.Unlock()
	return done, nil
}

func (a *AccountDeletion) tick(remaining int) {
	a.set(func(st *DeletionState) {
		if st.Phase == DeletionCounting {
			st.Remaining = remaining
		}
	})
}

// DeleteNow skips the rest of the countdown
func (a *AccountDeletion) DeleteNow() bool {
	a.mu.Lock()
	timer := a.timer
	a.mu.Unlock()
	if timer == nil {
		return false
	}
	return timer.Fire()
}

// Cancel stops a pending countdown and resets the dialog. Once the delete
// request has started it can no longer be canceled.
func (a *AccountDeletion) Cancel() bool {
	a.mu.Lock()
	timer := a.timer
	phase := a.state.Phase
	a.mu.Unlock()

	if phase != DeletionCounting || timer == nil || !timer.Cancel() {
		return false
	}
	a.set(func(st *DeletionState) { *st = DeletionState{} })
	a.mu.Lock()
	a.timer = nil
	a.mu.Unlock()
	return true
}

// fire runs when the countdown ends or DeleteNow skips it. The request goes
// out on its own goroutine so a UI calling DeleteNow is never blocked.
func (a *AccountDeletion) fire() {
	a.set(func(st *DeletionState) {
		st.Phase = DeletionDeleting
		st.Remaining = 0
	})
	go a.perform()
}

func (a *AccountDeletion) perform() {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()

	ctx := context.Background()
	err := a.deps.API.DeleteAccount(ctx)
	switch {
	case client.IsUnauthorized(err):
		a.mu.Lock()
		a.timer = nil
		a.state = DeletionState{}
		a.mu.Unlock()
		a.deps.changed()
		a.deps.expire()
	case err != nil:
		msg := "Unable to delete account. Please try again."
		if vErr, ok := client.AsValidation(err); ok {
			if m := vErr.Fields["password"]; m != "" {
				msg = m
			}
		}
		a.mu.Lock()
		a.timer = nil
		a.state = DeletionState{Err: msg}
		a.mu.Unlock()
		a.deps.changed()
	default:
		a.set(func(st *DeletionState) { st.Phase = DeletionDone })
		if a.deps.Session != nil {
			a.deps.Session.Logout(ctx)
		}
	}
	done <- err
}
