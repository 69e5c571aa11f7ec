// Package guard decides whether a protected screen may be shown.
//
// Resolution is a pure reduction from (previous state, input) to the next
// state plus the side effects to run. Effects are only produced when the
// resolved state changes, so re-evaluating an unchanged screen never repeats
// a redirect or a notification.
package guard

import (
	"sync"

	"backoffice.app/internal/auth"
)

// Fixed navigation targets.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// UnauthorizedMessage is the notice shown when a role lacks access.
const UnauthorizedMessage = "You do not have permission to access this page."

// State is the resolved guard outcome.
type State int

const (
	Checking State = iota
	DeniedUnauthenticated
	DeniedUnauthorized
	Allowed
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case DeniedUnauthenticated:
		return "denied-unauthenticated"
	case DeniedUnauthorized:
		return "denied-unauthorized"
	case Allowed:
		return "allowed"
	default:
		return "invalid"
	}
}

// Result is the view of a state consumed by screens.
type Result struct {
	IsChecking bool `json:"isChecking"`
	Allowed    bool `json:"allowed"`
}

// Result maps the state to its screen view.
func (s State) Result() Result {
	return Result{IsChecking: s == Checking, Allowed: s == Allowed}
}

// Input carries every dependency the guard re-derives from.
type Input struct {
	Loading       bool
	Authenticated bool
	Role          auth.Role
	// Required is the screen's admitted roles; empty admits any session.
	Required auth.RoleSet
}

// InputFor reads the current session from p.
func InputFor(p auth.Provider, required auth.RoleSet) Input {
	id, ok := p.Current()
	return Input{Authenticated: ok, Role: id.Role, Required: required}
}

// EffectKind tells the executor what to do.
type EffectKind int

const (
	Navigate EffectKind = iota
	Notify
)

// Effect is a side effect requested by a transition.
type Effect struct {
	Kind    EffectKind
	Target  string
	Message string
}

// Resolve derives the state for in, ignoring history.
func Resolve(in Input) State {
	switch {
	case in.Loading:
		return Checking
	case !in.Authenticated:
		return DeniedUnauthenticated
	case len(in.Required) == 0 && in.Role != auth.RoleUnknown:
		return Allowed
	case !in.Required.Contains(in.Role):
		return DeniedUnauthorized
	default:
		return Allowed
	}
}

// Reduce resolves in and returns the effects of entering the new state.
// Staying in prev yields no effects.
func Reduce(prev State, in Input) (State, []Effect) {
	next := Resolve(in)
	if next == prev {
		return next, nil
	}
	return next, effectsOf(next)
}

func effectsOf(s State) []Effect {
	switch s {
	case DeniedUnauthenticated:
		return []Effect{{Kind: Navigate, Target: LoginPath}}
	case DeniedUnauthorized:
		return []Effect{
			{Kind: Notify, Message: UnauthorizedMessage},
			{Kind: Navigate, Target: UnauthorizedPath},
		}
	default:
		return nil
	}
}

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(path string)
}

// Notifier shows a transient notice.
type Notifier interface {
	Notify(message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Guard protects one screen over its lifetime and runs effects once per
// state entry.
type Guard struct {
	mu       sync.Mutex
	state    State
	navigate Navigator
	notify   Notifier
}

// New returns a guard in the Checking state.
func New(nav Navigator, notifier Notifier) *Guard {
	return &Guard{state: Checking, navigate: nav, notify: notifier}
}

// Update re-derives the state from in and executes any resulting effects.
func (g *Guard) Update(in Input) Result {
	g.mu.Lock()
	next, effects := Reduce(g.state, in)
	g.state = next
	g.mu.Unlock()

	for _, e := range effects {
		switch e.Kind {
		case Navigate:
			if g.navigate != nil {
				g.navigate.Navigate(e.Target)
			}
		case Notify:
			if g.notify != nil {
				g.notify.Notify(e.Message)
			}
		}
	}
	return next.Result()
}

// State returns the last resolved state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
