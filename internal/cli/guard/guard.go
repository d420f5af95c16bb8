// Package guard decides whether a protected surface may render. The decision
// never flashes protected content while the session is still being checked.
package guard

import (
	"sync"

	"github.com/socivio/socivio/internal/cli/session"
)

// LoginPath is where unauthenticated visitors are sent
const LoginPath = "/login"

// Action is what the caller should do with a protected surface
type Action int

const (
	// ShowLoading renders a neutral loading indicator, never protected content
	ShowLoading Action = iota
	// Redirect sends the visitor to Decision.Target
	Redirect
	// Render shows the protected content
	Render
)

func (a Action) String() string {
	switch a {
	case ShowLoading:
		return "show_loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one session snapshot
type Decision struct {
	Action Action
	Target string
}

// Evaluate maps a session snapshot to a decision. Pure: same snapshot, same
// decision. Loading always wins, so protected content cannot appear before
// the session check settles.
func Evaluate(snap session.Snapshot) Decision {
	if snap.Loading {
		return Decision{Action: ShowLoading}
	}
	if !snap.Authenticated() {
		return Decision{Action: Redirect, Target: LoginPath}
	}
	return Decision{Action: Render}
}

// State is the guard's lifecycle phase
type State int

const (
	// Checking means the session has not settled yet
	Checking State = iota
	// Redirecting means the visitor was sent to the login path
	Redirecting
	// Authorized means protected content was shown
	Authorized
)

func (s State) String() string {
	switch s {
	case Checking:
		return "checking"
	case Redirecting:
		return "redirecting"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Guard latches the first terminal decision it observes. Once it has
// redirected or authorized, later snapshots for the same visit are ignored:
// the visitor already left or is already looking at the content.
type Guard struct {
	mu       sync.Mutex
	state    State
	redirect func(target string)
}

// New creates a guard in the Checking state. redirect is invoked at most once.
func New(redirect func(target string)) *Guard {
	return &Guard{redirect: redirect}
}

// State returns the current lifecycle phase
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Observe feeds one session snapshot through the guard and returns the
// decision the caller should act on. After the guard latches, Observe keeps
// returning the latched decision without calling redirect again.
func (g *Guard) Observe(snap session.Snapshot) Decision {
	g.mu.Lock()

	switch g.state {
	case Redirecting:
		g.mu.Unlock()
		return Decision{Action: Redirect, Target: LoginPath}
	case Authorized:
		g.mu.Unlock()
		return Decision{Action: Render}
	}

	decision := Evaluate(snap)
	switch decision.Action {
	case Redirect:
		g.state = Redirecting
		redirect := g.redirect
		g.mu.Unlock()
		if redirect != nil {
			redirect(decision.Target)
		}
	case Render:
		g.state = Authorized
		g.mu.Unlock()
	default:
		g.mu.Unlock()
	}

	return decision
}
