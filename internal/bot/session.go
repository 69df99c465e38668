package bot

import (
	"sync"

	"github.com/looplab/fsm"

	"github.com/shortrest/tavernbot/internal/models"
)

// Intent names the multi-step flow a user is currently in.
type Intent string

const (
	IntentCreatePoll  Intent = "create-poll"
	IntentSendPoll    Intent = "send-poll"
	IntentDeletePoll  Intent = "delete-poll"
	IntentInspectPoll Intent = "inspect-poll"
	IntentPurgeAdmins Intent = "purge-admins"
)

// Session is the per-user state of one active flow. A user has at most one;
// starting a second flow is rejected until the first completes or is
// cancelled.
type Session struct {
	Intent     Intent
	OriginChat int64 // group chat the flow was initiated from

	// create flow only
	Machine *fsm.FSM
	Draft   models.Poll

	// delete flow only: the poll picked, pending confirmation
	Picked string
}

type sessionTracker struct {
	mu     sync.Mutex
	active map[int64]*Session
}

func newSessionTracker() *sessionTracker {
	return &sessionTracker{active: make(map[int64]*Session)}
}

func (t *sessionTracker) get(userID int64) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.active[userID]
}

// start registers a session for the user. It reports false without replacing
// anything if the user already has one.
func (t *sessionTracker) start(userID int64, s *Session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[userID]; ok {
		return false
	}
	t.active[userID] = s
	return true
}

func (t *sessionTracker) clear(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.active, userID)
}
