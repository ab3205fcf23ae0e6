package agent

import "sync"

// Ledger is the process-wide task accounting described in spec §3: a
// set of in-flight signatures per kind (dedup), lifetime accepted
// counts per tenant and per kind (Push only), and currently-running
// counts per tenant (Push only).
//
// Two locks, per the shared-resource policy: mu covers pending,
// totalByUser and totalByKind; runningMu covers runningByUser alone, so
// the push scheduler's critical section touching running counts stays
// short. A caller reads totals under mu, releases it, then updates
// runningByUser under runningMu — the two snapshots can disagree for a
// brief window. That race is inherent to the source design and is left
// in place.
type Ledger struct {
	mu          sync.Mutex
	pending     map[TaskKind]map[int64]struct{}
	totalByUser map[TaskKind]map[string]uint64
	totalByKind map[TaskKind]uint64

	runningMu     sync.Mutex
	runningByUser map[TaskKind]map[string]uint64
}

// NewLedger returns an empty ledger. Pools receive one injected at
// construction rather than reaching for a package-level singleton, per
// spec.md §9 design notes.
func NewLedger() *Ledger {
	return &Ledger{
		pending:       make(map[TaskKind]map[int64]struct{}),
		totalByUser:   make(map[TaskKind]map[string]uint64),
		totalByKind:   make(map[TaskKind]uint64),
		runningByUser: make(map[TaskKind]map[string]uint64),
	}
}

// Submit records (kind, signature) as pending and returns true if it
// was newly inserted. A false return means the submission is a
// duplicate and must not be enqueued. For Push, also bumps the
// lifetime accepted counters.
func (l *Ledger) Submit(kind TaskKind, signature int64, user string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	set, ok := l.pending[kind]
	if !ok {
		set = make(map[int64]struct{})
		l.pending[kind] = set
	}
	if _, dup := set[signature]; dup {
		return false
	}
	set[signature] = struct{}{}

	if kind == TaskPush {
		users, ok := l.totalByUser[kind]
		if !ok {
			users = make(map[string]uint64)
			l.totalByUser[kind] = users
		}
		users[user]++
		l.totalByKind[kind]++
	}
	return true
}

// Remove erases (kind, signature) from pending and, for Push,
// decrements the accepted and running counters. Counters clamp at
// zero: a spurious remove for a signature the ledger never accepted
// must not underflow the unsigned counters (spec.md §9 open question).
func (l *Ledger) Remove(kind TaskKind, signature int64, user string) {
	l.mu.Lock()
	if set, ok := l.pending[kind]; ok {
		delete(set, signature)
	}
	if kind == TaskPush {
		clampDecrement(l.totalByUser[kind], user)
		if l.totalByKind[kind] > 0 {
			l.totalByKind[kind]--
		}
	}
	l.mu.Unlock()

	if kind == TaskPush {
		l.runningMu.Lock()
		clampDecrement(l.runningByUser[kind], user)
		l.runningMu.Unlock()
	}
}

func clampDecrement(m map[string]uint64, key string) {
	if m == nil {
		return
	}
	if m[key] > 0 {
		m[key]--
	}
}

// PushTotals returns (totalByUser[Push][user], totalByKind[Push]) under
// the ledger's main lock, for the fair scheduler's share computation.
func (l *Ledger) PushTotals(user string) (totalUser, totalKind uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	totalUser = l.totalByUser[TaskPush][user]
	totalKind = l.totalByKind[TaskPush]
	return
}

// IncRunning bumps runningByUser[Push][user], taken under the separate
// running-count lock per the shared-resource policy. Other kinds are
// not counted, matching Remove, which only decrements for Push.
func (l *Ledger) IncRunning(kind TaskKind, user string) {
	if kind != TaskPush {
		return
	}
	l.runningMu.Lock()
	defer l.runningMu.Unlock()
	users, ok := l.runningByUser[kind]
	if !ok {
		users = make(map[string]uint64)
		l.runningByUser[kind] = users
	}
	users[user]++
}

// Running returns runningByUser[Push][user].
func (l *Ledger) Running(kind TaskKind, user string) uint64 {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()
	return l.runningByUser[kind][user]
}

// Pending returns a snapshot of pending signatures per kind, suitable
// for the task-report loop. The snapshot is copied under the lock so
// the caller can range over it without holding the lock.
func (l *Ledger) Pending() map[TaskKind][]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[TaskKind][]int64, len(l.pending))
	for kind, set := range l.pending {
		sigs := make([]int64, 0, len(set))
		for sig := range set {
			sigs = append(sigs, sig)
		}
		out[kind] = sigs
	}
	return out
}
