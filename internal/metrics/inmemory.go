package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginsSucceeded uint64
	LoginsFailed    uint64
	QuotaAllowed    uint64
	QuotaDenied     uint64
	TasksCreated    uint64
	TasksUpdated    uint64
	TasksDeleted    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	loginsSucceeded uint64
	loginsFailed    uint64
	quotaAllowed    uint64
	quotaDenied     uint64
	tasksCreated    uint64
	tasksUpdated    uint64
	tasksDeleted    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded: atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:    atomic.LoadUint64(&m.loginsFailed),
		QuotaAllowed:    atomic.LoadUint64(&m.quotaAllowed),
		QuotaDenied:     atomic.LoadUint64(&m.quotaDenied),
		TasksCreated:    atomic.LoadUint64(&m.tasksCreated),
		TasksUpdated:    atomic.LoadUint64(&m.tasksUpdated),
		TasksDeleted:    atomic.LoadUint64(&m.tasksDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSucceeded increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSucceeded() {
	atomic.AddUint64(&m.loginsSucceeded, 1)
}

// IncLoginFailed increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncQuotaAllowed increments the allowed gated call counter.
func (m *InMemoryRecorder) IncQuotaAllowed() {
	atomic.AddUint64(&m.quotaAllowed, 1)
}

// IncQuotaDenied increments the denied gated call counter.
func (m *InMemoryRecorder) IncQuotaDenied() {
	atomic.AddUint64(&m.quotaDenied, 1)
}

// IncTaskCreated increments the task created counter.
func (m *InMemoryRecorder) IncTaskCreated() {
	atomic.AddUint64(&m.tasksCreated, 1)
}

// IncTaskUpdated increments the task updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() {
	atomic.AddUint64(&m.tasksUpdated, 1)
}

// IncTaskDeleted increments the task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() {
	atomic.AddUint64(&m.tasksDeleted, 1)
}
