package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var (
	manager     *Manager
	managerOnce sync.Once
)

// Manager manages the billing job queue lifecycle
type Manager struct {
	queue *Queue
}

// GetManager returns the singleton job queue manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{
			queue: NewQueue(2),
		}
	})
	return manager
}

// Start starts the job queue workers
func (m *Manager) Start() {
	log.Info("[JobQueue] Starting job queue manager")
	m.queue.Start()
}

// Stop stops the job queue workers
func (m *Manager) Stop() {
	log.Info("[JobQueue] Stopping job queue manager")
	m.queue.Stop()
}

// GetQueue returns the underlying queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// ScheduleAccessRevocation enqueues a revocation job that runs once the
// user's paid access window has ended.
func (m *Manager) ScheduleAccessRevocation(userID uint, notBefore time.Time) error {
	payload := AccessRevocationJobPayload{UserID: userID}
	_, err := m.queue.EnqueueJobAt(JobTypeAccessRevocation, payload.ToMap(), &notBefore)
	return err
}

// ScheduleWinbackEmail enqueues a winback email job after the given delay.
func (m *Manager) ScheduleWinbackEmail(userID uint, delay time.Duration) error {
	payload := WinbackEmailJobPayload{UserID: userID}
	notBefore := time.Now().Add(delay)
	_, err := m.queue.EnqueueJobAt(JobTypeWinbackEmail, payload.ToMap(), &notBefore)
	return err
}
