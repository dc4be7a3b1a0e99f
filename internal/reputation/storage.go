package reputation

import (
	"context"
	"sync"

	"github.com/RESPONDR/respondr/internal/models"
)

// Repository defines the persistence contract for caller reputation
// records. Update must apply the mutation atomically per caller: two
// concurrent updates to the same caller serialize, updates to different
// callers may proceed in parallel.
type Repository interface {
	// Get retrieves a caller's record, or nil when the caller has no history.
	Get(ctx context.Context, callerID string) (*models.CallerReputationRecord, error)

	// Update applies mutate to the caller's record under a per-caller
	// write lock, creating a fresh record when none exists, and returns
	// the stored result.
	Update(ctx context.Context, callerID string, mutate func(*models.CallerReputationRecord)) (*models.CallerReputationRecord, error)
}

// MemoryRepository implements Repository with a guarded in-process map.
// Used for tests and for running without a database.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*models.CallerReputationRecord
	locks   map[string]*sync.Mutex
}

// NewMemoryRepository creates an empty in-memory reputation store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*models.CallerReputationRecord),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get retrieves a copy of the caller's record, or nil when absent.
func (r *MemoryRepository) Get(ctx context.Context, callerID string) (*models.CallerReputationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[callerID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

// Update applies mutate under the caller's lock.
func (r *MemoryRepository) Update(ctx context.Context, callerID string, mutate func(*models.CallerReputationRecord)) (*models.CallerReputationRecord, error) {
	lock := r.callerLock(callerID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	record, ok := r.records[callerID]
	r.mu.RUnlock()

	var working models.CallerReputationRecord
	if ok {
		working = *record
	} else {
		working = models.CallerReputationRecord{
			CallerID:        callerID,
			ReputationScore: models.NeutralReputation,
		}
	}

	mutate(&working)

	r.mu.Lock()
	r.records[callerID] = &working
	r.mu.Unlock()

	copied := working
	return &copied, nil
}

// callerLock returns the mutex dedicated to one caller, creating it on
// first use.
func (r *MemoryRepository) callerLock(callerID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[callerID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[callerID] = lock
	}
	return lock
}

// Size returns the number of tracked callers.
func (r *MemoryRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
