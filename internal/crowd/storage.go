package crowd

import (
	"context"
	"sync"

	"github.com/RESPONDR/respondr/internal/models"
)

// Repository defines the persistence contract for per-location crowd state.
type Repository interface {
	// Get retrieves a location's state, or nil when unregistered.
	Get(ctx context.Context, locationID string) (*models.CrowdLocationState, error)

	// Save stores the full state for a location, inserting or replacing.
	Save(ctx context.Context, state *models.CrowdLocationState) error

	// List returns state for every registered location.
	List(ctx context.Context) ([]models.CrowdLocationState, error)
}

// MemoryRepository implements Repository with a guarded in-process map.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[string]*models.CrowdLocationState
}

// NewMemoryRepository creates an empty in-memory crowd state store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{states: make(map[string]*models.CrowdLocationState)}
}

// Get retrieves a deep-enough copy of a location's state, or nil.
func (r *MemoryRepository) Get(ctx context.Context, locationID string) (*models.CrowdLocationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[locationID]
	if !ok {
		return nil, nil
	}
	return copyState(state), nil
}

// Save stores the state, replacing any previous version.
func (r *MemoryRepository) Save(ctx context.Context, state *models.CrowdLocationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.LocationID] = copyState(state)
	return nil
}

// List returns all registered locations.
func (r *MemoryRepository) List(ctx context.Context) ([]models.CrowdLocationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]models.CrowdLocationState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, *copyState(state))
	}
	return states, nil
}

// copyState clones state so callers never share the stored slices.
func copyState(state *models.CrowdLocationState) *models.CrowdLocationState {
	copied := *state
	copied.RollingHistory = append([]int(nil), state.RollingHistory...)
	copied.Alerts = append([]models.CrowdAlert(nil), state.Alerts...)
	if state.Location != nil {
		loc := *state.Location
		copied.Location = &loc
	}
	return &copied
}
