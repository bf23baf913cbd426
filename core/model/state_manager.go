package model

import (
	"sync"

	"github.com/YuminosukeSato/gaussproc/pkg/errors"
)

// StateManager holds an estimator's trained state in a thread-safe manner.
// A nil state means the estimator is unfitted; a non-nil one is the fitted
// variant. Store replaces the state wholesale, so readers never observe a
// partially trained model.
type StateManager[T any] struct {
	mu    sync.RWMutex
	state *T

	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager in the unfitted state.
func NewStateManager[T any]() *StateManager[T] {
	return &StateManager[T]{}
}

// IsFitted returns whether a trained state is held.
func (s *StateManager[T]) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != nil
}

// Load returns the current state, or nil when unfitted. The returned value
// must be treated as read-only.
func (s *StateManager[T]) Load() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Store installs a trained state together with the training dimensions.
func (s *StateManager[T]) Store(state *T, nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset returns to the unfitted state.
func (s *StateManager[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	s.nFeatures = 0
	s.nSamples = 0
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager[T]) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns the state, or a NotFittedError naming the model and
// the method that needed it.
func (s *StateManager[T]) RequireFitted(modelName, method string) (*T, error) {
	st := s.Load()
	if st == nil {
		return nil, errors.NewNotFittedError(modelName, method)
	}
	return st, nil
}

// Replace runs build with the write lock held and installs its result. If
// build fails or panics the manager is left unfitted; the previous state is
// never kept alongside a failed retrain.
func (s *StateManager[T]) Replace(op string, build func() (state *T, nFeatures, nSamples int, err error)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state, s.nFeatures, s.nSamples = nil, 0, 0
	defer errors.Recover(&err, op)

	st, nf, ns, err := build()
	if err != nil {
		return err
	}
	s.state, s.nFeatures, s.nSamples = st, nf, ns
	return nil
}

// ModelState is a serialisable summary of an estimator, used for debugging
// and GetParams-style introspection.
type ModelState struct {
	Fitted    bool                   `json:"fitted"`
	NFeatures int                    `json:"n_features,omitempty"`
	NSamples  int                    `json:"n_samples,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// GetState returns the current summary.
func (s *StateManager[T]) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:    s.state != nil,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}
