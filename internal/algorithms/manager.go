package algorithms

import (
	"fmt"
	"sort"
	"sync"

	"texture-extractor/internal/processing/texture"
)

type Manager struct {
	algorithms       map[string]Algorithm
	currentAlgorithm string
	parameters       map[string]map[string]interface{}
	mu               sync.RWMutex
}

func NewManager() *Manager {
	manager := &Manager{
		algorithms:       make(map[string]Algorithm),
		currentAlgorithm: string(texture.ModeLBP),
		parameters:       make(map[string]map[string]interface{}),
	}

	manager.registerAlgorithms()
	manager.initializeDefaultParameters()

	return manager
}

func (m *Manager) registerAlgorithms() {
	for _, alg := range []Algorithm{
		NewCoarsenessProcessor(),
		NewContrastProcessor(),
		NewDirectionalityProcessor(),
		NewLBPProcessor(),
		NewInvariantProcessor(),
		NewTamuraProcessor(),
		NewFilterProcessor(),
	} {
		m.algorithms[alg.GetName()] = alg
	}
}

func (m *Manager) initializeDefaultParameters() {
	for name, algorithm := range m.algorithms {
		m.parameters[name] = algorithm.GetDefaultParameters()
	}
}

func (m *Manager) SetCurrentAlgorithm(algorithm string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.algorithms[algorithm]; !exists {
		return fmt.Errorf("unknown algorithm: %s", algorithm)
	}

	m.currentAlgorithm = algorithm
	return nil
}

func (m *Manager) GetCurrentAlgorithm() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentAlgorithm
}

func (m *Manager) GetParameters(algorithm string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if params, exists := m.parameters[algorithm]; exists {
		return copyParams(params)
	}

	return make(map[string]interface{})
}

// SetParameter stores value for name after checking that the algorithm
// accepts the resulting parameter set.
func (m *Manager) SetParameter(algorithm, name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	params, exists := m.parameters[algorithm]
	if !exists {
		return fmt.Errorf("unknown algorithm: %s", algorithm)
	}

	candidate := copyParams(params)
	candidate[name] = value
	if err := m.algorithms[algorithm].ValidateParameters(candidate); err != nil {
		return err
	}

	params[name] = value
	return nil
}

func (m *Manager) GetAlgorithm(name string) (Algorithm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if algorithm, exists := m.algorithms[name]; exists {
		return algorithm, nil
	}

	return nil, fmt.Errorf("unknown algorithm: %s", name)
}

// GetAvailableAlgorithms returns the registered names in sorted order.
func (m *Manager) GetAvailableAlgorithms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	algorithms := make([]string, 0, len(m.algorithms))
	for name := range m.algorithms {
		algorithms = append(algorithms, name)
	}
	sort.Strings(algorithms)

	return algorithms
}
