package ports

import (
	"sort"
	"sync"

	"github.com/jsamuelsen/postage-service/internal/domain"
)

// ModuleRegistry is the lookup table of delivery modules known to the
// service. It is filled at startup.
type ModuleRegistry interface {
	// Register adds module. Returns domain.ErrConflict if its code is taken.
	Register(module DeliveryModule) error

	// Get returns the module registered under code.
	// Returns domain.ErrNotFound if there is none.
	Get(code string) (DeliveryModule, error)

	// All returns every module ordered by code.
	All() []DeliveryModule
}

// DefaultModuleRegistry is a thread-safe, map backed ModuleRegistry.
type DefaultModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string]DeliveryModule
}

// NewModuleRegistry creates an empty registry.
func NewModuleRegistry() *DefaultModuleRegistry {
	return &DefaultModuleRegistry{modules: make(map[string]DeliveryModule)}
}

// Register adds module to the registry.
func (r *DefaultModuleRegistry) Register(module DeliveryModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := module.Code()
	if _, ok := r.modules[code]; ok {
		return domain.NewConflictError("delivery module", code+" is already registered")
	}

	r.modules[code] = module

	return nil
}

// Get returns the module registered under code.
func (r *DefaultModuleRegistry) Get(code string) (DeliveryModule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	module, ok := r.modules[code]
	if !ok {
		return nil, domain.NewNotFoundError("delivery module", code)
	}

	return module, nil
}

// All returns every registered module ordered by code.
func (r *DefaultModuleRegistry) All() []DeliveryModule {
	r.mu.RLock()
	modules := make([]DeliveryModule, 0, len(r.modules))
	for _, m := range r.modules {
		modules = append(modules, m)
	}
	r.mu.RUnlock()

	sort.Slice(modules, func(i, j int) bool { return modules[i].Code() < modules[j].Code() })

	return modules
}
