// Package textgen is the text-generation feature module. Its domain logic
// is a thin placeholder; the interesting part is that generation routes
// through the dispatcher so a portable-bytecode unit can take over the hot
// path when one is available.
package textgen

import (
	"context"
	"fmt"

	"github.com/vk/modgridgo/internal/dispatch"
	"github.com/vk/modgridgo/internal/registry"
)

// Service is the textgen module instance.
type Service struct {
	dispatcher  *dispatch.Dispatcher
	initialized bool
}

// New constructs the module.
func New(deps registry.Deps) *Service {
	return &Service{dispatcher: deps.Dispatcher}
}

// Init implements the module contract.
func (s *Service) Init(ctx context.Context) error {
	s.initialized = true
	return nil
}

// Destroy implements the module contract.
func (s *Service) Destroy(ctx context.Context) error {
	s.initialized = false
	return nil
}

// IsInitialized reports the module's init state.
func (s *Service) IsInitialized() bool {
	return s.initialized
}

// Generate produces text for a prompt via the dispatcher.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := s.dispatcher.Call(ctx, "generateText", prompt)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}

// Module registers the textgen factory with the registry.
type Module struct{}

// Register implements registry.Registrar.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("textgen", func(deps registry.Deps) registry.Module {
		return New(deps)
	})
}
