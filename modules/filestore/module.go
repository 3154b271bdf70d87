// Package filestore is the file-storage feature module. Storage itself is
// a placeholder; saves and checksums route through the dispatcher.
package filestore

import (
	"context"
	"fmt"

	"github.com/vk/modgridgo/internal/dispatch"
	"github.com/vk/modgridgo/internal/registry"
)

// Service is the filestore module instance.
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

// Save stores a named document and returns its storage path.
func (s *Service) Save(ctx context.Context, name string) (string, error) {
	result, err := s.dispatcher.Call(ctx, "saveFile", name)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}

// Checksum computes a content digest via the dispatcher.
func (s *Service) Checksum(ctx context.Context, content string) (any, error) {
	return s.dispatcher.Call(ctx, "checksum", content)
}

// Module registers the filestore factory with the registry.
type Module struct{}

// Register implements registry.Registrar.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("filestore", func(deps registry.Deps) registry.Module {
		return New(deps)
	})
}
