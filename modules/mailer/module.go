// Package mailer is the mail-client feature module. Protocol handling is a
// placeholder; authentication and sends route through the dispatcher.
package mailer

import (
	"context"
	"fmt"

	"github.com/vk/modgridgo/internal/dispatch"
	"github.com/vk/modgridgo/internal/registry"
)

// Service is the mailer module instance.
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

// Login authenticates the mail session and returns a token.
func (s *Service) Login(ctx context.Context, user string) (string, error) {
	result, err := s.dispatcher.Call(ctx, "login", user)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}

// Send delivers a message and returns its id.
func (s *Service) Send(ctx context.Context, to, subject string) (string, error) {
	result, err := s.dispatcher.Call(ctx, "sendMail", to, subject)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}

// Module registers the mailer factory with the registry.
type Module struct{}

// Register implements registry.Registrar.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory("mailer", func(deps registry.Deps) registry.Module {
		return New(deps)
	})
}
