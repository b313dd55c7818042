// Package extension provides a Forge extension entry point for the ability
// authorization engine.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/casetrail/ability"
	"github.com/casetrail/ability/api"
	"github.com/casetrail/ability/plugin"
	"github.com/casetrail/ability/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "ability"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Multi-tenant authorization engine (roles, group memberships, ordered grants)"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the ability engine as a Forge extension.
type Extension struct {
	config     Config
	eng        *ability.Engine
	guard      *ability.Guard
	apiHandler *api.API
	logger     *slog.Logger
	engineOpts []ability.Option
	plugins    []plugin.Plugin
}

// New creates an ability Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying ability engine.
func (e *Extension) Engine() *ability.Engine { return e.eng }

// Guard returns the enforcement guard over the engine.
func (e *Extension) Guard() *ability.Guard { return e.guard }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	if err := vessel.Provide(fapp.Container(), func() (*ability.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("ability: register engine in container: %w", err)
	}

	if err := vessel.Provide(fapp.Container(), func() (*ability.Guard, error) {
		return e.guard, nil
	}); err != nil {
		return fmt.Errorf("ability: register guard in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := make([]ability.Option, 0, len(e.engineOpts)+len(e.plugins)+2)
	opts = append(opts, ability.WithLogger(logger))
	opts = append(opts, ability.WithConfig(ability.Config{
		LogDecisions:   e.config.LogDecisions,
		LogDenialsOnly: e.config.LogDenialsOnly,
	}))

	// Try to resolve store from DI container, fall back to option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, ability.WithStore(s))
	}

	// Append user-provided options (may override store).
	opts = append(opts, e.engineOpts...)

	for _, x := range e.plugins {
		opts = append(opts, ability.WithPlugin(x))
	}

	eng, err := ability.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("ability: create engine: %w", err)
	}
	e.eng = eng
	e.guard = ability.NewGuard(eng)

	e.apiHandler = api.New(eng, fapp.Router())

	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("ability: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("ability: extension not initialized")
	}

	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("ability: migration failed: %w", err)
			}
		}
	}

	return e.eng.Start(ctx)
}

// Stop gracefully shuts down the engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("ability: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		return errors.New("ability: no store configured")
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all ability API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
