package ability

import (
	"log/slog"

	"github.com/casetrail/ability/plugin"
	"github.com/casetrail/ability/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithEvaluator sets the rule evaluator.
func WithEvaluator(ev Evaluator) Option { return func(e *Engine) { e.evaluator = ev } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPlugin registers a plugin with the engine. Plugins are collected
// and registered after all options run, so the registry sees the
// configured logger regardless of option order.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) { e.pendingPlugins = append(e.pendingPlugins, x) }
}
