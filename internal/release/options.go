package release

import (
	"github.com/Iron-Ham/versioner/internal/strategy"
)

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

// pipelineConfig holds optional settings for the Pipeline.
type pipelineConfig struct {
	observers []func(Phase)
	project   strategy.Strategy
	workspace strategy.Strategy
}

// WithPhaseObserver registers fn to be called on every phase transition,
// including the terminal one.
func WithPhaseObserver(fn func(Phase)) PipelineOption {
	return func(c *pipelineConfig) {
		c.observers = append(c.observers, fn)
	}
}

// WithStrategies replaces the per-project and workspace strategies. A nil
// argument keeps the default.
func WithStrategies(project, workspace strategy.Strategy) PipelineOption {
	return func(c *pipelineConfig) {
		if project != nil {
			c.project = project
		}
		if workspace != nil {
			c.workspace = workspace
		}
	}
}
