package compiler

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
)

// Compiler drives one compilation unit: it owns the context and reports
// the outcome once code generation is done.
type Compiler struct {
	context *Context
	logger  *Logger
}

// NewCompiler creates a new compiler instance
func NewCompiler(moduleName string, opts Options) (*Compiler, error) {
	ctx, err := NewContext(moduleName, opts)
	if err != nil {
		return nil, err
	}
	ctx.logger.Info("Creating compiler for module '%s'", moduleName)

	return &Compiler{
		context: ctx,
		logger:  ctx.logger,
	}, nil
}

// Finish checks the unit for errors and returns the module. Any error
// diagnostic fails the whole unit.
func (c *Compiler) Finish() (*ir.Module, error) {
	diags := c.context.Diagnostics
	if diags.HasErrors() {
		c.logger.PrintSummary()
		return nil, fmt.Errorf("compilation failed with %d error(s)", diags.ErrorCount())
	}

	if diags.WarningCount() > 0 {
		c.logger.PrintSummary()
	}

	c.logger.Info("Successfully compiled module '%s'", c.context.ModuleName)
	return c.context.Module, nil
}

// GetModule returns the compiled module
func (c *Compiler) GetModule() *ir.Module {
	return c.context.Module
}

// GetContext returns the compilation context
func (c *Compiler) GetContext() *Context {
	return c.context
}
