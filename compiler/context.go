package compiler

import (
	"fmt"
	"io"

	"github.com/arc-language/core-builder/builder"
	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
	"github.com/arc-language/lisp-compiler/diagnostics"
	"github.com/arc-language/lisp-compiler/env"
	"github.com/google/uuid"
)

// Options tunes a compilation context.
type Options struct {
	LogLevel     LogLevel
	LogOutput    io.Writer // debug/info; stdout when nil
	LogErrOutput io.Writer // warnings/errors; stderr when nil
	TraceSymbols []string  // glob patterns of names whose resolution is logged
}

// Context holds the state of one compilation unit. It is not safe for
// concurrent use; parallel units each get their own Context.
type Context struct {
	ID          string
	ModuleName  string
	Builder     *builder.Builder
	Module      *ir.Module
	Diagnostics *diagnostics.DiagnosticEngine
	Types       *RuntimeTypes

	logger   *Logger
	resolver *Resolver

	// Current compilation scope
	currentFunction *ir.Function
	currentBlock    *ir.BasicBlock

	// Storage slot tables
	globalScope  *Scope
	currentScope *Scope

	// Interpreter-level bindings, one frame per scope
	bindings     *env.Arena[ir.Value]
	currentFrame env.Frame
	argFrame     env.Frame

	constants map[string]ir.Value
}

// NewContext creates a new compilation context
func NewContext(moduleName string, opts Options) (*Context, error) {
	b := builder.New()
	mod := b.CreateModule(moduleName)

	id := uuid.NewString()
	logger := NewLogger(fmt.Sprintf("[lispc:%s:%s]", moduleName, id[:8]))
	logger.SetLevel(opts.LogLevel)
	if opts.LogOutput != nil || opts.LogErrOutput != nil {
		out, errOut := opts.LogOutput, opts.LogErrOutput
		if out == nil {
			out = io.Discard
		}
		if errOut == nil {
			errOut = out
		}
		logger.SetOutput(out, errOut)
	}

	bindings := env.NewArena[ir.Value]()

	ctx := &Context{
		ID:           id,
		ModuleName:   moduleName,
		Builder:      b,
		Module:       mod,
		Diagnostics:  diagnostics.NewDiagnosticEngine(),
		Types:        NewRuntimeTypes(mod),
		logger:       logger,
		globalScope:  NewScope(nil),
		bindings:     bindings,
		currentFrame: bindings.Root(),
		argFrame:     bindings.Root(),
		constants:    make(map[string]ir.Value),
	}
	ctx.currentScope = ctx.globalScope

	ctx.resolver = NewResolver(ctx, ctx, ctx, ctx.Types, logger)
	if err := ctx.resolver.SetTrace(opts.TraceSymbols); err != nil {
		return nil, err
	}

	logger.Debug("Created compilation context for module '%s'", moduleName)
	return ctx, nil
}

// Logger returns the context's logger
func (c *Context) Logger() *Logger {
	return c.logger
}

// Resolver returns the resolver bound to this context's tables
func (c *Context) Resolver() *Resolver {
	return c.resolver
}

// LookupGlobalConstant returns the initializer of a declared global constant.
func (c *Context) LookupGlobalConstant(name string) (ir.Value, bool) {
	val, ok := c.constants[name]
	return val, ok
}

// LookupGlobalCallable returns a function declared in the module.
func (c *Context) LookupGlobalCallable(name string) (*ir.Function, bool) {
	fn := c.Module.GetFunction(name)
	return fn, fn != nil
}

// LoadTyped emits a load into the current block. Outside a function the
// builder's insert point is stale, so a load there is a bug.
func (c *Context) LoadTyped(addr ir.Value, shape types.Type, name string) ir.Value {
	if c.currentBlock == nil {
		panic(fmt.Sprintf("compiler: load of '%s' outside a function", name))
	}
	return c.Builder.CreateLoad(shape, addr, name)
}

// CurrentScope returns the innermost storage slot scope
func (c *Context) CurrentScope() *Scope {
	return c.currentScope
}

// CurrentFunction returns the function being compiled, nil at top level
func (c *Context) CurrentFunction() *ir.Function {
	return c.currentFunction
}

// PushScope creates a new nested scope
func (c *Context) PushScope() {
	c.currentScope = NewScope(c.currentScope)
	c.currentFrame = c.bindings.Extend(c.currentFrame)
}

// PopScope returns to the parent scope
func (c *Context) PopScope() {
	if c.currentScope.parent != nil {
		c.currentScope = c.currentScope.parent
	}
	if parent, ok := c.bindings.Parent(c.currentFrame); ok {
		c.currentFrame = parent
	}
}

// Bind records an interpreter-level binding in the current scope.
func (c *Context) Bind(name string, val ir.Value) {
	c.bindings.Bind(c.currentFrame, name, val)
}

// Binding looks name up through the enclosing interpreter-level bindings.
func (c *Context) Binding(name string) (ir.Value, bool) {
	return c.bindings.Lookup(c.currentFrame, name)
}

// SetInsertBlock sets the current basic block for instruction insertion
func (c *Context) SetInsertBlock(block *ir.BasicBlock) {
	c.currentBlock = block
	c.Builder.SetInsertPoint(block)
}

// ResolveSymbol resolves an identifier reference against the current
// scope. Failures are recorded as diagnostics and returned.
func (c *Context) ResolveSymbol(name string) (ir.Value, error) {
	val, err := c.resolver.Resolve(name, c.currentScope)
	if err != nil {
		c.logger.Error("%v", err)
		c.Diagnostics.ErrorCode(diagnostics.CodeUndefinedSymbol, err.Error())
		return nil, err
	}
	return val, nil
}

// ResolveSymbolAt is ResolveSymbol with a source position for diagnostics.
func (c *Context) ResolveSymbolAt(file string, line, column int, name string) (ir.Value, error) {
	val, err := c.resolver.Resolve(name, c.currentScope)
	if err != nil {
		c.logger.ErrorAt(file, line, column, "%v", err)
		c.Diagnostics.ErrorCodeAt(diagnostics.CodeUndefinedSymbol, file, line, column, err.Error())
		return nil, err
	}
	return val, nil
}
