package compiler

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// Param is a named function parameter and the category of the slot it is
// spilled into.
type Param struct {
	Name     string
	Category Category
}

// BodyFunc emits a function body. The returned value, when not nil, is
// returned from the function if the body left the block open.
type BodyFunc func(c *Context) (ir.Value, error)

// DeclareGlobalConstant declares a numeric constant at module scope.
func (c *Context) DeclareGlobalConstant(name string, value float64) error {
	if err := c.checkGlobalName(name); err != nil {
		return err
	}

	initVal := c.Builder.ConstFloat(types.F64, value)
	c.Builder.CreateGlobalConstant(name, initVal)
	c.constants[name] = initVal

	c.logger.Debug("Declared global constant '%s' = %g", name, value)
	return nil
}

// DeclareExtern declares a callable implemented outside the module.
func (c *Context) DeclareExtern(name string, params []Category, result Category) (*ir.Function, error) {
	if c.currentFunction != nil {
		return nil, fmt.Errorf("extern '%s' declared inside '%s'", name, c.currentFunction.Name())
	}
	if err := c.checkGlobalName(name); err != nil {
		return nil, err
	}
	paramTypes, err := c.shapesOf(params)
	if err != nil {
		return nil, fmt.Errorf("extern '%s': %w", name, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("extern '%s': invalid result category %v", name, result)
	}

	fn := c.Builder.DeclareFunction(name, c.Types.Shape(result), paramTypes, false)
	c.logger.Debug("Declared extern function '%s' (%d params)", name, len(params))
	return fn, nil
}

// DeclareFunction creates a function at module scope and compiles its
// body. Function bodies do not nest; closures must be lifted before they
// reach the context.
func (c *Context) DeclareFunction(name string, params []Param, result Category, body BodyFunc) (*ir.Function, error) {
	if c.currentFunction != nil {
		return nil, fmt.Errorf("function '%s' declared inside '%s'", name, c.currentFunction.Name())
	}
	if err := c.checkGlobalName(name); err != nil {
		return nil, err
	}
	if !result.Valid() {
		return nil, fmt.Errorf("function '%s': invalid result category %v", name, result)
	}

	seen := make(map[string]bool, len(params))
	categories := make([]Category, len(params))
	for i, p := range params {
		if seen[p.Name] {
			return nil, fmt.Errorf("function '%s': duplicate parameter '%s'", name, p.Name)
		}
		seen[p.Name] = true
		categories[i] = p.Category
	}
	paramTypes, err := c.shapesOf(categories)
	if err != nil {
		return nil, fmt.Errorf("function '%s': %w", name, err)
	}

	retType := c.Types.Shape(result)
	fn := c.Builder.CreateFunction(name, retType, paramTypes, false)
	for i, p := range params {
		fn.Arguments[i].SetName(p.Name)
	}

	if err := c.EnterFunction(fn, params); err != nil {
		return nil, err
	}
	defer c.ExitFunction()

	var ret ir.Value
	if body != nil {
		ret, err = body(c)
		if err != nil {
			// Undefined symbols are already recorded by ResolveSymbol.
			if _, ok := IsUndefinedSymbol(err); !ok {
				c.logger.Error("Function '%s': %v", name, err)
				c.Diagnostics.Error(fmt.Sprintf("function '%s': %v", name, err))
			}
			return fn, err
		}
	}

	if c.Builder.GetInsertBlock().Terminator() == nil {
		if ret == nil {
			ret = c.zeroValue(result)
		}
		c.Builder.CreateRet(ret)
	}

	c.logger.Debug("Compiled function '%s'", name)
	return fn, nil
}

// EnterFunction sets up context for compiling a function: a new scope, an
// entry block, the raw arguments as bindings and one slot per parameter.
// params must name every argument of fn.
func (c *Context) EnterFunction(fn *ir.Function, params []Param) error {
	if c.currentFunction != nil {
		return fmt.Errorf("function '%s' entered inside '%s'", fn.Name(), c.currentFunction.Name())
	}
	if len(params) != len(fn.Arguments) {
		return fmt.Errorf("function '%s' has %d arguments but %d params", fn.Name(), len(fn.Arguments), len(params))
	}

	c.currentFunction = fn
	c.PushScope()

	entry := c.Builder.CreateBlock("entry")
	c.SetInsertBlock(entry)

	// The argument frame is reused by every function of the unit.
	c.bindings.Clear(c.argFrame)
	for i, arg := range fn.Arguments {
		c.bindings.Bind(c.argFrame, params[i].Name, arg)
	}
	c.bindings.Merge(c.currentFrame, c.argFrame)

	for _, p := range params {
		arg, _ := c.bindings.LookupLocal(c.currentFrame, p.Name)
		alloca := c.Builder.CreateAlloca(arg.Type(), p.Name+".addr")
		c.Builder.CreateStore(arg, alloca)
		c.currentScope.Declare(p.Name, alloca, p.Category)
	}
	c.logger.Debug("Entered function '%s' with bindings %v", fn.Name(), c.bindings.Names(c.currentFrame))
	return nil
}

// ExitFunction cleans up after compiling a function
func (c *Context) ExitFunction() {
	c.currentFunction = nil
	c.currentBlock = nil
	c.PopScope()
}

// DeclareLocal allocates a slot of the category's shape in the current
// function and registers it in the current scope. initial may be nil.
func (c *Context) DeclareLocal(name string, category Category, initial ir.Value) (*Slot, error) {
	if c.currentFunction == nil {
		return nil, fmt.Errorf("local '%s' declared outside a function", name)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("local '%s': invalid category %v", name, category)
	}

	if prev, ok := c.currentScope.LookupLocal(name); ok {
		c.logger.Warning("Local '%s' redeclared in the same scope (was %s)", name, prev.Category)
		c.Diagnostics.Warning(fmt.Sprintf("local '%s' redeclared in the same scope", name))
	}

	alloca := c.Builder.CreateAlloca(c.Types.Shape(category), name+".addr")
	if initial != nil {
		c.Builder.CreateStore(initial, alloca)
	}

	c.logger.Debug("Declared %s local '%s' at depth %d", category, name, c.currentScope.Depth())
	return c.currentScope.Declare(name, alloca, category), nil
}

// DeclareSlot registers an existing address as a slot in the current scope.
// Slots only exist inside a function, where loads have a block to go to.
func (c *Context) DeclareSlot(name string, addr ir.Value, category Category) (*Slot, error) {
	if c.currentFunction == nil {
		return nil, fmt.Errorf("slot '%s' declared outside a function", name)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("slot '%s': invalid category %v", name, category)
	}
	return c.currentScope.Declare(name, addr, category), nil
}

func (c *Context) checkGlobalName(name string) error {
	if name == "" {
		return fmt.Errorf("empty global name")
	}
	if _, ok := c.constants[name]; ok {
		return fmt.Errorf("'%s' is already declared as a global constant", name)
	}
	if c.Module.GetFunction(name) != nil {
		return fmt.Errorf("'%s' is already declared as a function", name)
	}
	return nil
}

func (c *Context) shapesOf(categories []Category) ([]types.Type, error) {
	out := make([]types.Type, 0, len(categories))
	for i, cat := range categories {
		if !cat.Valid() {
			return nil, fmt.Errorf("parameter %d has invalid category %v", i, cat)
		}
		out = append(out, c.Types.Shape(cat))
	}
	return out, nil
}

func (c *Context) zeroValue(category Category) ir.Value {
	if category == Number {
		return c.Builder.ConstFloat(types.F64, 0)
	}
	ptr, _ := c.Types.Shape(category).(*types.PointerType)
	return c.Builder.ConstNull(ptr)
}
