package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
	"github.com/arc-language/lisp-compiler/diagnostics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	var logs bytes.Buffer
	ctx, err := NewContext("test", Options{LogLevel: LogLevelError, LogOutput: &logs})
	require.NoError(t, err)
	return ctx
}

func TestGlobalConstantBeatsLocalSlot(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.DeclareGlobalConstant("PI", 3.14))
	pi, ok := ctx.LookupGlobalConstant("PI")
	require.True(t, ok)

	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		_, err := c.DeclareLocal("PI", Number, nil)
		require.NoError(t, err)

		val, err := c.ResolveSymbol("PI")
		require.NoError(t, err)
		assert.Equal(t, pi, val)
		return val, nil
	})
	require.NoError(t, err)
	assert.False(t, ctx.Diagnostics.HasErrors())
}

func TestGlobalCallableResolvesToFunction(t *testing.T) {
	ctx := newTestContext(t)
	sq, err := ctx.DeclareExtern("square", []Category{Number}, Number)
	require.NoError(t, err)

	_, err = ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		_, err := c.DeclareLocal("square", List, nil)
		require.NoError(t, err)

		val, err := c.ResolveSymbol("square")
		require.NoError(t, err)
		fn, ok := val.(*ir.Function)
		require.True(t, ok, "callable resolves to the function, not a call")
		assert.Same(t, sq, fn)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestLocalSlotsLoadTheirShape(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		_, err := c.DeclareLocal("n", Number, c.Builder.ConstFloat(types.F64, 2))
		require.NoError(t, err)
		_, err = c.DeclareLocal("lst", List, nil)
		require.NoError(t, err)
		_, err = c.DeclareLocal("f1", FuncObj1, nil)
		require.NoError(t, err)
		_, err = c.DeclareLocal("f2", FuncObj2, nil)
		require.NoError(t, err)

		n, err := c.ResolveSymbol("n")
		require.NoError(t, err)
		assert.True(t, types.IsFloat(n.Type()))

		for name, elem := range map[string]types.Type{
			"lst": c.Types.Node,
			"f1":  c.Types.Func1Obj,
			"f2":  c.Types.Func2Obj,
		} {
			v, err := c.ResolveSymbol(name)
			require.NoError(t, err, name)
			ptr, ok := v.Type().(*types.PointerType)
			require.True(t, ok, name)
			assert.Equal(t, elem, ptr.ElementType, name)
		}
		return n, nil
	})
	require.NoError(t, err)
}

func TestNullAddressListSlotStillLoadsListPointer(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		shape := c.Types.Shape(List)
		var addrType types.Type = types.NewPointer(shape)
		ptrToShape, ok := addrType.(*types.PointerType)
		require.True(t, ok)
		_, err := c.DeclareSlot("lst", c.Builder.ConstNull(ptrToShape), List)
		require.NoError(t, err)

		v, err := c.ResolveSymbol("lst")
		require.NoError(t, err)
		ptr, ok := v.Type().(*types.PointerType)
		require.True(t, ok)
		assert.Equal(t, c.Types.Node, ptr.ElementType)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestUndefinedSymbolIsReported(t *testing.T) {
	ctx := newTestContext(t)

	var resolveErr error
	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		_, resolveErr = c.ResolveSymbolAt("main.lisp", 3, 7, "ghost")
		return nil, resolveErr
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, resolveErr))

	name, ok := IsUndefinedSymbol(err)
	require.True(t, ok)
	assert.Equal(t, "ghost", name)

	diags := ctx.Diagnostics.WithCode(diagnostics.CodeUndefinedSymbol)
	require.Len(t, diags, 1)
	assert.Equal(t, "main.lisp", diags[0].File)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 7, diags[0].Column)
	assert.Contains(t, diags[0].Message, "ghost")
}

func TestParametersBecomeBindingsAndSlots(t *testing.T) {
	ctx := newTestContext(t)
	params := []Param{{Name: "x", Category: Number}, {Name: "xs", Category: List}}

	fn, err := ctx.DeclareFunction("head_or", params, Number, func(c *Context) (ir.Value, error) {
		fn := c.CurrentFunction()
		require.NotNil(t, fn)
		for i, p := range params {
			arg, ok := c.Binding(p.Name)
			require.True(t, ok, p.Name)
			assert.Same(t, fn.Arguments[i], arg)

			slot, ok := c.CurrentScope().LookupSlot(p.Name)
			require.True(t, ok, p.Name)
			assert.Equal(t, p.Category, slot.Category)
		}

		c.PushScope()
		nine := c.Builder.ConstFloat(types.F64, 9)
		c.Bind("x", nine)
		inner, _ := c.Binding("x")
		assert.Same(t, nine, inner)
		xs, ok := c.Binding("xs")
		require.True(t, ok, "outer bindings stay visible")
		assert.Same(t, fn.Arguments[1], xs)
		c.PopScope()

		outer, _ := c.Binding("x")
		assert.Same(t, fn.Arguments[0], outer)

		return c.ResolveSymbol("x")
	})
	require.NoError(t, err)
	require.Len(t, fn.Arguments, 2)

	_, ok := ctx.Binding("x")
	assert.False(t, ok, "parameters do not leak past the function")
	_, ok = ctx.CurrentScope().LookupSlot("x")
	assert.False(t, ok)
	assert.Nil(t, ctx.CurrentFunction())
}

func TestNestedScopesShadowSlots(t *testing.T) {
	ctx := newTestContext(t)

	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		outer, err := c.DeclareLocal("v", Number, nil)
		require.NoError(t, err)

		c.PushScope()
		inner, err := c.DeclareLocal("v", List, nil)
		require.NoError(t, err)

		slot, ok := c.CurrentScope().LookupSlot("v")
		require.True(t, ok)
		assert.Same(t, inner, slot)

		v, err := c.ResolveSymbol("v")
		require.NoError(t, err)
		_, isPtr := v.Type().(*types.PointerType)
		assert.True(t, isPtr)
		c.PopScope()

		slot, _ = c.CurrentScope().LookupSlot("v")
		assert.Same(t, outer, slot)
		v, err = c.ResolveSymbol("v")
		require.NoError(t, err)
		assert.True(t, types.IsFloat(v.Type()))
		return v, nil
	})
	require.NoError(t, err)
}

func TestDeclarationErrors(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, ctx.DeclareGlobalConstant("E", 2.718))

	assert.Error(t, ctx.DeclareGlobalConstant("E", 1))
	_, err := ctx.DeclareExtern("E", nil, Number)
	assert.Error(t, err)
	_, err = ctx.DeclareExtern("f", []Category{Category(9)}, Number)
	assert.Error(t, err)
	_, err = ctx.DeclareFunction("g", []Param{{Name: "a"}, {Name: "a"}}, Number, nil)
	assert.Error(t, err)
	_, err = ctx.DeclareLocal("top", Number, nil)
	assert.Error(t, err, "locals need an enclosing function")

	_, err = ctx.DeclareFunction("outer", nil, Number, func(c *Context) (ir.Value, error) {
		_, err := c.DeclareFunction("inner", nil, Number, nil)
		assert.Error(t, err)
		_, err = c.DeclareLocal("bad", Category(-1), nil)
		assert.Error(t, err)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestSlotsNeedAnEnclosingFunction(t *testing.T) {
	ctx := newTestContext(t)
	_, err := ctx.DeclareFunction("first", nil, Number, nil)
	require.NoError(t, err)

	addr := ctx.Builder.ConstFloat(types.F64, 0)
	_, err = ctx.DeclareSlot("g", addr, Number)
	require.Error(t, err)

	_, err = ctx.ResolveSymbol("g")
	_, undefined := IsUndefinedSymbol(err)
	assert.True(t, undefined, "no slot was registered at module level")
	assert.Panics(t, func() { ctx.LoadTyped(addr, ctx.Types.Shape(Number), "g") })
}

func TestEnterFunctionChecksParams(t *testing.T) {
	ctx := newTestContext(t)
	fn, err := ctx.DeclareFunction("pair", []Param{{Name: "a", Category: Number}, {Name: "b", Category: Number}}, Number, nil)
	require.NoError(t, err)

	assert.Error(t, ctx.EnterFunction(fn, []Param{{Name: "a", Category: Number}}))
	assert.Nil(t, ctx.CurrentFunction())
}

func TestArgumentFrameIsReused(t *testing.T) {
	ctx := newTestContext(t)
	frames := ctx.bindings.Len()

	for _, name := range []string{"f", "g", "h"} {
		_, err := ctx.DeclareFunction(name, []Param{{Name: "x", Category: Number}}, Number, func(c *Context) (ir.Value, error) {
			arg, ok := c.Binding("x")
			require.True(t, ok)
			assert.Same(t, c.CurrentFunction().Arguments[0], arg)
			return nil, nil
		})
		require.NoError(t, err)
	}

	// One frame per function scope, none for argument batches.
	assert.Equal(t, frames+3, ctx.bindings.Len())
	assert.Empty(t, ctx.bindings.Names(ctx.currentFrame))
}

func TestFailedBodyFailsTheUnit(t *testing.T) {
	comp, err := NewCompiler("partial", Options{LogLevel: LogLevelError, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	ctx := comp.GetContext()

	_, err = ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		return nil, fmt.Errorf("lowering stopped")
	})
	require.Error(t, err)
	require.Equal(t, 1, ctx.Diagnostics.ErrorCount())
	assert.Contains(t, ctx.Diagnostics.All()[0].Message, "lowering stopped")

	_, err = comp.Finish()
	assert.Error(t, err)
	out := filepath.Join(t.TempDir(), "partial.ir")
	assert.Error(t, comp.CompileToIR(out))
	assert.NoFileExists(t, out)
}

func TestUndefinedSymbolInBodyIsRecordedOnce(t *testing.T) {
	ctx := newTestContext(t)
	_, err := ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		return c.ResolveSymbol("missing")
	})
	require.Error(t, err)
	assert.Equal(t, 1, ctx.Diagnostics.ErrorCount())
}

func TestCompilerWritesIR(t *testing.T) {
	comp, err := NewCompiler("unit", Options{LogLevel: LogLevelError, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	ctx := comp.GetContext()
	require.NoError(t, ctx.DeclareGlobalConstant("PI", 3.14))
	_, err = ctx.DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		return c.ResolveSymbol("PI")
	})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "unit.ir")
	require.NoError(t, comp.CompileToIR(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "main"))
}

func TestCompilerRefusesModuleWithErrors(t *testing.T) {
	comp, err := NewCompiler("broken", Options{LogLevel: LogLevelError, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	_, _ = comp.GetContext().DeclareFunction("main", nil, Number, func(c *Context) (ir.Value, error) {
		return c.ResolveSymbol("missing")
	})

	_, err = comp.Finish()
	assert.Error(t, err)
	assert.Error(t, comp.CompileToIR(filepath.Join(t.TempDir(), "broken.ir")))
}

func TestContextsAreIndependent(t *testing.T) {
	a := newTestContext(t)
	b := newTestContext(t)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.DeclareGlobalConstant("only_a", 1))
	_, ok := b.LookupGlobalConstant("only_a")
	assert.False(t, ok)
}
