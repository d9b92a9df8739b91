package compiler

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
)

// RuntimeTypes holds the IR shapes of the runtime value representation.
// Numbers are f64 scalars; lists and function objects are handled through
// pointers to their heap structs.
type RuntimeTypes struct {
	Float    types.Type
	Node     types.Type // list cell: { f64 value, i8* next }
	Func1Obj types.Type // { i8* code, i8* env }
	Func2Obj types.Type // { i8* code, i8* env }

	shapes [len(categoryNames)]types.Type
}

// NewRuntimeTypes builds the runtime structs and registers them in mod.
func NewRuntimeTypes(mod *ir.Module) *RuntimeTypes {
	opaque := types.NewPointer(types.I8)

	rt := &RuntimeTypes{
		Float:    types.F64,
		Node:     types.NewStruct("node", []types.Type{types.F64, opaque}, false),
		Func1Obj: types.NewStruct("func1_obj", []types.Type{opaque, opaque}, false),
		Func2Obj: types.NewStruct("func2_obj", []types.Type{opaque, opaque}, false),
	}

	rt.shapes[Number] = rt.Float
	rt.shapes[List] = types.NewPointer(rt.Node)
	rt.shapes[FuncObj1] = types.NewPointer(rt.Func1Obj)
	rt.shapes[FuncObj2] = types.NewPointer(rt.Func2Obj)

	if mod != nil {
		for name, typ := range map[string]types.Type{
			"node":      rt.Node,
			"func1_obj": rt.Func1Obj,
			"func2_obj": rt.Func2Obj,
		} {
			if st, ok := typ.(*types.StructType); ok {
				mod.Types[name] = st
			}
		}
	}

	return rt
}

// Shape returns the access shape used to load a slot of category c.
// Categories outside the closed set are a declaration bug and panic.
func (rt *RuntimeTypes) Shape(c Category) types.Type {
	switch c {
	case Number, List, FuncObj1, FuncObj2:
		return rt.shapes[c]
	}
	panic(fmt.Sprintf("compiler: no runtime shape for %v", c))
}
