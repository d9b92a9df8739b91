package compiler

import (
	"fmt"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/core-builder/types"
	"github.com/gobwas/glob"
)

// GlobalConstants looks up process-wide constants by name. The returned
// value is the constant's initializer.
type GlobalConstants interface {
	LookupGlobalConstant(name string) (ir.Value, bool)
}

// GlobalCallables looks up process-wide functions by name.
type GlobalCallables interface {
	LookupGlobalCallable(name string) (*ir.Function, bool)
}

// SlotTable looks up local storage slots by name.
type SlotTable interface {
	LookupSlot(name string) (*Slot, bool)
}

// Loader emits a load of shape from addr into the current block.
type Loader interface {
	LoadTyped(addr ir.Value, shape types.Type, name string) ir.Value
}

// Tier is the namespace a name was found in.
type Tier int

const (
	TierGlobalConstant Tier = iota
	TierGlobalCallable
	TierLocal
)

func (t Tier) String() string {
	switch t {
	case TierGlobalConstant:
		return "global_constant"
	case TierGlobalCallable:
		return "global_callable"
	case TierLocal:
		return "local"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Resolution is the outcome of classifying a name. Exactly one of
// Constant, Callable and Slot is set, matching Tier.
type Resolution struct {
	Name     string
	Tier     Tier
	Constant ir.Value
	Callable *ir.Function
	Slot     *Slot
}

// Resolver turns identifier references into IR values. The lookup order
// is fixed: global constants, then global callables, then local slots.
type Resolver struct {
	constants GlobalConstants
	callables GlobalCallables
	loader    Loader
	shapes    *RuntimeTypes
	logger    *Logger
	trace     []glob.Glob
}

// NewResolver creates a resolver over the given lookup surfaces
func NewResolver(constants GlobalConstants, callables GlobalCallables, loader Loader, shapes *RuntimeTypes, logger *Logger) *Resolver {
	if logger == nil {
		logger = globalLogger
	}
	return &Resolver{
		constants: constants,
		callables: callables,
		loader:    loader,
		shapes:    shapes,
		logger:    logger,
	}
}

// SetTrace enables debug logging of resolutions for names matching any of
// the glob patterns.
func (r *Resolver) SetTrace(patterns []string) error {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return fmt.Errorf("invalid trace pattern %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	r.trace = compiled
	return nil
}

func (r *Resolver) traced(name string) bool {
	for _, g := range r.trace {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Classify finds the tier that answers for name without emitting IR.
// Once a tier answers, lower tiers are not consulted.
func (r *Resolver) Classify(name string, slots SlotTable) (Resolution, error) {
	if val, ok := r.constants.LookupGlobalConstant(name); ok {
		return Resolution{Name: name, Tier: TierGlobalConstant, Constant: val}, nil
	}

	if fn, ok := r.callables.LookupGlobalCallable(name); ok {
		return Resolution{Name: name, Tier: TierGlobalCallable, Callable: fn}, nil
	}

	if slots != nil {
		if slot, ok := slots.LookupSlot(name); ok {
			return Resolution{Name: name, Tier: TierLocal, Slot: slot}, nil
		}
	}

	return Resolution{Name: name}, &UndefinedSymbolError{Name: name}
}

// Resolve returns the IR value of the identifier name. A global constant
// yields its initializer, a global callable yields the function itself,
// and a local slot is loaded with the shape of its category.
func (r *Resolver) Resolve(name string, slots SlotTable) (ir.Value, error) {
	res, err := r.Classify(name, slots)
	if err != nil {
		UndefinedSymbols.Inc()
		r.logger.Debug("Symbol '%s' not found in any tier", name)
		return nil, err
	}
	SymbolResolutions.WithLabelValues(res.Tier.String()).Inc()

	if r.traced(name) {
		r.logger.Info("trace: '%s' resolved as %s", name, res.Tier)
	}

	switch res.Tier {
	case TierGlobalConstant:
		r.logger.Debug("Loading global symbol: %s", name)
		return res.Constant, nil
	case TierGlobalCallable:
		r.logger.Debug("Loading function symbol: %s", name)
		return res.Callable, nil
	default:
		return r.materialize(res.Slot), nil
	}
}

func (r *Resolver) materialize(slot *Slot) ir.Value {
	var shape types.Type
	switch slot.Category {
	case Number:
		shape = r.shapes.Shape(Number)
	case List:
		shape = r.shapes.Shape(List)
	case FuncObj1:
		shape = r.shapes.Shape(FuncObj1)
	case FuncObj2:
		shape = r.shapes.Shape(FuncObj2)
	default:
		panic(fmt.Sprintf("compiler: slot '%s' has invalid category %v", slot.Name, slot.Category))
	}
	r.logger.Debug("Loading %s slot: %s", slot.Category, slot.Name)
	return r.loader.LoadTyped(slot.Addr, shape, slot.Name)
}
