// Package prelude loads YAML files that declare the global constants and
// callables visible to every compilation unit.
package prelude

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/arc-language/lisp-compiler/compiler"
	"gopkg.in/yaml.v3"
)

// Callable declares an externally implemented global function.
type Callable struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Result string   `yaml:"result"`
}

type preludeDisk struct {
	Include   []string           `yaml:"include"`
	Constants map[string]float64 `yaml:"constants"`
	Callables []Callable         `yaml:"callables"`
}

// Prelude is one loaded prelude file
type Prelude struct {
	Path      string
	Constants map[string]float64
	Callables []Callable
	Includes  []*Prelude

	processing bool
}

// Loader resolves and caches prelude files
type Loader struct {
	cache map[string]*Prelude
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string]*Prelude),
	}
}

// Load reads path and, recursively, every file it includes. Includes are
// relative to the including file. A file reached again while it is still
// being loaded is a circular include.
func (l *Loader) Load(path string) (*Prelude, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("prelude: resolve %s: %w", path, err)
	}

	if p, ok := l.cache[abs]; ok {
		if p.processing {
			return nil, fmt.Errorf("prelude: circular include of %s", abs)
		}
		return p, nil
	}

	p := &Prelude{Path: abs, processing: true}
	l.cache[abs] = p

	raw, err := decodeFile(abs)
	if err != nil {
		delete(l.cache, abs)
		return nil, err
	}
	p.Constants = raw.Constants
	p.Callables = raw.Callables

	dir := filepath.Dir(abs)
	for _, inc := range raw.Include {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(dir, inc)
		}
		child, err := l.Load(inc)
		if err != nil {
			delete(l.cache, abs)
			return nil, err
		}
		p.Includes = append(p.Includes, child)
	}

	p.processing = false
	return p, nil
}

func decodeFile(path string) (*preludeDisk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw preludeDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("prelude: parse %s: %w", path, err)
	}
	return &raw, nil
}

// Apply declares the prelude's globals into ctx, includes first. A file
// reached through several includes is declared once.
func (p *Prelude) Apply(ctx *compiler.Context) error {
	return p.apply(ctx, make(map[string]bool))
}

func (p *Prelude) apply(ctx *compiler.Context, done map[string]bool) error {
	if done[p.Path] {
		return nil
	}
	done[p.Path] = true

	for _, inc := range p.Includes {
		if err := inc.apply(ctx, done); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(p.Constants))
	for name := range p.Constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ctx.DeclareGlobalConstant(name, p.Constants[name]); err != nil {
			return fmt.Errorf("prelude %s: %w", p.Path, err)
		}
	}

	for _, c := range p.Callables {
		params := make([]compiler.Category, 0, len(c.Params))
		for _, s := range c.Params {
			cat, err := compiler.ParseCategory(s)
			if err != nil {
				return fmt.Errorf("prelude %s: callable '%s': %w", p.Path, c.Name, err)
			}
			params = append(params, cat)
		}
		result := compiler.Number
		if c.Result != "" {
			cat, err := compiler.ParseCategory(c.Result)
			if err != nil {
				return fmt.Errorf("prelude %s: callable '%s': %w", p.Path, c.Name, err)
			}
			result = cat
		}
		if _, err := ctx.DeclareExtern(c.Name, params, result); err != nil {
			return fmt.Errorf("prelude %s: %w", p.Path, err)
		}
	}

	return nil
}
