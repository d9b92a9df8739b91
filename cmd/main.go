package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arc-language/core-builder/ir"
	"github.com/arc-language/lisp-compiler/compiler"
	"github.com/arc-language/lisp-compiler/config"
	"github.com/arc-language/lisp-compiler/prelude"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "lispc: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lispc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var preludes stringList
	configPath := fs.String("config", "", "Path to lispc.toml")
	output := fs.String("o", "", "Output IR file (default <module>.ir)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Var(&preludes, "prelude", "Prelude YAML file (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: lispc [-config lispc.toml] [-prelude file.yaml] [-o out.ir] [-verbose] name...\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *output != "" {
		cfg.Output = *output
	} else {
		cfg.Output = cfg.Resolve(cfg.Output)
	}

	level, err := compiler.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if *verbose {
		level = compiler.LogLevelDebug
	}
	compiler.SetGlobalLevel(level)

	comp, err := compiler.NewCompiler(cfg.Module, compiler.Options{
		LogLevel:     level,
		LogOutput:    stderr,
		LogErrOutput: stderr,
		TraceSymbols: cfg.TraceSymbols,
	})
	if err != nil {
		return err
	}
	ctx := comp.GetContext()

	paths := make([]string, 0, len(cfg.Preludes)+len(preludes))
	for _, p := range cfg.Preludes {
		paths = append(paths, cfg.Resolve(p))
	}
	paths = append(paths, preludes...)

	loader := prelude.NewLoader()
	for _, path := range paths {
		p, err := loader.Load(path)
		if err != nil {
			return err
		}
		if err := p.Apply(ctx); err != nil {
			return err
		}
	}

	_, err = ctx.DeclareFunction("main", nil, compiler.Number, func(c *compiler.Context) (ir.Value, error) {
		for _, l := range cfg.Locals {
			cat, err := compiler.ParseCategory(l.Category)
			if err != nil {
				return nil, err
			}
			if _, err := c.DeclareLocal(l.Name, cat, nil); err != nil {
				return nil, err
			}
		}

		for _, name := range fs.Args() {
			if _, err := c.ResolveSymbol(name); err != nil {
				fmt.Fprintf(stdout, "%s\tundefined\n", name)
				continue
			}
			res, err := c.Resolver().Classify(name, c.CurrentScope())
			if err != nil {
				return nil, err
			}
			if res.Tier == compiler.TierLocal {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", name, res.Tier, res.Slot.Category)
			} else {
				fmt.Fprintf(stdout, "%s\t%s\n", name, res.Tier)
			}
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	if ctx.Diagnostics.HasErrors() {
		ctx.Diagnostics.Fprint(stderr)
	}
	if err := comp.CompileToIR(cfg.Output); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "IR written to %s\n", cfg.Output)
	return nil
}
