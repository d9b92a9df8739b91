package compiler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SymbolResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lispc_symbol_resolutions_total",
		Help: "Identifier references resolved, by the tier that answered.",
	}, []string{"tier"})

	UndefinedSymbols = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lispc_undefined_symbols_total",
		Help: "Identifier references that matched no tier.",
	})
)
