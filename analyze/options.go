package analyze

import (
	"time"

	"go.uber.org/zap"
)

// Options bound the numeric fallbacks and inject the debug logger. The zero
// value is usable; unset fields fall back to the defaults below.
type Options struct {
	// Variable is the designated free variable name.
	Variable string
	// ScanMin/ScanMax bound every numeric scan: sampling fallbacks,
	// bisection brackets and Newton seeding.
	ScanMin, ScanMax float64
	// Samples is the resolution of the numeric fallbacks.
	Samples int
	// Timeout caps one whole analysis request.
	Timeout time.Duration
	// Logger receives debug traces; analysis is silent without it.
	Logger *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Variable: "x",
		ScanMin:  -20,
		ScanMax:  20,
		Samples:  2048,
		Timeout:  2 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Variable == "" {
		o.Variable = def.Variable
	}
	if o.ScanMin == 0 && o.ScanMax == 0 {
		o.ScanMin, o.ScanMax = def.ScanMin, def.ScanMax
	}
	if o.Samples <= 0 {
		o.Samples = def.Samples
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
