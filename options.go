package keyshape

import (
	"go.uber.org/zap"
)

// Option configures a Validator or a Caster.
type Option func(*options)

type options struct {
	logger        *zap.Logger
	strictUnknown bool
}

func defaultOptions() options {
	return options{logger: zap.NewNop()}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// WithLogger routes advisories and cast diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStrictUnknown turns the unknown-keyword advisory into a type error.
// The default accepts unknown keywords so newer schemas keep working.
func WithStrictUnknown(strict bool) Option {
	return func(o *options) { o.strictUnknown = strict }
}
