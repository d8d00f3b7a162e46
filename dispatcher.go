package controlpath

import (
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/atomic"
)

// DefaultNamespace prefixes handler type names when Options.Namespace is empty.
const DefaultNamespace = "App.Control"

// Options configures a Dispatcher.
type Options struct {
	// Namespace prefixes every handler type name.
	Namespace string

	// Inject holds the default injections of every flow.
	Inject Injections

	// Resolver invokes handlers. Injector is used when nil.
	Resolver Resolver

	// Cache tracks loaded modules and their handler types. Dispatchers
	// serving the same modules must share it. A new cache is used when nil.
	Cache *ModuleCache

	// Logger receives step decisions at debug level. slog.Default() is used
	// when nil.
	Logger *slog.Logger
}

// Dispatcher resolves paths under a root context into handler invocations.
// It is safe for concurrent use; each dispatch runs in its own Flow.
type Dispatcher struct {
	context   string
	namespace string

	loader   ModuleLoader
	resolver Resolver
	cache    *ModuleCache
	inject   Injections
	logger   *slog.Logger

	loading atomic.Int64
}

// New returns a dispatcher rooted at context that loads handler modules
// through loader.
func New(context string, loader ModuleLoader, options Options) (*Dispatcher, error) {
	if loader == nil {
		panic("loader must not be nil")
	}
	if err := validateInjections(options.Inject); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		context:   normalizeContext(context),
		namespace: options.Namespace,
		loader:    loader,
		resolver:  options.Resolver,
		cache:     options.Cache,
		logger:    options.Logger,
	}
	if d.namespace == "" {
		d.namespace = DefaultNamespace
	}
	if d.resolver == nil {
		d.resolver = Injector{}
	}
	if d.cache == nil {
		d.cache = NewModuleCache()
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	d.inject = make(Injections, len(options.Inject)+1)
	for k, v := range options.Inject {
		d.inject[k] = v
	}
	// handlers may ask for the dispatcher itself
	d.inject[InjectDispatcher] = d

	return d, nil
}

// Context returns the root context, ending with "/".
func (d *Dispatcher) Context() string {
	return d.context
}

// Namespace returns the handler type name prefix.
func (d *Dispatcher) Namespace() string {
	return d.namespace
}

// Loader returns the module loader.
func (d *Dispatcher) Loader() ModuleLoader {
	return d.loader
}

// Cache returns the module cache.
func (d *Dispatcher) Cache() *ModuleCache {
	return d.cache
}

// Loading returns true while a Load call of this dispatcher is running.
func (d *Dispatcher) Loading() bool {
	return d.loading.Load() > 0
}

// Start begins a dispatch of path. The caller steps through it with
// Flow.HasNext and Flow.Next.
func (d *Dispatcher) Start(path string, opts StartOptions) (*Flow, error) {
	return newFlow(d, path, opts)
}

// Load runs a dispatch of path to completion and returns the values handlers
// produced, in order. Flow control values (true and false) are not included.
func (d *Dispatcher) Load(path string, opts StartOptions) ([]any, error) {
	f, err := d.Start(path, opts)
	if err != nil {
		return nil, err
	}

	d.loading.Inc()
	defer d.loading.Dec()

	var returns []any
	for f.HasNext() {
		res, err := f.Next()
		if err != nil {
			return nil, err
		}
		if res.Kind == KindValue && res.Value != true {
			returns = append(returns, res.Value)
		}
	}
	return returns, nil
}

// call invokes target through the resolver. Non-public members are ignored.
func (d *Dispatcher) call(target any, inj Injections) (any, error) {
	v, err := d.resolver.Call(target, inj)
	if errors.Is(err, ErrInaccessible) {
		d.logger.Debug("ignoring inaccessible member", "error", err)
		return nil, nil
	}
	return v, err
}

func (d *Dispatcher) construct(factory any, inj Injections) (Handler, error) {
	v, err := d.call(factory, inj)
	if err != nil {
		return nil, err
	}
	h, ok := v.(Handler)
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: factory returned %T", ErrInvalidFactory, v)
	}
	return h, nil
}
