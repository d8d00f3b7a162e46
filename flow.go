package controlpath

import (
	"fmt"
	"log/slog"
	"strings"

	gbytes "github.com/savsgio/gotils/bytes"
	"go.uber.org/atomic"
)

// Stage is the position of a Flow in its walk.
type Stage uint8

const (
	// StageSection runs the section handler of each directory depth.
	StageSection Stage = iota + 1
	// StagePage resolves the final segment.
	StagePage
	// StageEnd means no further step will run.
	StageEnd
)

// String returns a string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageSection:
		return "section"
	case StagePage:
		return "page"
	case StageEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ReturnHandler is called with every non-trivial value a flow records. It may
// call f.Stop to end the flow before the next step.
type ReturnHandler func(v any, f *Flow, d *Dispatcher)

// StartOptions configures a single dispatch.
type StartOptions struct {
	// Inject adds to, or overrides, the dispatcher's default injections.
	Inject Injections

	// ReturnHandler, if set, observes every non-trivial value.
	ReturnHandler ReturnHandler
}

// Flow walks one path. A section step runs for every directory depth from
// the root context down to the directory holding the final segment, then a
// single page step resolves the final segment.
//
// A Flow is driven by one goroutine; only Stop may be called from others.
type Flow struct {
	d   *Dispatcher
	id  string
	log *slog.Logger

	stage   Stage
	stopped atomic.Bool

	parsed   []string
	unparsed []string
	token    string
	hasToken bool
	consumed bool

	path    string
	relPath string
	prefix  string

	sections map[string]Handler
	inject   Injections
	returns  []any

	returnHandler ReturnHandler
}

func newFlow(d *Dispatcher, path string, opts StartOptions) (*Flow, error) {
	if err := validateInjections(opts.Inject); err != nil {
		return nil, err
	}

	f := &Flow{
		d:             d,
		id:            string(gbytes.Rand(make([]byte, 16))),
		stage:         StageSection,
		unparsed:      splitPath(path),
		sections:      make(map[string]Handler),
		returnHandler: opts.ReturnHandler,
	}
	f.log = d.logger.With("flow", f.id, "path", path)

	f.inject = make(Injections, len(d.inject)+len(opts.Inject)+2)
	for k, v := range d.inject {
		f.inject[k] = v
	}
	for k, v := range opts.Inject {
		f.inject[k] = v
	}
	f.inject[InjectShare] = Share{}
	f.inject[InjectFlow] = f

	f.forward()
	return f, nil
}

// ID returns the random identifier of the flow, used in log records.
func (f *Flow) ID() string {
	return f.id
}

// Token returns the current segment.
func (f *Flow) Token() string {
	return f.token
}

// Path returns the directory of the current depth, ending with "/".
func (f *Flow) Path() string {
	return f.path
}

// RelativePath returns the parsed segments joined by "/".
func (f *Flow) RelativePath() string {
	return f.relPath
}

// TypePrefix returns the handler type name prefix of the current depth.
func (f *Flow) TypePrefix() string {
	return f.prefix
}

// Parsed returns the segments already resolved.
func (f *Flow) Parsed() []string {
	parsed := make([]string, len(f.parsed), len(f.parsed)+1)
	copy(parsed, f.parsed)
	if f.consumed {
		parsed = append(parsed, f.token)
	}
	return parsed
}

// Unparsed returns the segments not yet resolved, current segment first.
// Parsed followed by Unparsed is always the full segment list.
func (f *Flow) Unparsed() []string {
	unparsed := make([]string, 0, len(f.unparsed)+1)
	if f.hasToken && !f.consumed {
		unparsed = append(unparsed, f.token)
	}
	return append(unparsed, f.unparsed...)
}

// Returns returns the non-trivial values recorded so far.
func (f *Flow) Returns() []any {
	returns := make([]any, len(f.returns))
	copy(returns, f.returns)
	return returns
}

// Injections returns the injection map handed to every handler of the flow.
func (f *Flow) Injections() Injections {
	return f.inject
}

// Section returns the section handler instantiated for a relative path.
func (f *Flow) Section(relPath string) (Handler, bool) {
	h, ok := f.sections[relPath]
	return h, ok
}

// Define registers a handler type under the current type prefix. Modules
// call it while loading.
func (f *Flow) Define(name string, factory any) error {
	return f.d.cache.Types().Define(f.prefix+name, factory)
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage {
	if f.stopped.Load() {
		return StageEnd
	}
	return f.stage
}

// Stop ends the flow. No handler is invoked after Stop returns; a handler
// that is running completes.
func (f *Flow) Stop() {
	if f.stopped.CompareAndSwap(false, true) {
		f.log.Debug("flow stopped")
	}
}

// Stopped returns true once Stop was called or a handler returned false.
func (f *Flow) Stopped() bool {
	return f.stopped.Load()
}

// HasNext returns true until the flow reaches StageEnd.
func (f *Flow) HasNext() bool {
	return f.Stage() != StageEnd
}

// Next runs the next step. Once the flow has ended it returns a KindDone
// result. An error ends the flow.
func (f *Flow) Next() (Result, error) {
	switch f.Stage() {
	case StageSection:
		return f.section()
	case StagePage:
		return f.page()
	}
	return doneResult, nil
}

// forward moves the cursor to the next segment, or to the next stage once
// every segment is consumed.
func (f *Flow) forward() {
	if !f.HasNext() {
		return
	}

	if len(f.unparsed) == 0 {
		if f.stage == StageSection {
			f.stage = StagePage
		} else {
			f.stage = StageEnd
		}
		return
	}

	if f.hasToken {
		f.parsed = append(f.parsed, f.token)
	}
	f.token, f.unparsed = f.unparsed[0], f.unparsed[1:]
	f.hasToken = true

	f.path = f.d.currentPath(f.parsed)
	f.relPath = relativePath(f.parsed)
	f.prefix = f.d.typePrefix(f.parsed)
}

func (f *Flow) section() (Result, error) {
	res, err := f.sectionLoad()
	if err != nil {
		f.Stop()
		return Result{}, err
	}
	f.forward()
	return res, nil
}

func (f *Flow) sectionLoad() (Result, error) {
	file := f.path + SectionName + f.d.loader.Extension()
	if !f.d.loader.Exists(file) {
		f.log.Debug("no section handler", "dir", f.path)
		return trivialResult, nil
	}

	typeName := f.prefix + SectionName
	v, err := f.d.cache.FileLoad(file, typeName, f.inject, f.d.loader)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", file, err)
	}

	return f.resolve(v, typeName, func(h Handler) {
		if _, ok := f.sections[f.relPath]; !ok {
			f.sections[f.relPath] = h
		}
	})
}

func (f *Flow) page() (Result, error) {
	res, err := f.pageLoad()
	if err != nil {
		f.Stop()
		return Result{}, err
	}
	f.consumed = true
	f.forward()
	return res, nil
}

func (f *Flow) pageLoad() (Result, error) {
	name := Conform(f.token)
	if name == "" {
		f.log.Debug("segment has no conformed name", "token", f.token)
		return f.handleReturn(false), nil
	}
	if name == AlwaysHook || strings.HasPrefix(name, PrivatePrefix) {
		return Result{}, &NotFoundError{Path: f.path, Token: name}
	}

	if h, ok := f.sections[f.relPath]; ok {
		if m, ok := h.Member(name); ok {
			f.log.Debug("page member", "dir", f.path, "member", name)
			v, err := f.d.call(m, f.inject)
			if err != nil {
				return Result{}, err
			}
			return f.handleReturn(v), nil
		}
	}

	file := f.path + f.token + f.d.loader.Extension()
	if f.d.loader.Exists(file) {
		typeName := f.prefix + name
		v, err := f.d.cache.FileLoad(file, typeName, f.inject, f.d.loader)
		if err != nil {
			return Result{}, fmt.Errorf("load %s: %w", file, err)
		}
		return f.resolve(v, typeName, nil)
	}

	return Result{}, &NotFoundError{Path: f.path, Token: name}
}

// resolve turns a module result into a step result: callables are invoked,
// and a handler type defined under typeName is instantiated and its always
// hook invoked in place of the module result. A handler type without an
// always hook yields a trivial result, since the module result only exists
// on the load that defined the type.
func (f *Flow) resolve(v any, typeName string, register func(Handler)) (Result, error) {
	var err error
	if invocable(v) {
		if v, err = f.d.call(v, f.inject); err != nil {
			return Result{}, err
		}
	}

	factory, ok := f.d.cache.Types().Lookup(typeName)
	if !ok || f.stopped.Load() {
		return f.handleReturn(v), nil
	}

	h, err := f.d.construct(factory, f.inject)
	if err != nil {
		return Result{}, fmt.Errorf("construct %s: %w", typeName, err)
	}
	if register != nil {
		register(h)
	}

	always, ok := h.Member(AlwaysHook)
	if !ok || f.stopped.Load() {
		return trivialResult, nil
	}

	f.log.Debug("always hook", "type", typeName)
	if v, err = f.d.call(always, f.inject); err != nil {
		return Result{}, err
	}
	return f.handleReturn(v), nil
}

// handleReturn records v. false stops the flow; nil and Loaded are trivial.
func (f *Flow) handleReturn(v any) Result {
	if b, ok := v.(bool); ok && !b {
		f.Stop()
		return stopResult
	}
	if trivial(v) {
		return trivialResult
	}

	f.returns = append(f.returns, v)
	if f.returnHandler != nil {
		f.returnHandler(v, f, f.d)
	}
	return Result{Kind: KindValue, Value: v}
}
