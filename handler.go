package controlpath

// Handler member naming conventions.
const (
	// SectionName is the file and type name of a section handler.
	SectionName = "Controller"

	// AlwaysHook is invoked automatically once a handler is instantiated.
	AlwaysHook = "_always"

	// PrivatePrefix marks members that can never be addressed as a page.
	PrivatePrefix = "__"
)

// Member is a named, invocable part of a handler.
type Member struct {
	// Name is the member name pages address.
	Name string

	// Fn is the function invoked through the Resolver.
	Fn any

	// Public reports whether the member may be invoked from outside the handler.
	Public bool
}

// Handler is an instantiated section or page handler.
type Handler interface {
	// Member looks up a member by its conformed name.
	Member(name string) (Member, bool)
}

// BaseHandler is a Handler backed by a name to function table.
type BaseHandler struct {
	members map[string]Member
}

// NewHandler creates an empty BaseHandler.
func NewHandler() *BaseHandler {
	return &BaseHandler{
		members: make(map[string]Member),
	}
}

// Handle registers a public member.
func (h *BaseHandler) Handle(name string, fn any) *BaseHandler {
	h.members[name] = Member{Name: name, Fn: fn, Public: true}
	return h
}

// Hide registers a member that exists but cannot be invoked by the dispatcher.
func (h *BaseHandler) Hide(name string, fn any) *BaseHandler {
	h.members[name] = Member{Name: name, Fn: fn}
	return h
}

// Always registers the always hook.
func (h *BaseHandler) Always(fn any) *BaseHandler {
	return h.Handle(AlwaysHook, fn)
}

// Member implements Handler.Member.
func (h *BaseHandler) Member(name string) (Member, bool) {
	m, ok := h.members[name]
	return m, ok
}

// Names returns the registered member names.
func (h *BaseHandler) Names() []string {
	names := make([]string, 0, len(h.members))
	for name := range h.members {
		names = append(names, name)
	}
	return names
}
