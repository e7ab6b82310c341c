// Package pages defines the explorer's page route table and mounts it on a
// Fiber router.
package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Route describes one page.
type Route struct {
	Path  string
	Name  string
	View  string // template rendered for the page
	Title string
}

// Default is the explorer's page table.
var Default = []Route{
	{Path: "/", Name: "home", View: "home", Title: "Home"},
	{Path: "/about", Name: "about", View: "about", Title: "About"},
	{Path: "/dna-barcoding", Name: "dna-barcoding", View: "dna-barcoding", Title: "DNA Barcoding"},
	{Path: "/data", Name: "data", View: "data", Title: "Data"},
	{Path: "/priority-species", Name: "priority-species", View: "priority-species", Title: "Priority Species"},
	{Path: "/related-projects", Name: "related-projects", View: "related-projects", Title: "Related Projects"},
}

var (
	ErrNoRoutes          = errors.New("route table is empty")
	ErrHookRegistered    = errors.New("after-each hook already registered")
	ErrMissingHandler    = errors.New("route has no handler")
	ErrUnknownRoute      = errors.New("unknown route name")
	ErrHandlerRegistered = errors.New("route already has a handler")
)

// Handler renders a page.
type Handler func(c fiber.Ctx, route Route) error

// AfterEachHook observes every resolved navigation before the page renders.
type AfterEachHook func(c fiber.Ctx, route Route)

// Router holds a validated route table and its handlers.
type Router struct {
	routes    []Route
	handlers  map[string]Handler
	afterEach AfterEachHook
}

// Validate checks a route table: paths start with "/", paths and names are
// unique, and every route names a view and a title.
func Validate(routes []Route) error {
	if len(routes) == 0 {
		return ErrNoRoutes
	}
	paths := make(map[string]bool, len(routes))
	names := make(map[string]bool, len(routes))
	for i, r := range routes {
		switch {
		case !strings.HasPrefix(r.Path, "/"):
			return fmt.Errorf("route %d: path %q must start with /", i, r.Path)
		case r.Name == "":
			return fmt.Errorf("route %d (%s): name is required", i, r.Path)
		case r.View == "":
			return fmt.Errorf("route %q: view is required", r.Name)
		case strings.TrimSpace(r.Title) == "":
			return fmt.Errorf("route %q: title is required", r.Name)
		case paths[r.Path]:
			return fmt.Errorf("route %q: duplicate path %q", r.Name, r.Path)
		case names[r.Name]:
			return fmt.Errorf("duplicate route name %q", r.Name)
		}
		paths[r.Path] = true
		names[r.Name] = true
	}
	return nil
}

// NewRouter validates routes and returns a router for them. The table is
// copied, so later changes to the caller's slice have no effect.
func NewRouter(routes []Route) (*Router, error) {
	if err := Validate(routes); err != nil {
		return nil, err
	}
	return &Router{
		routes:   append([]Route(nil), routes...),
		handlers: make(map[string]Handler, len(routes)),
	}, nil
}

// Routes returns a copy of the route table.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Lookup finds a route by name.
func (r *Router) Lookup(name string) (Route, bool) {
	for _, route := range r.routes {
		if route.Name == name {
			return route, true
		}
	}
	return Route{}, false
}

// AfterEach registers the navigation observer. Only one may be registered.
func (r *Router) AfterEach(hook AfterEachHook) error {
	if r.afterEach != nil {
		return ErrHookRegistered
	}
	r.afterEach = hook
	return nil
}

// Handle binds the handler for the named route.
func (r *Router) Handle(name string, h Handler) error {
	if _, ok := r.Lookup(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("%w: %q", ErrHandlerRegistered, name)
	}
	r.handlers[name] = h
	return nil
}

// Mount registers a GET route for every page on app. It fails without
// registering anything if any route lacks a handler.
func (r *Router) Mount(app fiber.Router) error {
	for _, route := range r.routes {
		if r.handlers[route.Name] == nil {
			return fmt.Errorf("%w: %q", ErrMissingHandler, route.Name)
		}
	}

	for _, route := range r.routes {
		h := r.handlers[route.Name]
		app.Get(route.Path, func(c fiber.Ctx) error {
			if r.afterEach != nil {
				r.afterEach(c, route)
			}
			return h(c, route)
		})
	}
	return nil
}
