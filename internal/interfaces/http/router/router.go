// Package router assembles the gin engine of the pricing API
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a set of routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// NewRouter creates a Router on engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar; nothing is mounted until Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued registrar in registration order
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// DomainGroup is the routes of one resource, such as the settlements of an
// order, sharing a path prefix and optional middleware
type DomainGroup struct {
	name   string
	prefix string
	use    []gin.HandlerFunc
	routes []route
}

type route struct {
	method, path string
	chain        []gin.HandlerFunc
}

// NewDomainGroup creates an empty group mounted at prefix
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware run before every route of the group
func (g *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	g.use = append(g.use, mw...)
	return g
}

func (g *DomainGroup) add(method, path string, chain []gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{method: method, path: path, chain: chain})
	return g
}

// GET adds a read route
func (g *DomainGroup) GET(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodGet, path, h)
}

// POST adds a create route
func (g *DomainGroup) POST(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPost, path, h)
}

// PUT adds a replace route
func (g *DomainGroup) PUT(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPut, path, h)
}

// DELETE adds a removal route
func (g *DomainGroup) DELETE(path string, h ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodDelete, path, h)
}

// RegisterRoutes mounts the group below rg
func (g *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	sub := rg.Group(g.prefix, g.use...)
	for _, rt := range g.routes {
		sub.Handle(rt.method, rt.path, rt.chain...)
	}
}

// Name identifies the group in logs
func (g *DomainGroup) Name() string { return g.name }

// Prefix is the path the group is mounted at
func (g *DomainGroup) Prefix() string { return g.prefix }
