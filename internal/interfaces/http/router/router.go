// Package router mounts the custody API groups under /api/{version}.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes on a parent group and reports them
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup) []RouteInfo
}

// RouteInfo describes one mounted endpoint
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

// Router collects registrars and mounts them on a versioned group
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the prefix, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithMiddleware runs handlers in front of every versioned route
func WithMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, handlers...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every queued registrar and returns the resulting route table
// in registration order
func (r *Router) Setup() []RouteInfo {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	var routes []RouteInfo
	for _, registrar := range r.registrars {
		routes = append(routes, registrar.RegisterRoutes(api)...)
	}
	return routes
}

// DomainGroup is the routes of one custody area under a shared prefix.
// Nested groups inherit the parent's prefix and middleware.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware ahead of the group's handlers
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle adds a route for an arbitrary method
func (dg *DomainGroup) Handle(method, relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: relativePath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, relativePath, handlers...)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, relativePath, handlers...)
}

func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, relativePath, handlers...)
}

func (dg *DomainGroup) DELETE(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, relativePath, handlers...)
}

// Group nests a child group under this one
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

// Name is the label used in the route table
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix is the path segment relative to the parent
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) []RouteInfo {
	group := rg.Group(dg.prefix, dg.middleware...)
	routes := make([]RouteInfo, 0, len(dg.routes))
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
		routes = append(routes, RouteInfo{
			Group:  dg.name,
			Method: rt.method,
			Path:   path.Join(group.BasePath(), rt.path),
		})
	}
	for _, child := range dg.children {
		routes = append(routes, child.RegisterRoutes(group)...)
	}
	return routes
}
