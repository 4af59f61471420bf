package bmsg

import (
	"net/http"
	"sync"

	"github.com/advdv/bmsg/internal/httppattern"
	"github.com/samber/lo"
)

// RouteVar is a path variable bound by the router.
type RouteVar struct {
	Name  string
	Value string
}

// Route is the binding of a request to a route: the matched pattern, the
// request path and the path variables in pattern order.
type Route struct {
	Pattern string
	Path    string
	Vars    []RouteVar
}

// Var returns the value of the path variable name.
func (rt Route) Var(name string) (string, bool) {
	v, ok := lo.Find(rt.Vars, func(v RouteVar) bool { return v.Name == name })
	return v.Value, ok
}

// VarNames returns the path variable names in pattern order.
func (rt Route) VarNames() []string {
	return lo.Map(rt.Vars, func(v RouteVar, _ int) string { return v.Name })
}

// RouteBinder resolves the route of a request after the router dispatched it.
type RouteBinder interface {
	BindRoute(r *http.Request) Route
}

// RouteBinderFunc implements RouteBinder with a function.
type RouteBinderFunc func(r *http.Request) Route

// BindRoute implements [RouteBinder].
func (f RouteBinderFunc) BindRoute(r *http.Request) Route { return f(r) }

// StdRouteBinder binds routes matched by http.ServeMux. The wildcard names
// come from the matched pattern and their values from PathValue.
type StdRouteBinder struct{}

var stdWildcards sync.Map // pattern -> []string

// BindRoute implements [RouteBinder].
func (StdRouteBinder) BindRoute(r *http.Request) Route {
	rt := Route{Pattern: r.Pattern, Path: r.URL.Path}
	if r.Pattern == "" {
		return rt
	}

	names, ok := stdWildcards.Load(r.Pattern)
	if !ok {
		pat, err := httppattern.ParsePattern(r.Pattern)
		if err != nil {
			return rt
		}

		names, _ = stdWildcards.LoadOrStore(r.Pattern, pat.Wildcards())
	}

	for _, name := range names.([]string) {
		rt.Vars = append(rt.Vars, RouteVar{Name: name, Value: r.PathValue(name)})
	}

	return rt
}
