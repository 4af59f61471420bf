// Package gorillaroute binds routes matched by gorilla/mux.
package gorillaroute

import (
	"net/http"

	"github.com/advdv/bmsg"
	"github.com/gorilla/mux"
)

// Binder implements [bmsg.RouteBinder] for requests dispatched by a
// mux.Router. Variables are reported host first, then path, then query, each
// in template order.
type Binder struct{}

// BindRoute implements [bmsg.RouteBinder].
func (Binder) BindRoute(r *http.Request) bmsg.Route {
	rt := bmsg.Route{Path: r.URL.Path}

	cur := mux.CurrentRoute(r)
	if cur == nil {
		return rt
	}

	if tpl, err := cur.GetPathTemplate(); err == nil {
		rt.Pattern = tpl
	}

	vars := mux.Vars(r)

	names, err := cur.GetVarNames()
	if err != nil {
		return rt
	}

	for _, name := range names {
		if v, ok := vars[name]; ok {
			rt.Vars = append(rt.Vars, bmsg.RouteVar{Name: name, Value: v})
		}
	}

	return rt
}

// Handler returns h as an http.Handler that binds its routes with [Binder].
// Any router set in cfg is replaced.
func Handler(h bmsg.Handler, cfg bmsg.Config, logs bmsg.Logger) http.Handler {
	cfg.Router = Binder{}
	return bmsg.ToStd(h, cfg, logs)
}

var _ bmsg.RouteBinder = Binder{}
