package riverapi

import (
	"context"
	"net/http"
)

// RouterApiRouter binds http requests to handler functions. The
// implementation parses what it needs from the request, delegates to a
// RouterApiServicer and writes the service result to the response.
type RouterApiRouter interface {
	ComputeRoute(http.ResponseWriter, *http.Request)
	GetNetworkStats(http.ResponseWriter, *http.Request)
	GetConditionsStatus(http.ResponseWriter, *http.Request)
	GetHealth(http.ResponseWriter, *http.Request)
}

// RouterApiServicer holds the api actions. The controller stays transport
// only; everything that touches the routing engine lives behind this
// interface.
type RouterApiServicer interface {
	ComputeRoute(context.Context, RouteRequest) (ImplResponse, error)
	GetNetworkStats(context.Context) (ImplResponse, error)
	GetConditionsStatus(context.Context) (ImplResponse, error)
	GetHealth(context.Context) (ImplResponse, error)
}
