package riverapi

import (
	"encoding/json"
	"net/http"
)

// RouterApiController binds http requests to an api service and writes the
// service results to the http response.
type RouterApiController struct {
	service      RouterApiServicer
	errorHandler ErrorHandler
}

// RouterApiOption for how the controller is set up.
type RouterApiOption func(*RouterApiController)

// WithRouterApiErrorHandler injects an ErrorHandler into the controller.
func WithRouterApiErrorHandler(h ErrorHandler) RouterApiOption {
	return func(c *RouterApiController) {
		c.errorHandler = h
	}
}

// NewRouterApiController creates an api controller.
func NewRouterApiController(s RouterApiServicer, opts ...RouterApiOption) Router {
	controller := &RouterApiController{
		service:      s,
		errorHandler: DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(controller)
	}
	return controller
}

// Routes returns all the api routes for the RouterApiController.
func (c *RouterApiController) Routes() Routes {
	return Routes{
		{
			"ComputeRoute",
			http.MethodPost,
			"/routes",
			c.ComputeRoute,
		},
		{
			"GetNetworkStats",
			http.MethodGet,
			"/network/stats",
			c.GetNetworkStats,
		},
		{
			"GetConditionsStatus",
			http.MethodGet,
			"/conditions/status",
			c.GetConditionsStatus,
		},
		{
			"GetHealth",
			http.MethodGet,
			"/health",
			c.GetHealth,
		},
	}
}

// ComputeRoute - compute a new river route
func (c *RouterApiController) ComputeRoute(w http.ResponseWriter, r *http.Request) {
	routeRequestParam := RouteRequest{}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&routeRequestParam); err != nil {
		c.errorHandler(w, r, &ParsingError{Err: err}, nil)
		return
	}
	if err := AssertRouteRequestRequired(routeRequestParam); err != nil {
		c.errorHandler(w, r, err, nil)
		return
	}
	result, err := c.service.ComputeRoute(r.Context(), routeRequestParam)
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	EncodeJSONResponse(result.Body, &result.Code, w)
}

func (c *RouterApiController) GetNetworkStats(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetNetworkStats(r.Context())
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	EncodeJSONResponse(result.Body, &result.Code, w)
}

func (c *RouterApiController) GetConditionsStatus(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetConditionsStatus(r.Context())
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	EncodeJSONResponse(result.Body, &result.Code, w)
}

func (c *RouterApiController) GetHealth(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.GetHealth(r.Context())
	if err != nil {
		c.errorHandler(w, r, err, &result)
		return
	}
	EncodeJSONResponse(result.Body, &result.Code, w)
}
