package riverapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// A Route defines the parameters for one api endpoint.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

type Routes []Route

// Router groups the routes one controller exposes.
type Router interface {
	Routes() Routes
}

// NewRouter mounts all controller routes on a mux router.
func NewRouter(routers ...Router) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, api := range routers {
		for _, route := range api.Routes() {
			router.
				Methods(route.Method).
				Path(route.Pattern).
				Name(route.Name).
				Handler(route.HandlerFunc)
		}
	}
	return router
}

// ImplResponse carries a status code and body from a service method back
// to the controller.
type ImplResponse struct {
	Code int
	Body interface{}
}

func Response(code int, body interface{}) ImplResponse {
	return ImplResponse{Code: code, Body: body}
}

// EncodeJSONResponse writes the body as JSON with the given status code.
func EncodeJSONResponse(body interface{}, status *int, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if status != nil {
		w.WriteHeader(*status)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if body == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(body)
}
