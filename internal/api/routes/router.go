package routes

import (
	"net/http"

	"github.com/medroute/navigator/internal/api/handlers"
	"github.com/medroute/navigator/internal/api/middleware"
	"github.com/medroute/navigator/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	routingHandler     *handlers.RoutingHandler
	triageHandler      *handlers.TriageHandler
	appointmentHandler *handlers.AppointmentHandler
	systemHandler      *handlers.SystemHandler
	geolocationHandler *handlers.GeolocationHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	routingHandler *handlers.RoutingHandler,
	triageHandler *handlers.TriageHandler,
	appointmentHandler *handlers.AppointmentHandler,
	systemHandler *handlers.SystemHandler,
	geolocationHandler *handlers.GeolocationHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		routingHandler:     routingHandler,
		triageHandler:      triageHandler,
		appointmentHandler: appointmentHandler,
		systemHandler:      systemHandler,
		geolocationHandler: geolocationHandler,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// System endpoints
	r.mux.HandleFunc("GET /api/health", r.systemHandler.Health)
	r.mux.HandleFunc("GET /api/departments", r.systemHandler.ListDepartments)
	r.mux.HandleFunc("GET /api/doctors", r.systemHandler.ListDoctors)
	r.mux.HandleFunc("GET /api/stats", r.systemHandler.Stats)

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.routingHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/nearby", r.routingHandler.GetNearbyFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}/capacity", r.routingHandler.GetFacilityCapacity)

	// Geolocation endpoints
	r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)

	// Routing endpoints
	r.mux.HandleFunc("POST /api/routing/emergency", r.routingHandler.RouteEmergency)
	r.mux.HandleFunc("POST /api/routing/optimal", r.routingHandler.RouteOptimal)

	// Triage endpoints
	r.mux.HandleFunc("POST /api/triage/assess", r.triageHandler.Assess)
	r.mux.HandleFunc("GET /api/triage/assessments/{id}", r.triageHandler.GetAssessment)
	r.mux.HandleFunc("PATCH /api/triage/assessments/{id}", r.triageHandler.PatchAssessment)

	// Appointment endpoints
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.BookAppointment)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.GetAppointment)
	r.mux.HandleFunc("PUT /api/appointments/{id}", r.appointmentHandler.UpdateAppointment)
	r.mux.HandleFunc("DELETE /api/appointments/{id}", r.appointmentHandler.DeleteAppointment)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflight requests get headers too
	handler = middleware.CORSMiddleware(handler)

	return handler
}
