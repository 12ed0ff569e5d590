package routes

import (
	"net/http"

	"feedboard/app/controllers"
	"feedboard/app/middleware"
	"feedboard/app/realtime"
	"feedboard/app/services"
	"feedboard/app/storage"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Feed      *services.FeedService
	Auth      *services.AuthService
	Blobs     storage.BlobStore
	Hub       *realtime.Hub
	ImagesDir string
	GraphQL   http.Handler
	Log       zerolog.Logger
}

// Setup defines the application's routes and returns a router.
func Setup(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(middleware.Recoverer(d.Log))
	router.Use(middleware.CORS)

	feedController := controllers.NewFeedController(d.Feed, d.Blobs, d.Log)
	authController := controllers.NewAuthController(d.Auth, d.Log)

	// Auth endpoints
	router.HandleFunc("/auth/signup", authController.Signup).Methods("PUT")
	router.HandleFunc("/auth/login", authController.Login).Methods("POST")

	// Feed endpoints, all behind required authentication
	feed := router.NewRoute().Subrouter()
	feed.Use(middleware.Auth(d.Auth))
	feed.HandleFunc("/posts", feedController.Index).Methods("GET")
	feed.HandleFunc("/post", feedController.Create).Methods("POST")
	feed.HandleFunc("/post/{id:[0-9]+}", feedController.Show).Methods("GET")
	feed.HandleFunc("/post/{id:[0-9]+}", feedController.Update).Methods("PUT")
	feed.HandleFunc("/post/{id:[0-9]+}", feedController.Delete).Methods("DELETE")

	// GraphQL endpoint; auth is optional here, resolvers enforce it
	if d.GraphQL != nil {
		gq := router.NewRoute().Subrouter()
		gq.Use(middleware.AuthOptional(d.Auth))
		gq.Handle("/graphql", d.GraphQL).Methods("POST", "OPTIONS")
	}

	// Realtime socket
	if d.Hub != nil {
		router.Handle("/ws", realtime.NewSocketHandler(d.Hub, d.Log)).Methods("GET")
	}

	// Serve uploaded images
	router.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(d.ImagesDir))))

	return router
}

// StartServer starts the HTTP server on the specified address with the given router.
func StartServer(addr string, router http.Handler) error {
	return http.ListenAndServe(addr, router)
}
