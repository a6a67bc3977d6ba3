package routes

import (
	"encoding/json"
	"net/http"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/repositories"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// Options configures the parts of the router that do not depend on the store.
type Options struct {
	// AllowedOrigins is "*" or a comma separated list of origins.
	AllowedOrigins string
	// StaticDir, when set, is served for every GET that matches no API route.
	StaticDir string
	// Driver names the store driver reported by /health.
	Driver string
}

// SetupRoutes builds the API router over the given repositories and wraps it
// in the request middleware. Middleware runs outside the router so that
// preflight requests and unmatched routes are logged and answered too.
func SetupRoutes(posts repositories.PostRepository, comments repositories.CommentRepository, opts Options) http.Handler {
	postController := controllers.NewPostController(services.NewPostService(posts))
	commentController := controllers.NewCommentController(services.NewCommentService(comments))

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		controllers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := router.NewRoute().Subrouter()
	api.Use(middleware.ContentTypeJSON)

	api.HandleFunc("/posts", postController.Index).Methods("GET")
	api.HandleFunc("/posts", postController.Create).Methods("POST")
	api.HandleFunc("/comments/{postId}", commentController.Index).Methods("GET")
	api.HandleFunc("/comments", commentController.Create).Methods("POST")
	api.HandleFunc("/health", health(opts.Driver)).Methods("GET")

	if opts.StaticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir))).Methods("GET")
	}

	var handler http.Handler = router
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.Logger(handler)
	handler = middleware.RequestID(handler)
	return handler
}

func health(driver string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "store": driver})
	}
}
