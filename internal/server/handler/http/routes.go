package http

import (
	"net/http"

	"github.com/atinyakov/NoteKeeper/internal/middleware"
	"github.com/atinyakov/NoteKeeper/internal/share"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Notes  *NoteHandler
	Tags   *TagHandler
	Media  *MediaHandler
	Shares *ShareHandler
	Export *ExportHandler
}

// AuthConfig holds the credentials checked by the router.
type AuthConfig struct {
	// JWTSecret verifies user bearer tokens on /api.
	JWTSecret []byte
	// ServiceKey guards the privileged functions.
	ServiceKey string
}

// NewRouter constructs the HTTP handler of the NoteKeeper API.
//
// Routes:
//
//	/api/...                              user API, bearer JWT required
//	GET|POST /shared/{token}              anonymous share page
//	GET /storage/{bucket}/*               public media
//	POST /functions/v1/get-shared-note    privileged fetch, service key required
//
// Middleware chain (applied in order):
//  1. RequestID and Recoverer
//  2. WithRequestLogging(logger)
//  3. AllowContentType for JSON and multipart bodies
func NewRouter(h Handlers, auth AuthConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.JWTAuth(auth.JWTSecret))

		r.Get("/notes", h.Notes.List)
		r.Post("/notes", h.Notes.Create)
		r.Delete("/trash", h.Notes.EmptyTrash)
		r.Route("/notes/{id}", func(r chi.Router) {
			r.Get("/", h.Notes.Get)
			r.Patch("/", h.Notes.Update)
			r.Delete("/", h.Notes.Delete)
			r.Post("/restore", h.Notes.Restore)
			r.Delete("/permanent", h.Notes.Purge)

			r.Get("/versions", h.Notes.Versions)
			r.Post("/versions", h.Notes.Snapshot)
			r.Post("/versions/{versionID}/restore", h.Notes.RestoreVersion)

			r.Get("/tags", h.Tags.ListForNote)
			r.Put("/tags/{tagID}", h.Tags.Attach)
			r.Delete("/tags/{tagID}", h.Tags.Detach)

			r.Get("/media", h.Media.List)
			r.Post("/media", h.Media.Upload)

			r.Get("/shares", h.Shares.List)
			r.Post("/shares", h.Shares.Create)
		})

		r.Get("/tags", h.Tags.List)
		r.Post("/tags", h.Tags.Create)
		r.Delete("/tags/{tagID}", h.Tags.Delete)

		r.Delete("/media/{mediaID}", h.Media.Remove)

		r.Post("/shares/{linkID}/toggle", h.Shares.Toggle)
		r.Delete("/shares/{linkID}", h.Shares.Revoke)

		r.Get("/export", h.Export.Download)
	})

	r.Get("/shared/{token}", h.Shares.View)
	r.Post("/shared/{token}", h.Shares.View)
	r.Get("/storage/{bucket}/*", h.Media.Serve)

	r.With(middleware.ServiceKeyAuth(auth.ServiceKey)).Post(share.FunctionPath, h.Shares.Function)

	return r
}
