// Package router wires the HTTP surface: the chi route table, the
// HTML views, and the middleware chain (request logging, session
// resolution).
package router

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/tinyapp/internal/auth"
	"github.com/patric-chuzhbe/tinyapp/internal/logger"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

var viewNames = []string{
	"urls_index",
	"urls_new",
	"urls_show",
	"login",
	"register",
	"invalid_link",
	"not_found",
}

type urlDirectory interface {
	ShortenURL(ctx context.Context, userID, rawInput string) (*models.URL, error)
	UserURLs(ctx context.Context, userID string) (models.URLs, error)
	URLForOwner(ctx context.Context, userID, shortCode string) (*models.URL, error)
	UpdateLongURL(ctx context.Context, userID, shortCode, rawInput string) error
	DeleteURL(ctx context.Context, userID, shortCode string) error
	ResolveShortURL(ctx context.Context, shortCode string) (string, error)
	ShortURL(shortCode string) string
	Ping(ctx context.Context) error
}

type authService interface {
	Register(ctx context.Context, response http.ResponseWriter, email, password string) (*models.User, error)
	Login(ctx context.Context, response http.ResponseWriter, email, password string) (*models.User, error)
	Logout(response http.ResponseWriter, request *http.Request)
	UserByID(ctx context.Context, userID string) (*models.User, bool, error)
	ResolveUser(h http.Handler) http.Handler
}

type handler struct {
	urls  urlDirectory
	auth  authService
	views map[string]*template.Template
}

// New builds the application's HTTP handler.
func New(urls urlDirectory, authSvc authService) http.Handler {
	h := &handler{
		urls:  urls,
		auth:  authSvc,
		views: parseViews(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(authSvc.ResolveUser)

	router.Get(`/`, func(response http.ResponseWriter, request *http.Request) {
		http.Redirect(response, request, "/urls", http.StatusFound)
	})

	router.Get(`/urls`, h.getUrlsIndex)
	router.Get(`/urls/new`, h.getUrlsNew)
	router.Get(`/urls/{shortCode}`, h.getUrlsShow)
	router.Post(`/urls`, h.postUrls)
	router.Post(`/urls/{shortCode}`, h.postUrlsUpdate)
	router.Put(`/urls/{shortCode}`, h.postUrlsUpdate)
	router.Post(`/urls/{shortCode}/delete`, h.postUrlsDelete)
	router.Delete(`/urls/{shortCode}`, h.postUrlsDelete)

	router.Get(`/u/{shortCode}`, h.getRedirectToLongURL)

	router.Get(`/login`, h.getLogin)
	router.Post(`/login`, h.postLogin)
	router.Get(`/register`, h.getRegister)
	router.Post(`/register`, h.postRegister)
	router.Post(`/logout`, h.postLogout)
	router.Delete(`/logout`, h.postLogout)

	router.Get(`/ping`, h.getPing)

	router.NotFound(h.notFound)

	return router
}

func parseViews() map[string]*template.Template {
	views := make(map[string]*template.Template, len(viewNames))
	for _, name := range viewNames {
		views[name] = template.Must(template.ParseFS(
			templatesFS,
			"templates/layout.gohtml",
			"templates/"+name+".gohtml",
		))
	}

	return views
}

// viewData is the payload handed to every template.
type viewData struct {
	User     *models.User
	URLs     models.URLs
	Codes    []string
	URL      *models.URL
	ShortURL string
	Error    string
}

func (h *handler) render(
	response http.ResponseWriter,
	request *http.Request,
	status int,
	view string,
	data viewData,
) {
	if data.User == nil {
		data.User = h.currentUser(request)
	}

	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	response.WriteHeader(status)
	if err := h.views[view].ExecuteTemplate(response, "layout", data); err != nil {
		logger.Log.Errorln("error rendering the view:", view, err)
	}
}

// currentUser resolves the session user for view rendering. Nil means
// anonymous.
func (h *handler) currentUser(request *http.Request) *models.User {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		return nil
	}

	usr, found, err := h.auth.UserByID(request.Context(), userID)
	if err != nil || !found {
		return nil
	}

	return usr
}

func (h *handler) serverError(response http.ResponseWriter, err error) {
	logger.Log.Errorln("internal error:", err)
	http.Error(response, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *handler) notFound(response http.ResponseWriter, request *http.Request) {
	h.render(response, request, http.StatusNotFound, "not_found", viewData{})
}
