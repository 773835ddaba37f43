package router

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/tinyapp/internal/auth"
	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// sortedCodes orders the listing deterministically.
func sortedCodes(urls models.URLs) []string {
	codes, _ := funk.Keys(urls).([]string)
	sort.Strings(codes)

	return codes
}

// getUrlsIndex renders the caller's listing. Anonymous visitors get
// the empty listing with a sign-in prompt, not an error.
func (h *handler) getUrlsIndex(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())

	urls, err := h.urls.UserURLs(request.Context(), userID)
	if err != nil {
		h.serverError(response, err)
		return
	}

	h.render(response, request, http.StatusOK, "urls_index", viewData{
		URLs:  urls,
		Codes: sortedCodes(urls),
	})
}

func (h *handler) getUrlsNew(response http.ResponseWriter, request *http.Request) {
	if _, ok := auth.UserIDFromContext(request.Context()); !ok {
		http.Redirect(response, request, "/login", http.StatusFound)
		return
	}

	h.render(response, request, http.StatusOK, "urls_new", viewData{})
}

// getUrlsShow renders the edit view of a single record. A record the
// caller does not own is indistinguishable from an absent one: both
// soft-fail back to the listing.
func (h *handler) getUrlsShow(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	shortCode := chi.URLParam(request, "shortCode")

	record, err := h.urls.URLForOwner(request.Context(), userID, shortCode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Redirect(response, request, "/urls", http.StatusFound)
			return
		}
		h.serverError(response, err)
		return
	}

	h.render(response, request, http.StatusOK, "urls_show", viewData{
		URL:      record,
		ShortURL: h.urls.ShortURL(record.ShortCode),
	})
}

func (h *handler) postUrls(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		http.Redirect(response, request, "/login", http.StatusFound)
		return
	}

	record, err := h.urls.ShortenURL(request.Context(), userID, request.FormValue("longURL"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidURL) {
			http.Error(response, err.Error(), http.StatusBadRequest)
			return
		}
		h.serverError(response, err)
		return
	}

	http.Redirect(response, request, "/urls/"+record.ShortCode, http.StatusFound)
}

func (h *handler) postUrlsUpdate(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	shortCode := chi.URLParam(request, "shortCode")

	err := h.urls.UpdateLongURL(request.Context(), userID, shortCode, request.FormValue("newURL"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			http.Redirect(response, request, "/urls", http.StatusFound)
		case errors.Is(err, models.ErrInvalidURL):
			http.Error(response, err.Error(), http.StatusBadRequest)
		default:
			h.serverError(response, err)
		}
		return
	}

	http.Redirect(response, request, "/urls/"+shortCode, http.StatusFound)
}

func (h *handler) postUrlsDelete(response http.ResponseWriter, request *http.Request) {
	userID, _ := auth.UserIDFromContext(request.Context())
	shortCode := chi.URLParam(request, "shortCode")

	err := h.urls.DeleteURL(request.Context(), userID, shortCode)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		h.serverError(response, err)
		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

// getRedirectToLongURL serves the public short links. No session or
// ownership check; an unknown shortCode renders the invalid-link page
// instead of crashing on the missing record.
func (h *handler) getRedirectToLongURL(response http.ResponseWriter, request *http.Request) {
	shortCode := chi.URLParam(request, "shortCode")

	longURL, err := h.urls.ResolveShortURL(request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.render(response, request, http.StatusNotFound, "invalid_link", viewData{})
			return
		}
		h.serverError(response, err)
		return
	}

	http.Redirect(response, request, longURL, http.StatusFound)
}

func (h *handler) getLogin(response http.ResponseWriter, request *http.Request) {
	if _, ok := auth.UserIDFromContext(request.Context()); ok {
		http.Redirect(response, request, "/urls", http.StatusFound)
		return
	}

	h.render(response, request, http.StatusOK, "login", viewData{})
}

func (h *handler) postLogin(response http.ResponseWriter, request *http.Request) {
	_, err := h.auth.Login(
		request.Context(),
		response,
		request.FormValue("email"),
		request.FormValue("password"),
	)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			h.render(response, request, http.StatusForbidden, "login", viewData{
				Error: err.Error(),
			})
			return
		}
		h.serverError(response, err)
		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (h *handler) getRegister(response http.ResponseWriter, request *http.Request) {
	if _, ok := auth.UserIDFromContext(request.Context()); ok {
		http.Redirect(response, request, "/urls", http.StatusFound)
		return
	}

	h.render(response, request, http.StatusOK, "register", viewData{})
}

func (h *handler) postRegister(response http.ResponseWriter, request *http.Request) {
	_, err := h.auth.Register(
		request.Context(),
		response,
		request.FormValue("email"),
		request.FormValue("password"),
	)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			h.render(response, request, http.StatusBadRequest, "register", viewData{
				Error: err.Error(),
			})
			return
		}
		h.serverError(response, err)
		return
	}

	http.Redirect(response, request, "/urls", http.StatusFound)
}

func (h *handler) postLogout(response http.ResponseWriter, request *http.Request) {
	h.auth.Logout(response, request)
	http.Redirect(response, request, "/urls", http.StatusFound)
}

// getPing reports storage health.
func (h *handler) getPing(response http.ResponseWriter, request *http.Request) {
	if err := h.urls.Ping(request.Context()); err != nil {
		h.serverError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}
