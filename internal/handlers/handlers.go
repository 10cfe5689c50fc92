// Package handlers translates HTTP requests into service calls. Every error
// reply has the shape {"message": "..."}.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/evofit/evofit-backend/internal/middleware"
	"github.com/evofit/evofit-backend/internal/services"
	"github.com/evofit/evofit-backend/pkg/utils"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type Handler struct {
	svc    *services.Services
	tokens middleware.TokenVerifier
	log    logrus.FieldLogger
}

func New(svc *services.Services, tokens middleware.TokenVerifier, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, log: log}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSONResponse(w, status, data)
}

// decodeJSON reads the body into dst and answers 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the id Authenticate put in the context.
func currentUser(r *http.Request) string {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

// respondError maps service errors to statuses. Anything unrecognised is a
// 500 carrying the underlying message.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var input *services.InputError
	switch {
	case errors.As(err, &input):
		utils.WriteMessage(w, http.StatusBadRequest, input.Message)
	case errors.Is(err, services.ErrConflict):
		utils.WriteMessage(w, http.StatusConflict, "Username or email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.WriteMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUserNotFound):
		utils.WriteMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPostNotFound):
		utils.WriteMessage(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrLookupFailed):
		utils.WriteMessage(w, http.StatusBadGateway, "Nutritionix search failed")
	case errors.Is(err, services.ErrUploadUnavailable):
		utils.WriteMessage(w, http.StatusServiceUnavailable, "Image uploads are not configured")
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		utils.WriteMessage(w, http.StatusInternalServerError, err.Error())
	}
}
