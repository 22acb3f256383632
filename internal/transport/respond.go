package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/category"
	"storefront/internal/feedback"
	"storefront/internal/logger"
	"storefront/internal/media"
	"storefront/internal/product"
	"storefront/internal/user"
	"storefront/internal/utils"

	"go.uber.org/zap"
)

var (
	errBadJSON     = errors.New("invalid JSON body")
	errBadForm     = errors.New("invalid form data")
	errInvalidForm = errors.New("invalid form field")
)

var statusByErr = []struct {
	err    error
	status int
}{
	{product.ErrProductNotFound, http.StatusNotFound},
	{category.ErrCategoryNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},

	{category.ErrCategoryExists, http.StatusConflict},
	{category.ErrCategoryInUse, http.StatusConflict},
	{user.ErrEmailExists, http.StatusConflict},

	{user.ErrInvalidCredentials, http.StatusUnauthorized},

	{errBadJSON, http.StatusBadRequest},
	{errBadForm, http.StatusBadRequest},
	{errInvalidForm, http.StatusBadRequest},
	{product.ErrNameRequired, http.StatusBadRequest},
	{product.ErrInvalidPrice, http.StatusBadRequest},
	{product.ErrInvalidStock, http.StatusBadRequest},
	{product.ErrCategoryRequired, http.StatusBadRequest},
	{product.ErrInvalidCategory, http.StatusBadRequest},
	{product.ErrNoFields, http.StatusBadRequest},
	{category.ErrNameRequired, http.StatusBadRequest},
	{category.ErrNoFields, http.StatusBadRequest},
	{feedback.ErrMissingField, http.StatusBadRequest},
	{feedback.ErrInvalidRating, http.StatusBadRequest},
	{feedback.ErrInvalidEmail, http.StatusBadRequest},
	{user.ErrPasswordMismatch, http.StatusBadRequest},
	{user.ErrMissingField, http.StatusBadRequest},
	{media.ErrTooManyFiles, http.StatusBadRequest},
	{media.ErrNotAnImage, http.StatusBadRequest},
}

func statusFor(err error) int {
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors to a status and a {"message"} body.
// Anything unknown is logged and reported as a plain server error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Server error", status)
		return
	}
	utils.WriteJSONError(w, err.Error(), status)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}
