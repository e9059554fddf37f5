package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/platewise/pos-sync-backend/internal/api/dto"
)

var validate = validator.New()

// BaseHandler provides common functionality for all handlers.
type BaseHandler struct {
	Logger *slog.Logger
}

// WriteJSON writes a JSON response with the given status code.
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteError writes an error response with the given status code.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, apiErr dto.APIError) {
	h.WriteJSON(w, status, apiErr)
}

// DecodeAndValidate decodes the request body into dst and validates it.
func (h *BaseHandler) DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("field %s failed validation on %s", errs[0].Field(), errs[0].Tag())
		}
		return err
	}
	return nil
}
