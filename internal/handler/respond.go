package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	perr "sortrash/internal/errors"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes err as a {code, error} payload with the status its
// kind maps to.
func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, perr.WireFrom(err), perr.HTTPStatus(err))
}

// decodeJSON reads a JSON body into v and validates it.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return perr.Wrap(err, perr.KindInvalidArgument, "invalid JSON body")
	}
	if err := validate.Struct(v); err != nil {
		return perr.Wrap(err, perr.KindInvalidArgument, "missing required field")
	}
	return nil
}
