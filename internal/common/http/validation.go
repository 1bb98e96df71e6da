package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate decodes the JSON body into v and runs struct-tag
// validation. Returns false after writing the error response.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := DecodeJSON(r, v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid json")
		return false
	}

	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			WriteError(w, http.StatusBadRequest, "invalid field: "+errs[0].Field())
			return false
		}
		WriteError(w, http.StatusBadRequest, "invalid request")
		return false
	}

	return true
}

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrEmptyUUID
	}
	_, err := uuid.Parse(s)
	return err
}
