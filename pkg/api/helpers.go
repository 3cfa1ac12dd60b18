package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "stackecho/pkg/errors"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes a bounded request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidation("request body is required")
		}
		return apperrors.NewValidation(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func asAppError(err error, target **apperrors.AppError) bool {
	return errors.As(err, target)
}
