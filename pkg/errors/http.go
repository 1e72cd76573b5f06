package errors

import "net/http"

// HTTPStatus maps an error to the HTTP status code the API should respond with.
// Validation and unknown-strategy errors are client errors, missing runs are
// 404, everything else is a 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch code := GetCode(err); {
	case code == ErrCodeRunNotFound:
		return http.StatusNotFound
	case code == ErrCodeUnknownStrategy:
		return http.StatusBadRequest
	case code >= 100 && code < 200:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
