package errors

import (
	"errors"
	"net/http"

	"github.com/moderncanvas/dmsecretweapon-backend/internal/platform/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// HTTPStatus returns the HTTP status code for any error.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// UserMessage formats the user-facing message for an error using the i18n
// catalog for the given locale, defaulting to en-US if the locale is empty.
// Unknown errors render a generic message so internal detail never leaks.
func UserMessage(err error, locale string) string {
	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		return catalog.Format(string(appErr.Code), appErr.Metadata)
	}

	return "an unexpected error occurred"
}
