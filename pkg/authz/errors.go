package authz

import (
	"fmt"

	"github.com/vantagecrm/vantage/pkg/serrors"
)

const errorCodeForbidden = "AUTHZ_FORBIDDEN"

// forbiddenError builds a standardized error for denied requests.
func forbiddenError(req Request) *serrors.Error {
	return serrors.NewError(
		errorCodeForbidden,
		"permission denied",
		fmt.Sprintf("subject=%s domain=%s object=%s action=%s", req.Subject, req.Domain, req.Object, req.Action),
	)
}

// configError standardizes configuration validation errors.
func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
