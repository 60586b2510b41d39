package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	cadenceerrors "github.com/alexisbeaulieu97/cadence/pkg/errors"
)

// convertValidationError normalizes validator errors into cadence validation errors.
func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := documentFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return cadenceerrors.NewValidationError(field, msg, err)
	}

	return cadenceerrors.NewValidationError("document", err.Error(), err)
}

// documentFieldName drops the root struct name: "Document.targets[0].name"
// becomes "targets[0].name".
func documentFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}

func fieldForTarget(tier string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", tier, index, field)
}
