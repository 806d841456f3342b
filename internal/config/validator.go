// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` right after it unmarshals the merged tree.
// Any failure aborts the container build, so a service never starts with
// a malformed listen address or a missing environment parameter.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

// validateStruct returns the validation errors for s, or nil.
func validateStruct(s *Settings) error {
	return v.Struct(s)
}
