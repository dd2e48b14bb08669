// Package schemas validates JSON artifacts, such as keyword rule tables,
// against their JSON Schema definitions.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ResolveSchemaPath attempts to find a schema file by trying multiple common
// path resolutions: relative to the current working directory, then one and
// two levels up. Returns the first path that exists, or empty string if none
// found. CLI commands and tests run from different directories, so a fixed
// repo-relative path alone is not enough.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError reports which fields of a document failed schema validation.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError reports a problem loading or parsing the schema itself,
// as opposed to the document failing validation.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateJSON validates a JSON file against a JSON Schema file.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbsPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to resolve schema path: %w", err)
	}

	jsonAbsPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	if _, err := os.Stat(schemaAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("schema file not found: %s", schemaAbsPath)
	}
	if _, err := os.Stat(jsonAbsPath); os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", jsonAbsPath)
	}

	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaAbsPath)
	documentLoader := gojsonschema.NewReferenceLoader("file://" + jsonAbsPath)

	return validate(schemaAbsPath, schemaLoader, documentLoader)
}

// ValidateJSONString validates JSON string content against schema string content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	return validate("(string schema)", schemaLoader, documentLoader)
}

func validate(schemaPath string, schemaLoader, documentLoader gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// Schema-level failure (invalid syntax, unresolvable $ref) rather
		// than the document failing validation.
		return &SchemaLoadError{
			Path:    schemaPath,
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
