// Package errors provides custom error types for the TOIL registry pipeline.
// These errors enable programmatic error checking and itemized validation
// reports throughout the build, validate, check, and sync commands.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join wraps the standard library errors.Join.
var Join = errors.Join

// Is wraps the standard library errors.Is.
var Is = errors.Is

// As wraps the standard library errors.As.
var As = errors.As

// Common sentinel errors for the registry system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicate indicates that a resource appears more than once
	ErrDuplicate = errors.New("duplicate")

	// ErrDrift indicates that committed artifacts diverge from generated ones
	ErrDrift = errors.New("drift detected")

	// ErrSchema indicates a schema conformance failure
	ErrSchema = errors.New("schema violation")
)

// DuplicateTableError indicates that the canonical index document contains
// more than one qualifying product table.
type DuplicateTableError struct {
	Path  string
	Count int
}

// Error implements the error interface
func (e *DuplicateTableError) Error() string {
	return fmt.Sprintf("%s: found %d qualifying index tables, expected exactly one", e.Path, e.Count)
}

// Is implements errors.Is support
func (e *DuplicateTableError) Is(target error) bool {
	return target == ErrDuplicate
}

// MissingTableError indicates that no qualifying product table was found in
// the canonical index document.
type MissingTableError struct {
	Path string
}

// Error implements the error interface
func (e *MissingTableError) Error() string {
	return fmt.Sprintf("%s: no qualifying index table found", e.Path)
}

// Is implements errors.Is support
func (e *MissingTableError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedRowError indicates a table row whose column count does not match
// the header row.
type MalformedRowError struct {
	Path string
	Line int
	Got  int
	Want int
}

// Error implements the error interface
func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s:%d: malformed row: %d columns, header has %d", e.Path, e.Line, e.Got, e.Want)
}

// Is implements errors.Is support
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidIDFormatError indicates a TOIL ID that does not match the required
// identifier pattern.
type InvalidIDFormatError struct {
	ID string
}

// Error implements the error interface
func (e *InvalidIDFormatError) Error() string {
	return fmt.Sprintf("invalid TOIL ID format: %q", e.ID)
}

// Is implements errors.Is support
func (e *InvalidIDFormatError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DuplicateIDError indicates a TOIL ID that appears in more than one index row.
type DuplicateIDError struct {
	ID    string
	Count int
}

// Error implements the error interface
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate TOIL ID in index: %s (%d rows)", e.ID, e.Count)
}

// Is implements errors.Is support
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicate
}

// MissingRecordError indicates an index entry without a corresponding record file.
type MissingRecordError struct {
	ID   string
	Path string
}

// Error implements the error interface
func (e *MissingRecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("missing record file for %s: %s", e.ID, e.Path)
	}
	return fmt.Sprintf("missing record file for %s", e.ID)
}

// Is implements errors.Is support
func (e *MissingRecordError) Is(target error) bool {
	return target == ErrNotFound
}

// OrphanRecordError indicates a record file without a corresponding index entry.
type OrphanRecordError struct {
	ID   string
	Path string
}

// Error implements the error interface
func (e *OrphanRecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("orphan record %s has no index entry: %s", e.ID, e.Path)
	}
	return fmt.Sprintf("orphan record %s has no index entry", e.ID)
}

// Is implements errors.Is support
func (e *OrphanRecordError) Is(target error) bool {
	return target == ErrNotFound
}

// FieldMismatchError indicates disagreement between an index entry and its
// record for a field that must match exactly.
type FieldMismatchError struct {
	ID          string
	Field       string
	IndexValue  string
	RecordValue string
}

// Error implements the error interface
func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("%s: field %s mismatch: index %q, record %q", e.ID, e.Field, e.IndexValue, e.RecordValue)
}

// Is implements errors.Is support
func (e *FieldMismatchError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidStatusError indicates a lifecycle status outside the recognized set.
type InvalidStatusError struct {
	ID      string
	Status  string
	Allowed []string
}

// Error implements the error interface
func (e *InvalidStatusError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("%s: invalid status %q (allowed: %s)", e.ID, e.Status, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s: invalid status %q", e.ID, e.Status)
}

// Is implements errors.Is support
func (e *InvalidStatusError) Is(target error) bool {
	return target == ErrInvalidInput
}

// RecordFieldMissingError indicates a record file lacking a required field.
type RecordFieldMissingError struct {
	Path  string
	Field string
}

// Error implements the error interface
func (e *RecordFieldMissingError) Error() string {
	return fmt.Sprintf("%s: required record field missing: %s", e.Path, e.Field)
}

// Is implements errors.Is support
func (e *RecordFieldMissingError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DuplicateRecordFileError indicates two record files resolving to the same
// TOIL ID.
type DuplicateRecordFileError struct {
	ID    string
	Paths []string
}

// Error implements the error interface
func (e *DuplicateRecordFileError) Error() string {
	return fmt.Sprintf("duplicate record files for %s: %s", e.ID, strings.Join(e.Paths, ", "))
}

// Is implements errors.Is support
func (e *DuplicateRecordFileError) Is(target error) bool {
	return target == ErrDuplicate
}

// SchemaViolationError indicates that an export artifact does not conform to
// the declared schema document.
type SchemaViolationError struct {
	Path       string // JSON path of the failing element, e.g. products[2].toil_id
	Constraint string // constraint that failed, e.g. pattern, required, enum
	Detail     string
}

// Error implements the error interface
func (e *SchemaViolationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("schema violation at %s (%s): %s", e.Path, e.Constraint, e.Detail)
	}
	return fmt.Sprintf("schema violation at %s (%s)", e.Path, e.Constraint)
}

// Is implements errors.Is support
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchema
}

// DriftDetectedError indicates that a committed artifact differs from the
// artifact regenerated from canonical sources.
type DriftDetectedError struct {
	Artifact string // artifact path relative to the registry root
	Diff     string // human-readable diff of committed vs generated
}

// Error implements the error interface
func (e *DriftDetectedError) Error() string {
	if e.Diff != "" {
		return fmt.Sprintf("drift detected in %s:\n%s", e.Artifact, e.Diff)
	}
	return fmt.Sprintf("drift detected in %s", e.Artifact)
}

// Is implements errors.Is support
func (e *DriftDetectedError) Is(target error) bool {
	return target == ErrDrift
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "markdown"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate checks if an error reports a duplicated resource
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsValidation checks if an error reports invalid input
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDrift checks if an error reports artifact drift
func IsDrift(err error) bool {
	return errors.Is(err, ErrDrift)
}

// IsSchemaViolation checks if an error reports a schema conformance failure
func IsSchemaViolation(err error) bool {
	return errors.Is(err, ErrSchema)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, File: file, Message: err.Error(), Err: err}
}
