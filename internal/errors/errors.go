// Package errors provides centralized error definitions and error handling utilities
// for versioner. It defines release-specific errors, semantic error types,
// error constructors with context wrapping, and error classification helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Domain-specific errors represent failures of a release stage:
//   - GitError: errors from git commands (commit, tag, push)
//   - BumpError: errors while computing the next version from history
//   - VersionError: errors while writing manifests and changelogs
//   - PostTargetError: a post target reported a failing result
//
// Semantic errors represent common error conditions:
//   - NotFoundError: resource not found (project, target)
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewGitError("push failed", cause).WithRemote("origin").WithBranch("main")
//	err := errors.NewPostTargetError("post target failed", errors.ErrPostTargetFailed).
//		WithProject("pkg").WithTarget("publish")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrNothingToPush) { ... }
//
//	var ptErr *errors.PostTargetError
//	if errors.As(err, &ptErr) { ... }
//
// # Error Classification
//
// Release errors are never retryable: bump analysis is deterministic and a
// blind retry of a mutation or push is unsafe. [IsRetryable] and
// [GetSeverity] exist so callers can decide how loudly to report.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Git-related sentinel errors
var (
	// ErrNotGitRepository indicates that the directory is not a git repository.
	ErrNotGitRepository = New("not a git repository")
	// ErrNothingToPush indicates the remote already has every local commit and tag.
	ErrNothingToPush = New("nothing to push")
	// ErrAtomicPushUnsupported indicates the remote rejected an atomic push.
	ErrAtomicPushUnsupported = New("remote does not support atomic push")
)

// Version-related sentinel errors
var (
	// ErrInvalidVersion indicates a string is not a valid semantic version.
	ErrInvalidVersion = New("invalid semantic version")
	// ErrVersionUnchanged indicates the requested version is not newer than the last release.
	ErrVersionUnchanged = New("version is not greater than the previous release")
	// ErrNothingToRelease indicates no manifest or changelog was written for a release.
	ErrNothingToRelease = New("nothing to release")
)

// Workspace-related sentinel errors
var (
	// ErrProjectNotFound indicates that a project is not part of the workspace.
	ErrProjectNotFound = New("project not found")
	// ErrTargetNotFound indicates that a project does not define a target.
	ErrTargetNotFound = New("target not found")
	// ErrPostTargetFailed indicates a post target reported a non-success result.
	ErrPostTargetFailed = New("post target failed")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ReleaseError is the base interface for all versioner errors.
type ReleaseError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message   string
	cause     error
	severity  Severity
	retryable bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

func newBase(message string, cause error, severity Severity) baseError {
	return baseError{
		message:  message,
		cause:    cause,
		severity: severity,
	}
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// GitError represents errors related to git operations.
//
// Example:
//
//	err := errors.NewGitError("failed to push", cause)
//	err = err.WithRemote("origin").WithBranch("main")
type GitError struct {
	baseError
	Branch     string
	Remote     string
	Repository string
	GitOutput  string // Captured git command output
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{baseError: newBase(message, cause, SeverityError)}
}

// WithBranch adds a branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithRemote adds a remote name to the error context.
func (e *GitError) WithRemote(remote string) *GitError {
	e.Remote = remote
	return e
}

// WithRepository adds a repository path to the error context.
func (e *GitError) WithRepository(path string) *GitError {
	e.Repository = path
	return e
}

// WithGitOutput adds git command output to the error context.
func (e *GitError) WithGitOutput(output string) *GitError {
	e.GitOutput = strings.TrimSpace(output)
	return e
}

// WithSeverity sets the error severity.
func (e *GitError) WithSeverity(s Severity) *GitError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	var parts []string
	if e.Remote != "" {
		parts = append(parts, fmt.Sprintf("remote=%s", e.Remote))
	}
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Repository != "" {
		parts = append(parts, fmt.Sprintf("repo=%s", e.Repository))
	}

	msg := e.format("git error", parts)
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.GitOutput)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *GitError) Is(target error) bool {
	if _, ok := target.(*GitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// BumpError represents a failure while computing the next version.
type BumpError struct {
	baseError
	Project     string
	TagPrefix   string
	ReleaseType string
}

// NewBumpError creates a new BumpError.
func NewBumpError(message string, cause error) *BumpError {
	return &BumpError{baseError: newBase(message, cause, SeverityError)}
}

// WithProject adds the project root being analyzed.
func (e *BumpError) WithProject(project string) *BumpError {
	e.Project = project
	return e
}

// WithTagPrefix adds the tag prefix used to filter history.
func (e *BumpError) WithTagPrefix(prefix string) *BumpError {
	e.TagPrefix = prefix
	return e
}

// WithReleaseType adds the requested release type.
func (e *BumpError) WithReleaseType(releaseType string) *BumpError {
	e.ReleaseType = releaseType
	return e
}

// Error returns the formatted error message.
func (e *BumpError) Error() string {
	var parts []string
	if e.Project != "" {
		parts = append(parts, fmt.Sprintf("project=%s", e.Project))
	}
	if e.TagPrefix != "" {
		parts = append(parts, fmt.Sprintf("prefix=%s", e.TagPrefix))
	}
	if e.ReleaseType != "" {
		parts = append(parts, fmt.Sprintf("release=%s", e.ReleaseType))
	}
	return e.format("bump error", parts)
}

// Is checks if this error matches the target.
func (e *BumpError) Is(target error) bool {
	if _, ok := target.(*BumpError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// VersionError represents a failure while applying a version to disk.
// Writes that already happened are not rolled back.
type VersionError struct {
	baseError
	Project string
	Version string
	File    string
}

// NewVersionError creates a new VersionError.
func NewVersionError(message string, cause error) *VersionError {
	return &VersionError{baseError: newBase(message, cause, SeverityCritical)}
}

// WithProject adds the project name to the error context.
func (e *VersionError) WithProject(project string) *VersionError {
	e.Project = project
	return e
}

// WithVersion adds the version being applied.
func (e *VersionError) WithVersion(version string) *VersionError {
	e.Version = version
	return e
}

// WithFile adds the file being written.
func (e *VersionError) WithFile(file string) *VersionError {
	e.File = file
	return e
}

// Error returns the formatted error message.
func (e *VersionError) Error() string {
	var parts []string
	if e.Project != "" {
		parts = append(parts, fmt.Sprintf("project=%s", e.Project))
	}
	if e.Version != "" {
		parts = append(parts, fmt.Sprintf("version=%s", e.Version))
	}
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}
	return e.format("version error", parts)
}

// Is checks if this error matches the target.
func (e *VersionError) Is(target error) bool {
	if _, ok := target.(*VersionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// PostTargetError identifies the project/target pair whose execution failed.
type PostTargetError struct {
	baseError
	Project       string
	Target        string
	Configuration string
}

// NewPostTargetError creates a new PostTargetError.
func NewPostTargetError(message string, cause error) *PostTargetError {
	return &PostTargetError{baseError: newBase(message, cause, SeverityError)}
}

// WithProject adds the project name to the error context.
func (e *PostTargetError) WithProject(project string) *PostTargetError {
	e.Project = project
	return e
}

// WithTarget adds the target name to the error context.
func (e *PostTargetError) WithTarget(target string) *PostTargetError {
	e.Target = target
	return e
}

// WithConfiguration adds the target configuration to the error context.
func (e *PostTargetError) WithConfiguration(configuration string) *PostTargetError {
	e.Configuration = configuration
	return e
}

// Error returns the formatted error message.
func (e *PostTargetError) Error() string {
	id := e.Project + ":" + e.Target
	if e.Configuration != "" {
		id += ":" + e.Configuration
	}
	return e.format("post target error", []string{fmt.Sprintf("target=%q", id)})
}

// Is checks if this error matches the target.
func (e *PostTargetError) Is(target error) bool {
	if _, ok := target.(*PostTargetError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("project", "pkg-a")
//	fmt.Println(err) // "project 'pkg-a' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError:    newBase(fmt.Sprintf("%s '%s' not found", resourceType, resourceID), nil, SeverityWarning),
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("remote is required when pushing").WithField("remote")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError: newBase(message, nil, SeverityWarning)}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var releaseErr ReleaseError
	if As(err, &releaseErr) {
		return releaseErr.IsRetryable()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement ReleaseError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var releaseErr ReleaseError
	if As(err, &releaseErr) {
		return releaseErr.Severity()
	}
	return SeverityError
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
