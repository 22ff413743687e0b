package apperrors

import "fmt"

// ErrBind represents a failure to bind the admin listener to its port.
type ErrBind struct {
	Port int
	Err  error
}

// Error implements the error interface.
func (e *ErrBind) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("admin service failed to bind port %d: %v", e.Port, e.Err)
	}
	return fmt.Sprintf("admin service failed to bind port %d", e.Port)
}

// Unwrap returns the underlying listen error.
func (e *ErrBind) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrBind) Is(target error) bool {
	_, ok := target.(*ErrBind)
	return ok
}

// NewBindError creates a new ErrBind.
func NewBindError(port int, err error) *ErrBind {
	return &ErrBind{
		Port: port,
		Err:  err,
	}
}

// ErrBuildMetadata is returned when the bundled build metadata cannot be read or parsed.
type ErrBuildMetadata struct {
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *ErrBuildMetadata) Error() string {
	return fmt.Sprintf("failed to load build metadata from %s: %v", e.Resource, e.Err)
}

// Unwrap returns the underlying read or parse error.
func (e *ErrBuildMetadata) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrBuildMetadata) Is(target error) bool {
	_, ok := target.(*ErrBuildMetadata)
	return ok
}

// ErrUnknownSink is returned when a stats sink provider name is not registered.
type ErrUnknownSink struct {
	Name       string
	Registered []string
}

// Error implements the error interface.
func (e *ErrUnknownSink) Error() string {
	return fmt.Sprintf("stats: unknown sink provider %q (registered: %v)", e.Name, e.Registered)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnknownSink) Is(target error) bool {
	_, ok := target.(*ErrUnknownSink)
	return ok
}
