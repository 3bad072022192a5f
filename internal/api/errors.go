package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind partitions API failures into the categories the rest of the
// pipeline dispatches on.
type Kind int

const (
	// KindAPI is the fallback for failures that fit no other category.
	KindAPI Kind = iota

	// KindConnect is a transport-level failure before any HTTP status
	// was received.
	KindConnect

	// KindServer is a 5xx response.
	KindServer

	// KindClient is a 4xx response other than 401.
	KindClient

	// KindUnauthorized is a 401 response; the credentials are invalid.
	KindUnauthorized

	// KindNotAvailable means the requested provider is unknown.
	KindNotAvailable

	// KindImport is a target-store insert failure.
	KindImport
)

// Error is a typed API failure. It carries a diagnostic message for logs
// and a distinct short user-facing message for the host to surface.
type Error struct {
	Kind        Kind
	Module      string
	Provider    string
	StatusCode  int
	Message     string
	UserMessage string

	// Context holds request url/method/body for observability.
	Context map[string]string

	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%s): %s (status %d)",
			e.Module, e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s (%s): %s", e.Module, e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err (or any error in its chain) is an *Error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsUnauthorized reports whether err is a credentials failure.
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

// RequestContext carries the originating request's details onto a
// classified error.
type RequestContext struct {
	URL    string
	Method string
	Body   string
}

func (rc RequestContext) toMap() map[string]string {
	return map[string]string{
		"url":    rc.URL,
		"method": rc.Method,
		"body":   rc.Body,
	}
}

// Classifier maps transport and HTTP failures for one provider into typed
// errors.
type Classifier struct {
	// Module names the component raising the error.
	Module string

	// Provider is the provider display name used in messages.
	Provider string

	// SubdomainBased refines 404 errors: on a subdomain-addressed
	// provider a 404 usually means the subdomain itself is wrong.
	SubdomainBased bool
}

// Connect classifies a transport-level failure.
func (c *Classifier) Connect(rc RequestContext, err error) *Error {
	return &Error{
		Kind:        KindConnect,
		Module:      c.Module,
		Provider:    c.Provider,
		Message:     fmt.Sprintf("connection failed: %v", err),
		UserMessage: fmt.Sprintf("Could not connect to %s. Please try again later.", c.Provider),
		Context:     rc.toMap(),
		Err:         err,
	}
}

// Status classifies a non-2xx HTTP response.
func (c *Classifier) Status(rc RequestContext, status int, body string) *Error {
	e := &Error{
		Module:     c.Module,
		Provider:   c.Provider,
		StatusCode: status,
		Message:    fmt.Sprintf("unexpected status %d: %s", status, body),
		Context:    rc.toMap(),
	}

	switch {
	case status >= 500:
		e.Kind = KindServer
		e.UserMessage = fmt.Sprintf("%s is currently unavailable. Please try again later.", c.Provider)
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = fmt.Sprintf("authentication failed (401): %s", body)
		e.UserMessage = fmt.Sprintf("Your %s credentials were rejected. Please check them and try again.", c.Provider)
	case status == http.StatusNotFound && c.SubdomainBased:
		e.Kind = KindClient
		e.Message = fmt.Sprintf("not found (404), likely a bad subdomain: %s", body)
		e.UserMessage = fmt.Sprintf("The %s subdomain could not be found. Please check it and try again.", c.Provider)
	case status >= 400:
		e.Kind = KindClient
		e.UserMessage = fmt.Sprintf("The request was rejected by %s.", c.Provider)
	default:
		e.Kind = KindAPI
		e.UserMessage = fmt.Sprintf("An unexpected error occurred while talking to %s.", c.Provider)
	}

	return e
}

// NotAvailable builds the error for an unknown provider name.
func NotAvailable(module, name string) *Error {
	return &Error{
		Kind:        KindNotAvailable,
		Module:      module,
		Provider:    name,
		Message:     fmt.Sprintf("unknown provider %q", name),
		UserMessage: "The requested help desk is not supported.",
	}
}

// ImportError wraps a target-store insert failure.
func ImportError(provider string, err error) *Error {
	return &Error{
		Kind:        KindImport,
		Module:      "importer",
		Provider:    provider,
		Message:     fmt.Sprintf("target store insert failed: %v", err),
		UserMessage: "Importing tickets into the target store failed. Nothing was lost; re-run the migration.",
		Err:         err,
	}
}
