package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifierStatus(t *testing.T) {
	c := &Classifier{Module: "zendesk.fetcher", Provider: "Zendesk", SubdomainBased: true}
	rc := RequestContext{URL: "https://acme.zendesk.com/api/v2/tickets.json", Method: "GET"}

	t.Run("server error", func(t *testing.T) {
		e := c.Status(rc, 503, "maintenance")
		assert.Equal(t, KindServer, e.Kind)
		assert.Contains(t, e.Message, "503")
		assert.Contains(t, e.UserMessage, "unavailable")
	})

	t.Run("unauthorized", func(t *testing.T) {
		e := c.Status(rc, 401, "bad token")
		assert.Equal(t, KindUnauthorized, e.Kind)
		assert.True(t, IsUnauthorized(e))
		assert.Contains(t, e.UserMessage, "credentials")
	})

	t.Run("subdomain refinement on 404", func(t *testing.T) {
		e := c.Status(rc, 404, "")
		assert.Equal(t, KindClient, e.Kind)
		assert.Contains(t, e.Message, "subdomain")
		assert.Contains(t, e.UserMessage, "subdomain")
	})

	t.Run("plain 404 without subdomain addressing", func(t *testing.T) {
		plain := &Classifier{Module: "helpscout.fetcher", Provider: "Help Scout"}
		e := plain.Status(rc, 404, "")
		assert.Equal(t, KindClient, e.Kind)
		assert.NotContains(t, e.UserMessage, "subdomain")
	})

	t.Run("request context carried", func(t *testing.T) {
		e := c.Status(rc, 500, "")
		assert.Equal(t, rc.URL, e.Context["url"])
		assert.Equal(t, "GET", e.Context["method"])
	})
}

func TestClassifierConnect(t *testing.T) {
	c := &Classifier{Module: "happyfox.fetcher", Provider: "HappyFox"}
	cause := errors.New("dial tcp: connection refused")

	e := c.Connect(RequestContext{URL: "https://acme.happyfox.com", Method: "GET"}, cause)
	assert.Equal(t, KindConnect, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.UserMessage, "HappyFox")
}

func TestErrorMessagesAreDistinct(t *testing.T) {
	c := &Classifier{Module: "zendesk.fetcher", Provider: "Zendesk"}
	e := c.Status(RequestContext{}, 500, "stack trace here")

	// The diagnostic message carries the body; the user message never does.
	assert.Contains(t, e.Message, "stack trace here")
	assert.NotContains(t, e.UserMessage, "stack trace here")
}

func TestIsKindMatchesWrappedErrors(t *testing.T) {
	c := &Classifier{Module: "m", Provider: "p"}
	inner := c.Status(RequestContext{}, 500, "")
	wrapped := fmt.Errorf("fetching page 3: %w", inner)

	assert.True(t, IsKind(wrapped, KindServer))
	assert.False(t, IsKind(wrapped, KindClient))
	assert.False(t, IsKind(errors.New("plain"), KindServer))
}

func TestNotAvailable(t *testing.T) {
	e := NotAvailable("migrate", "frontdesk")
	assert.Equal(t, KindNotAvailable, e.Kind)
	assert.Contains(t, e.Message, "frontdesk")
}

func TestImportErrorWrapsCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	e := ImportError("Zendesk", cause)
	assert.Equal(t, KindImport, e.Kind)
	assert.ErrorIs(t, e, cause)
}
