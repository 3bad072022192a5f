package attachment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

func newStagedTicket(t *testing.T) *staging.Stores {
	t.Helper()
	st := staging.NewStores()
	st.Tickets.Put(&staging.Ticket{ID: "t1", Description: "desc"})
	st.Replies.Put(&staging.Reply{ID: "r1", TicketID: "t1", Body: "reply"})
	return st
}

func TestMapStoresValidAttachments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	st := newStagedTicket(t)
	v := New()

	items := []model.Attachment{
		{URL: server.URL + "/photo.jpg", Filename: "photo.jpg"},
		{URL: server.URL + "/report.pdf", Filename: "report.pdf"},
	}

	status := v.Map(context.Background(), items, "t1", "", st)
	assert.Equal(t, StatusAllValid, status)

	stored := st.Attachments("t1", "")
	require.Len(t, stored, 2)
	assert.Equal(t, "photo.jpg", stored[0].Filename)
	assert.Equal(t, "desc", st.Tickets.Get("t1").Description)
}

func TestMapRejectsCodeExtensions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	tests := []string{"style.css", "page.html", "page.htm", "app.js", "shell.php"}
	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			st := newStagedTicket(t)
			v := New()

			rawURL := server.URL + "/" + filename
			status := v.Map(context.Background(),
				[]model.Attachment{{URL: rawURL, Filename: filename}}, "t1", "", st)

			assert.Equal(t, StatusHasInvalid, status)
			assert.Empty(t, st.Attachments("t1", ""))
			assert.Contains(t, st.Tickets.Get("t1").Description,
				fmt.Sprintf(`<br /><a href="%s">%s</a>`, rawURL, rawURL))
		})
	}
}

func TestMapRejectsUnreachableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	st := newStagedTicket(t)
	v := New()

	status := v.Map(context.Background(),
		[]model.Attachment{{URL: server.URL + "/photo.jpg", Filename: "photo.jpg"}}, "t1", "", st)

	assert.Equal(t, StatusHasInvalid, status)
	assert.Empty(t, st.Attachments("t1", ""))
}

func TestMapTreatsAnyHTTPResponseAsReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	st := newStagedTicket(t)
	v := New()

	status := v.Map(context.Background(),
		[]model.Attachment{{URL: server.URL + "/photo.jpg", Filename: "photo.jpg"}}, "t1", "", st)

	assert.Equal(t, StatusAllValid, status)
	assert.Len(t, st.Attachments("t1", ""), 1)
}

func TestMapEncodesSpaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	st := newStagedTicket(t)
	v := New()

	status := v.Map(context.Background(),
		[]model.Attachment{{URL: server.URL + "/my photo.jpg", Filename: "my photo.jpg"}}, "t1", "", st)

	assert.Equal(t, StatusAllValid, status)
	stored := st.Attachments("t1", "")
	require.Len(t, stored, 1)
	assert.Equal(t, server.URL+"/my%20photo.jpg", stored[0].URL)
	assert.Equal(t, "my%20photo.jpg", stored[0].Filename)
}

func TestMapDeduplicatesRepeatedURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	st := newStagedTicket(t)
	v := New()

	item := model.Attachment{URL: server.URL + "/photo.jpg", Filename: "photo.jpg"}
	v.Map(context.Background(), []model.Attachment{item, item}, "t1", "", st)
	v.Map(context.Background(), []model.Attachment{item}, "t1", "", st)

	assert.Len(t, st.Attachments("t1", ""), 1)
}

func TestMapTargetsReplyWhenReplyIDSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer server.Close()

	st := newStagedTicket(t)
	v := New()

	items := []model.Attachment{
		{URL: server.URL + "/photo.jpg", Filename: "photo.jpg"},
		{URL: server.URL + "/bad.php", Filename: "bad.php"},
	}

	status := v.Map(context.Background(), items, "t1", "r1", st)
	assert.Equal(t, StatusHasInvalid, status)
	assert.Len(t, st.Attachments("t1", "r1"), 1)
	assert.Empty(t, st.Attachments("t1", ""))
	assert.Contains(t, st.Replies.Get("t1", "r1").Body, "bad.php")
}

func TestMapNoAttachments(t *testing.T) {
	st := newStagedTicket(t)
	v := New()
	assert.Equal(t, StatusNone, v.Map(context.Background(), nil, "t1", "", st))
}

func TestExtensionFallsBackToURLPath(t *testing.T) {
	assert.Equal(t, "png",
		extension(model.Attachment{URL: "https://files.acme.com/x/shot.png", Filename: "shot"}))
	assert.Equal(t, "pdf",
		extension(model.Attachment{URL: "https://files.acme.com/doc.pdf?sig=abc", Filename: ""}))
	assert.Equal(t, "",
		extension(model.Attachment{URL: "https://files.acme.com/noext", Filename: "noext"}))
}
