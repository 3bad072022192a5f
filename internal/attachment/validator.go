// Package attachment validates, deduplicates, and encodes attachment
// references discovered during normalization.
package attachment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/syncdesk/deskmigrate/internal/model"
)

// Status summarizes one Map call. The callers only branch on these three
// outcomes.
type Status int

const (
	// StatusNone means no attachments were present.
	StatusNone Status = iota

	// StatusAllValid means every attachment was stored.
	StatusAllValid

	// StatusHasInvalid means at least one attachment failed validation
	// and was recorded inline instead.
	StatusHasInvalid
)

// invalidNote is the HTML fragment appended to the owning description or
// body when an attachment fails validation, so the reference is not lost.
const invalidNote = `<br /><a href="%s">%s</a>`

// allowedExtensions whitelists importable file types: images, audio,
// video, documents, spreadsheets, text, and archives.
var allowedExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
	"bmp": true, "webp": true, "tiff": true, "ico": true,
	"mp3": true, "wav": true, "ogg": true, "m4a": true, "flac": true,
	"mp4": true, "mov": true, "avi": true, "mkv": true, "webm": true, "wmv": true,
	"pdf": true, "doc": true, "docx": true, "ppt": true, "pptx": true,
	"odt": true, "rtf": true,
	"xls": true, "xlsx": true, "csv": true, "ods": true,
	"txt": true, "log": true, "md": true,
	"zip": true, "rar": true, "7z": true, "tar": true, "gz": true,
}

// codeExtensions are deliberately rejected so executable or markup files
// never enter the target store as attachments.
var codeExtensions = map[string]bool{
	"css": true, "html": true, "htm": true, "js": true, "php": true,
}

// Target is where validated attachments are stored. The staging stores
// implement it.
type Target interface {
	AddAttachment(ticketID, replyID string, att model.Attachment) bool
	AppendNote(ticketID, replyID, fragment string)
}

// Validator checks attachment references for an importable extension and
// a reachable URL before handing them to the target store.
type Validator struct {
	httpClient *http.Client
}

// New creates a Validator using the default HTTP client.
func New() *Validator {
	return &Validator{httpClient: &http.Client{}}
}

// Map validates each attachment and stores the valid ones on the ticket
// (replyID empty) or reply, deduplicated by exact URL. Invalid items are
// appended to the owning description or body as an HTML fragment.
// Reachability checks run sequentially; they are the dominant
// per-attachment cost.
func (v *Validator) Map(
	ctx context.Context,
	items []model.Attachment,
	ticketID string,
	replyID string,
	target Target,
) Status {
	if len(items) == 0 {
		return StatusNone
	}

	status := StatusAllValid
	for _, item := range items {
		att := encode(item)

		if !v.valid(ctx, att) {
			target.AppendNote(ticketID, replyID, fmt.Sprintf(invalidNote, att.URL, att.URL))
			status = StatusHasInvalid
			continue
		}

		target.AddAttachment(ticketID, replyID, att)
	}

	return status
}

// valid reports whether an attachment has an importable extension and a
// reachable URL.
func (v *Validator) valid(ctx context.Context, att model.Attachment) bool {
	ext := extension(att)
	if ext == "" || codeExtensions[ext] || !allowedExtensions[ext] {
		return false
	}

	if _, err := url.ParseRequestURI(att.URL); err != nil {
		return false
	}

	return v.reachable(ctx, att.URL)
}

// reachable performs a connection-only GET; the body is discarded. Any
// HTTP response counts as reachable, only transport failures do not.
func (v *Validator) reachable(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return true
}

// extension returns the lowercased filename extension, falling back to
// the URL path when the filename carries none.
func extension(att model.Attachment) string {
	ext := strings.TrimPrefix(path.Ext(att.Filename), ".")
	if ext == "" {
		if u, err := url.Parse(att.URL); err == nil {
			ext = strings.TrimPrefix(path.Ext(u.Path), ".")
		}
	}
	return strings.ToLower(ext)
}

// encode percent-encodes literal spaces in both the URL and the raw
// filename so downstream fetchers can use them verbatim.
func encode(att model.Attachment) model.Attachment {
	att.URL = strings.ReplaceAll(att.URL, " ", "%20")
	att.Filename = strings.ReplaceAll(att.Filename, " ", "%20")
	return att
}
