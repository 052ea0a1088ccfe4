// Package export builds printable documents from notes and renders them to
// PDF through a headless browser.
package export

import (
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/smartnotes/api/internal/model"
)

// nl2br escapes user text and then turns newlines into <br> so multi-line
// note content keeps its shape in the rendered document. Escaping happens
// before the markup is injected, so user-supplied tags never reach the
// renderer unescaped.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

var funcs = template.FuncMap{
	"nl2br": nl2br,
	"date":  func(t time.Time) string { return t.Format("January 2, 2006") },
}

const noteTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Note.Title}}</title>
<style>
  @page { margin: 2cm; size: A4; }
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
         line-height: 1.6; color: #1f2937; font-size: 14px; padding: 20px; }
  h1 { color: #1e40af; border-bottom: 2px solid #3b82f6; padding-bottom: 10px; font-size: 24px; }
  .meta { background: #f8fafc; padding: 15px; border-radius: 6px; margin-bottom: 20px;
          border-left: 4px solid #3b82f6; font-size: 13px; color: #4b5563; }
  .content { margin-bottom: 25px; line-height: 1.7; color: #374151; }
  .summary { background: #eff6ff; padding: 15px; border-left: 4px solid #2563eb;
             border-radius: 6px; margin: 20px 0; color: #1e40af; }
  .summary h3 { margin: 0 0 10px 0; font-size: 16px; }
  .tags { margin-top: 20px; padding: 15px; background: #f9fafb; border-radius: 6px; }
  .tag { display: inline-block; background: #2563eb; color: white; padding: 4px 10px;
         border-radius: 12px; margin: 2px 6px 2px 0; font-size: 11px; }
  .footer { margin-top: 30px; padding-top: 15px; border-top: 1px solid #e5e7eb;
            text-align: center; color: #6b7280; font-size: 11px; }
</style>
</head>
<body>
  <h1>{{.Note.Title}}</h1>
  <div class="meta">
    <strong>Created:</strong> {{date .Note.CreatedAt}}<br>
    {{if .Note.UpdatedAt.After .Note.CreatedAt}}<strong>Updated:</strong> {{date .Note.UpdatedAt}}<br>{{end}}
    {{if .Note.IsPinned}}<strong>Status:</strong> Pinned<br>{{end}}
    {{if .Note.IsShared}}<strong>Sharing:</strong> Public link enabled<br>{{end}}
  </div>
  <div class="content">{{nl2br .Note.Content}}</div>
  {{if .Note.Summary}}
  <div class="summary"><h3>AI Summary</h3><p>{{nl2br (deref .Note.Summary)}}</p></div>
  {{end}}
  {{if .Note.Tags}}
  <div class="tags"><strong>Tags:</strong>
    {{range .Note.Tags}}<span class="tag">{{.}}</span>{{end}}
  </div>
  {{end}}
  <div class="footer">Generated by Smart Notes &#8226; {{date .GeneratedAt}}</div>
</body>
</html>`

const collectionTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Smart Notes Collection</title>
<style>
  @page { margin: 2cm; size: A4; }
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
         line-height: 1.6; color: #1f2937; font-size: 13px; padding: 15px; }
  h1 { color: #1e40af; border-bottom: 3px solid #3b82f6; padding-bottom: 15px;
       text-align: center; font-size: 28px; margin-bottom: 30px; }
  h2 { color: #1e40af; font-size: 18px; border-bottom: 1px solid #e5e7eb; padding-bottom: 5px; }
  .collection-info { text-align: center; background: #f8fafc; padding: 20px;
                     border-radius: 8px; margin-bottom: 30px; border: 1px solid #e5e7eb; }
  .note { margin-bottom: 40px; page-break-inside: avoid; }
  .meta { font-size: 11px; color: #6b7280; margin-bottom: 12px; background: #f9fafb;
          padding: 8px; border-radius: 4px; }
  .content { margin-bottom: 15px; color: #374151; }
  .summary { background: #eff6ff; padding: 12px; border-left: 3px solid #2563eb;
             border-radius: 4px; margin: 15px 0; }
  .tag { display: inline-block; background: #2563eb; color: white; padding: 2px 8px;
         border-radius: 10px; margin: 2px 4px 2px 0; font-size: 10px; }
  .pinned-badge { background: #fbbf24; color: #92400e; padding: 2px 6px;
                  border-radius: 8px; font-size: 10px; margin-left: 8px; }
  .divider { border-top: 1px solid #d1d5db; margin: 30px 0; }
</style>
</head>
<body>
  <h1>Smart Notes Collection</h1>
  <div class="collection-info">
    <strong>Total Notes:</strong> {{len .Notes}}<br>
    <strong>Exported:</strong> {{date .GeneratedAt}}
  </div>
  {{range $i, $n := .Notes}}
  <div class="note">
    <h2>{{$n.Title}}{{if $n.IsPinned}}<span class="pinned-badge">Pinned</span>{{end}}</h2>
    <div class="meta">Created: {{date $n.CreatedAt}}{{if $n.UpdatedAt.After $n.CreatedAt}} &#8226; Updated: {{date $n.UpdatedAt}}{{end}}</div>
    <div class="content">{{nl2br $n.Content}}</div>
    {{if $n.Summary}}<div class="summary"><strong>AI Summary:</strong> {{nl2br (deref $n.Summary)}}</div>{{end}}
    {{if $n.Tags}}<div class="tags">{{range $n.Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
    <div class="divider"></div>
  </div>
  {{end}}
</body>
</html>`

var (
	noteTmpl       = template.Must(template.New("note").Funcs(withDeref()).Parse(noteTemplateHTML))
	collectionTmpl = template.Must(template.New("collection").Funcs(withDeref()).Parse(collectionTemplateHTML))
)

func withDeref() template.FuncMap {
	m := template.FuncMap{"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}}
	for k, v := range funcs {
		m[k] = v
	}
	return m
}

// NoteDocument renders the printable HTML for a single note. All
// user-supplied fields pass through html/template escaping.
func NoteDocument(n *model.Note, generatedAt time.Time) (string, error) {
	var b strings.Builder
	err := noteTmpl.Execute(&b, struct {
		Note        *model.Note
		GeneratedAt time.Time
	}{n, generatedAt})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// CollectionDocument renders the printable HTML for a full notebook export.
func CollectionDocument(notes []*model.Note, generatedAt time.Time) (string, error) {
	var b strings.Builder
	err := collectionTmpl.Execute(&b, struct {
		Notes       []*model.Note
		GeneratedAt time.Time
	}{notes, generatedAt})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NoteFilename derives a download filename from a note title: strip anything
// outside word characters, spaces and dashes, collapse spaces to
// underscores and cap at 50 characters.
func NoteFilename(title string) string {
	safe := unsafeChars.ReplaceAllString(title, "")
	safe = whitespace.ReplaceAllString(strings.TrimSpace(safe), "_")
	if len(safe) > 50 {
		safe = safe[:50]
	}
	if safe == "" {
		safe = "note"
	}
	return safe + ".pdf"
}

// CollectionFilename names a bulk export with the export date.
func CollectionFilename(t time.Time) string {
	return "Smart_Notes_" + t.UTC().Format("2006-01-02") + ".pdf"
}
