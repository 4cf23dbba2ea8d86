// Package mail renders notification templates and sends them.
package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ErrUnknownTemplate is returned when no template has the requested key.
var ErrUnknownTemplate = errors.New("unknown mail template")

// Message is a rendered email ready for a Mailer.
type Message struct {
	To      []string
	BCC     []string
	Subject string
	Text    string
	HTML    string
}

type templatePair struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// Templates holds every embedded template, keyed by file name without extension.
type Templates struct {
	byKey map[string]templatePair
}

// LoadTemplates parses the embedded templates. Each file defines "subject",
// "text" and "body" blocks; "body" is HTML-escaped.
func LoadTemplates() (*Templates, error) {
	names, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	t := &Templates{byKey: make(map[string]templatePair, len(names))}
	for _, name := range names {
		key := strings.TrimSuffix(path.Base(name), ".tmpl")

		text, err := texttemplate.New(key).Option("missingkey=zero").ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", key, err)
		}
		html, err := htmltemplate.New(key).Option("missingkey=zero").ParseFS(templateFS, name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", key, err)
		}
		t.byKey[key] = templatePair{text: text, html: html}
	}
	return t, nil
}

// Has reports whether a template exists for key.
func (t *Templates) Has(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

// Render fills the template key with vars.
func (t *Templates) Render(key string, vars map[string]string) (Message, error) {
	pair, ok := t.byKey[key]
	if !ok {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}

	var subject, text, html bytes.Buffer
	if err := pair.text.ExecuteTemplate(&subject, "subject", vars); err != nil {
		return Message{}, fmt.Errorf("rendering subject: %w", err)
	}
	if err := pair.text.ExecuteTemplate(&text, "text", vars); err != nil {
		return Message{}, fmt.Errorf("rendering text body: %w", err)
	}
	if err := pair.html.ExecuteTemplate(&html, "body", vars); err != nil {
		return Message{}, fmt.Errorf("rendering html body: %w", err)
	}

	return Message{
		Subject: strings.TrimSpace(subject.String()),
		Text:    strings.TrimSpace(text.String()),
		HTML:    strings.TrimSpace(html.String()),
	}, nil
}
