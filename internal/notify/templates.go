// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Template names.
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
	TemplateWelcome       = "welcome"
)

//go:embed templates/*
var templateFS embed.FS

// TemplateData is the data available to every template.
type TemplateData struct {
	App              string
	Name             string
	Code             string
	Link             string
	ExpiresInMinutes int
}

// Templates renders the transactional emails. HTML goes through html/template
// so user supplied names are escaped.
type Templates struct {
	app  string
	html map[string]*htmltemplate.Template
	text map[string]*texttemplate.Template
}

// NewTemplates parses the embedded templates.
func NewTemplates(app string) (*Templates, error) {
	t := &Templates{
		app:  app,
		html: make(map[string]*htmltemplate.Template),
		text: make(map[string]*texttemplate.Template),
	}
	for _, name := range []string{TemplateVerification, TemplatePasswordReset, TemplateWelcome} {
		h, err := htmltemplate.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html template: %w", name, err)
		}
		txt, err := texttemplate.ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text template: %w", name, err)
		}
		t.html[name] = h
		t.text[name] = txt
	}
	return t, nil
}

// Render produces a Message for the named template.
func (t *Templates) Render(name, to, subject string, data TemplateData) (Message, error) {
	h, ok := t.html[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}
	if data.App == "" {
		data.App = t.app
	}

	var html, text bytes.Buffer
	if err := h.ExecuteTemplate(&html, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}
	if err := t.text[name].Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	return Message{
		To:       to,
		Subject:  subject,
		HTML:     html.String(),
		Text:     text.String(),
		Template: name,
	}, nil
}
