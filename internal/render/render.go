// Package render turns the discovered resources into the aggregate changelog
// document using a text/template source.
//
// A Renderer holds its template in one of two states: uncompiled (source
// only) or compiled (source plus parsed form). SetTemplate always lands in
// the compiled state; a lazily loaded default starts uncompiled and is
// compiled on first Render. Rendering is a pure function of the compiled
// template and the parameters.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"text/template"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/resource"
)

// DefaultVersion is the changelog schema version used when none is configured.
const DefaultVersion = "3.2"

// Parameters are bound into the template as "resources", "version" and
// "properties".
type Parameters struct {
	Resources  []resource.Discovered
	Version    string
	Properties map[string]string // Optional; may be nil
}

func (p Parameters) bag() map[string]any {
	return map[string]any{
		"resources":  p.Resources,
		"version":    p.Version,
		"properties": p.Properties,
	}
}

type state interface {
	source() string
}

type uncompiled struct {
	src string
}

func (s uncompiled) source() string { return s.src }

type compiled struct {
	src  string
	tmpl *template.Template
}

func (s compiled) source() string { return s.src }

// Renderer renders the aggregate changelog. It is not safe for concurrent use.
type Renderer struct {
	state state // nil while no template is available

	defaults       fs.FS
	defaultName    string
	defaultsLoaded bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDefaults replaces the bundled default template source.
func WithDefaults(fsys fs.FS, name string) Option {
	return func(r *Renderer) {
		r.defaults = fsys
		r.defaultName = name
	}
}

// NewRenderer creates a renderer that falls back to the bundled template.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		defaults:    bundled,
		defaultName: DefaultTemplateName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetTemplate replaces the template source and compiles it immediately.
// A blank or unparsable source is rejected and the previous template kept.
func (r *Renderer) SetTemplate(src string) error {
	if strings.TrimSpace(src) == "" {
		return apperrors.Configuration("template", "template source is required")
	}
	c, err := compile(src)
	if err != nil {
		return err
	}
	r.state = c
	return nil
}

// Template returns the current template source. When none was set, the
// default is loaded once; if that fails ok is false and Render will fail.
func (r *Renderer) Template() (src string, ok bool) {
	if r.state == nil && !r.defaultsLoaded {
		r.defaultsLoaded = true
		r.loadDefault()
	}
	if r.state == nil {
		return "", false
	}
	return r.state.source(), true
}

func (r *Renderer) loadDefault() {
	if r.defaults == nil {
		return
	}
	data, err := fs.ReadFile(r.defaults, r.defaultName)
	if err != nil {
		slog.Debug("Default changelog template unavailable", "name", r.defaultName, "error", err)
		return
	}
	r.state = uncompiled{src: string(data)}
}

// Render evaluates the template against p.
func (r *Renderer) Render(p Parameters) (string, error) {
	if _, ok := r.Template(); !ok {
		return "", apperrors.State("no changelog template present; call SetTemplate first")
	}

	c, isCompiled := r.state.(compiled)
	if !isCompiled {
		var err error
		if c, err = compile(r.state.source()); err != nil {
			return "", err
		}
		r.state = c
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, p.bag()); err != nil {
		return "", apperrors.Configuration("template", fmt.Sprintf("failed to render changelog template: %v", err))
	}
	return buf.String(), nil
}

func compile(src string) (compiled, error) {
	tmpl, err := template.New("changelog").
		Funcs(template.FuncMap{"xml": escapeXML}).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return compiled{}, apperrors.Configuration("template", fmt.Sprintf("invalid changelog template: %v", err))
	}
	return compiled{src: src, tmpl: tmpl}, nil
}

// escapeXML renders v with fmt and escapes it for XML text or attributes.
func escapeXML(v any) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(fmt.Sprint(v))); err != nil {
		return "", err
	}
	return b.String(), nil
}
