package render

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"changelogagg/internal/apperrors"
	"changelogagg/internal/resource"
)

func mustResource(t *testing.T, raw string) resource.Discovered {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return resource.Discovered{URL: u}
}

func TestRender_DefaultTemplate(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	out, err := r.Render(Parameters{
		Resources: []resource.Discovered{
			mustResource(t, "jar:file:///repo/a.jar!/META-INF/liquibase/changelog.xml"),
			mustResource(t, "file:///work/target/classes/META-INF/liquibase/changelog.xml"),
		},
		Version: DefaultVersion,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<databaseChangeLog xmlns="http://www.liquibase.org/xml/ns/dbchangelog"
                   xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
                   xsi:schemaLocation="http://www.liquibase.org/xml/ns/dbchangelog http://www.liquibase.org/xml/ns/dbchangelog/dbchangelog-3.2.xsd">
  <include file="jar:file:///repo/a.jar!/META-INF/liquibase/changelog.xml"/>
  <include file="file:///work/target/classes/META-INF/liquibase/changelog.xml"/>
</databaseChangeLog>
`
	if out != want {
		t.Errorf("Render() mismatch\n got: %q\nwant: %q", out, want)
	}
}

func TestRender_PropertiesSortedAndEscaped(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	out, err := r.Render(Parameters{
		Resources: []resource.Discovered{mustResource(t, "file:///a.xml")},
		Version:   "4.0",
		Properties: map[string]string{
			"schema": "app",
			"author": `"ops" <ops@example.com>`,
		},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	authorIdx := strings.Index(out, `<property name="author" value="&#34;ops&#34; &lt;ops@example.com&gt;"/>`)
	schemaIdx := strings.Index(out, `<property name="schema" value="app"/>`)
	if authorIdx < 0 || schemaIdx < 0 {
		t.Fatalf("Missing property elements in:\n%s", out)
	}
	if authorIdx > schemaIdx {
		t.Error("Expected properties in sorted key order")
	}
	if !strings.Contains(out, "dbchangelog-4.0.xsd") {
		t.Error("Expected configured version in schema location")
	}
	if strings.Index(out, "<property") > strings.Index(out, "<include") {
		t.Error("Expected properties before includes")
	}
}

func TestRender_Reproducible(t *testing.T) {
	t.Parallel()
	r := NewRenderer()
	p := Parameters{
		Resources:  []resource.Discovered{mustResource(t, "file:///a.xml"), mustResource(t, "file:///b.xml")},
		Version:    DefaultVersion,
		Properties: map[string]string{"c": "3", "a": "1", "b": "2"},
	}

	first, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Render(p)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if again != first {
			t.Fatalf("Render() not reproducible on call %d", i)
		}
	}
}

func TestSetTemplate(t *testing.T) {
	t.Parallel()
	r := NewRenderer()

	if err := r.SetTemplate("v={{.version}} n={{len .resources}}"); err != nil {
		t.Fatalf("SetTemplate() error = %v", err)
	}
	if src, ok := r.Template(); !ok || src != "v={{.version}} n={{len .resources}}" {
		t.Errorf("Template() = %q, %v", src, ok)
	}
	if _, isCompiled := r.state.(compiled); !isCompiled {
		t.Error("Expected SetTemplate to compile eagerly")
	}

	out, err := r.Render(Parameters{Version: "3.2", Resources: []resource.Discovered{mustResource(t, "file:///a")}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "v=3.2 n=1" {
		t.Errorf("Render() = %q", out)
	}

	// Replacing the source discards the previous compiled form.
	if err := r.SetTemplate("only {{.version}}"); err != nil {
		t.Fatalf("SetTemplate() error = %v", err)
	}
	out, err = r.Render(Parameters{Version: "9"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "only 9" {
		t.Errorf("Render() = %q, want 'only 9'", out)
	}
}

func TestSetTemplate_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"blank", "  \n\t"},
		{"unparsable", "{{range .resources}}"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRenderer()
			if err := r.SetTemplate("keep {{.version}}"); err != nil {
				t.Fatalf("SetTemplate() error = %v", err)
			}

			err := r.SetTemplate(tt.src)
			if !errors.Is(err, apperrors.ErrConfiguration) {
				t.Fatalf("SetTemplate(%q) error = %v, want configuration error", tt.src, err)
			}
			if src, _ := r.Template(); src != "keep {{.version}}" {
				t.Errorf("Expected previous template to be kept, got %q", src)
			}
		})
	}
}

func TestTemplate_LazyDefault(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{"default.tmpl": {Data: []byte("default {{.version}}")}}
	r := NewRenderer(WithDefaults(fsys, "default.tmpl"))

	src, ok := r.Template()
	if !ok || src != "default {{.version}}" {
		t.Fatalf("Template() = %q, %v", src, ok)
	}
	if _, isUncompiled := r.state.(uncompiled); !isUncompiled {
		t.Error("Expected lazily loaded default to start uncompiled")
	}

	// The source is cached; later changes to the FS are not observed.
	fsys["default.tmpl"] = &fstest.MapFile{Data: []byte("changed")}
	if src, _ := r.Template(); src != "default {{.version}}" {
		t.Errorf("Expected cached default, got %q", src)
	}

	out, err := r.Render(Parameters{Version: "3.2"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "default 3.2" {
		t.Errorf("Render() = %q", out)
	}
	if _, isCompiled := r.state.(compiled); !isCompiled {
		t.Error("Expected Render to compile the default")
	}
}

func TestRender_NoTemplateAvailable(t *testing.T) {
	t.Parallel()
	r := NewRenderer(WithDefaults(fstest.MapFS{}, "missing.tmpl"))

	if _, ok := r.Template(); ok {
		t.Fatal("Expected no template")
	}

	out, err := r.Render(Parameters{Version: "3.2", Resources: []resource.Discovered{mustResource(t, "file:///a")}})
	if !errors.Is(err, apperrors.ErrState) {
		t.Fatalf("Render() error = %v, want state error", err)
	}
	if out != "" {
		t.Errorf("Expected no output, got %q", out)
	}
}

func TestRender_UnknownParameter(t *testing.T) {
	t.Parallel()
	r := NewRenderer()
	if err := r.SetTemplate("{{.schema}}"); err != nil {
		t.Fatalf("SetTemplate() error = %v", err)
	}
	if _, err := r.Render(Parameters{}); !errors.Is(err, apperrors.ErrConfiguration) {
		t.Errorf("Render() error = %v, want configuration error", err)
	}
}
