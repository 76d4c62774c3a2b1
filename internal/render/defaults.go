package render

import "embed"

// DefaultTemplateName is the bundled template used when none is set.
const DefaultTemplateName = "templates/changelog.xml.tmpl"

//go:embed templates
var bundled embed.FS
