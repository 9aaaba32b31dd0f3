package prettier

import (
	"path/filepath"
	"strings"
)

// parsersByName wins over extensions.
var parsersByName = map[string]string{
	"package.json":      "json-stringify",
	"package-lock.json": "json-stringify",
	"composer.json":     "json-stringify",
	".prettierrc":       "json",
	".eslintrc":         "json",
	".babelrc":          "json5",
}

var parsersByExt = map[string]string{
	".js":         "babel",
	".cjs":        "babel",
	".mjs":        "babel",
	".jsx":        "babel",
	".ts":         "typescript",
	".cts":        "typescript",
	".mts":        "typescript",
	".tsx":        "typescript",
	".json":       "json",
	".json5":      "json5",
	".css":        "css",
	".scss":       "scss",
	".less":       "less",
	".md":         "markdown",
	".markdown":   "markdown",
	".mdx":        "mdx",
	".html":       "html",
	".htm":        "html",
	".vue":        "vue",
	".graphql":    "graphql",
	".gql":        "graphql",
	".yaml":       "yaml",
	".yml":        "yaml",
	".hbs":        "glimmer",
	".handlebars": "glimmer",
}

// InferParser returns the parser prettier would pick for path, or "" when
// the file type is unknown.
func InferParser(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	if p, ok := parsersByName[base]; ok {
		return p
	}
	if strings.HasSuffix(base, ".component.html") {
		return "angular"
	}
	return parsersByExt[strings.ToLower(filepath.Ext(base))]
}
