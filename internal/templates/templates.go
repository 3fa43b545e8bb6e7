// Package templates renders the TypeScript files emitted by init and create.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/naming"
	"github.com/firzaelbuho/bun-api-modular/internal/registry"
)

//go:embed files
var templatesFS embed.FS

// ProjectFiles returns the skeleton written by init, in write order.
func ProjectFiles(cfg *config.ProjectConfig) ([]File, error) {
	src := cfg.Paths.SrcDir
	routesDir := path.Join(src, "routes")

	data := ProjectData{
		Name:           cfg.Name,
		Port:           cfg.Port,
		SrcDir:         src,
		Collection:     cfg.Paths.Collection,
		RegistryImport: ImportSpecifier(routesDir, cfg.Paths.Registry),
	}

	layout := []struct {
		template string
		out      string
		optional bool
	}{
		{"project/app.ts.tmpl", path.Join(src, "app.ts"), false},
		{"project/server.ts.tmpl", path.Join(src, "server.ts"), false},
		{"project/routes_index.ts.tmpl", path.Join(routesDir, "index.ts"), false},
		{"project/response.ts.tmpl", path.Join(src, "shared", "response.ts"), false},
		{"project/errors.ts.tmpl", path.Join(src, "shared", "errors.ts"), false},
		{"project/package.json.tmpl", "package.json", true},
		{"project/tsconfig.json.tmpl", "tsconfig.json", true},
	}

	var files []File
	for i, f := range layout {
		content, err := render(f.template, data)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: f.out, Content: content, Optional: f.optional})

		// The registry goes right after the routes index that imports it. An
		// existing registry keeps its registrations, even under force.
		if i == 2 {
			files = append(files, File{
				Path:     cfg.Paths.Registry,
				Content:  registry.NewDocument(cfg.Paths.Collection).Render(),
				Optional: true,
			})
		}
	}

	return files, nil
}

// NewModuleData derives template data for the module at modulePath served
// under route (the plural route segment).
func NewModuleData(cfg *config.ProjectConfig, modulePath, route string) ModuleData {
	name := naming.ModuleName(modulePath)
	route = strings.Trim(route, "/")
	routeFile := naming.RouteFile(route)

	moduleDir := path.Join(cfg.Paths.ModulesDir, modulePath)

	return ModuleData{
		Name:          name,
		ModulePath:    modulePath,
		TypeName:      naming.TypeName(name),
		ConstantName:  naming.ConstantName(name),
		Plural:        route,
		Title:         naming.Capitalize(route),
		RouteVar:      naming.RouteIdentifier(routeFile),
		ServiceImport: SourceImport(cfg, cfg.Paths.RoutesDir, path.Join(moduleDir, "service")),
		TypesImport:   SourceImport(cfg, cfg.Paths.RoutesDir, path.Join(moduleDir, "types")),
		SharedImport:  SourceImport(cfg, cfg.Paths.RoutesDir, path.Join(cfg.Paths.SrcDir, "shared")),
	}
}

// ModuleDir returns the directory holding the module's files.
func ModuleDir(cfg *config.ProjectConfig, modulePath string) string {
	return path.Join(cfg.Paths.ModulesDir, modulePath)
}

// RouteFilePath returns where the route file for route is written.
func RouteFilePath(cfg *config.ProjectConfig, route string) string {
	return path.Join(cfg.Paths.RoutesDir, naming.RouteFile(route)+".ts")
}

// ModuleFiles returns the files written by create, in write order.
func ModuleFiles(cfg *config.ProjectConfig, data ModuleData) ([]File, error) {
	moduleDir := ModuleDir(cfg, data.ModulePath)

	layout := []struct {
		template string
		out      string
	}{
		{"module/types.ts.tmpl", path.Join(moduleDir, "types.ts")},
		{"module/values.ts.tmpl", path.Join(moduleDir, "values.ts")},
		{"module/service.ts.tmpl", path.Join(moduleDir, "service.ts")},
		{"module/route.ts.tmpl", RouteFilePath(cfg, data.Plural)},
		{"module/spec.md.tmpl", path.Join(moduleDir, "spec.md")},
	}

	files := make([]File, 0, len(layout))
	for _, f := range layout {
		content, err := render(f.template, data)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: f.out, Content: content})
	}
	return files, nil
}

// ImportSpecifier returns a relative TypeScript module specifier for target
// as seen from fromDir. The ".ts" extension and a trailing "/index" are
// dropped.
func ImportSpecifier(fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		rel = target
	}
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, ".ts")
	if rel == "index" {
		rel = "."
	}
	rel = strings.TrimSuffix(rel, "/index")
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// SourceImport prefers the "@/" alias (mapped to the source directory in
// tsconfig.json) and falls back to a relative specifier for targets outside
// the source directory.
func SourceImport(cfg *config.ProjectConfig, fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(cfg.Paths.SrcDir), filepath.FromSlash(target))
	if err == nil && !strings.HasPrefix(rel, "..") {
		return "@/" + filepath.ToSlash(rel)
	}
	return ImportSpecifier(fromDir, target)
}

func render(name string, data any) (string, error) {
	content, err := templatesFS.ReadFile("files/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(path.Base(name)).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// ListTemplates returns all available template files
func ListTemplates() ([]string, error) {
	var templateFiles []string

	err := fs.WalkDir(templatesFS, "files", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			templateFiles = append(templateFiles, strings.TrimPrefix(p, "files/"))
		}

		return nil
	})

	return templateFiles, err
}
