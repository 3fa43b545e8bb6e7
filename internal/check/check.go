// Package check compares the route registry, the module ledger and the files
// on disk and reports where they disagree.
package check

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
	"github.com/firzaelbuho/bun-api-modular/internal/ledger"
	"github.com/firzaelbuho/bun-api-modular/internal/naming"
	"github.com/firzaelbuho/bun-api-modular/internal/registry"
	"github.com/firzaelbuho/bun-api-modular/internal/templates"
)

// IssueKind classifies one inconsistency.
type IssueKind string

const (
	EntryWithoutImport IssueKind = "entry-without-import"
	ImportWithoutEntry IssueKind = "import-without-entry"
	MissingRouteFile   IssueKind = "missing-route-file"
	MissingModuleDir   IssueKind = "missing-module-dir"
	UnregisteredModule IssueKind = "unregistered-module"
	RouteMismatch      IssueKind = "route-mismatch"
)

// Issue is one inconsistency. Subject is the identifier or module path it
// concerns.
type Issue struct {
	Kind    IssueKind
	Subject string
	Detail  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Kind, i.Subject, i.Detail)
}

// Report is the outcome of one check.
type Report struct {
	Registry string
	Entries  []string
	Modules  []ledger.ModuleEntry
	Issues   []Issue
}

// OK reports whether no issues were found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// Run checks the project the guard is rooted at. Errors are returned only
// when the registry or the state document cannot be read at all.
func Run(g *fsguard.Guard, cfg *config.ProjectConfig) (*Report, error) {
	doc, err := registry.Load(g, cfg.Paths.Registry, cfg.Paths.Collection)
	if err != nil {
		return nil, err
	}

	state, err := ledger.New(cfg.Ledger.Log, cfg.Ledger.State).Load(g)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Registry: cfg.Paths.Registry,
		Entries:  append([]string(nil), doc.Entries...),
		Modules:  state.Modules,
	}

	listed := make(map[string]bool, len(doc.Entries))
	for _, entry := range doc.Entries {
		listed[entry] = true
		if _, ok := doc.ImportFor(entry); !ok {
			report.add(EntryWithoutImport, entry, "listed in "+cfg.Paths.Collection+" but never imported")
		}
	}

	registryDir := path.Dir(cfg.Paths.Registry)
	for _, imp := range doc.Imports {
		if !listed[imp.Name] {
			report.add(ImportWithoutEntry, imp.Name, "imported from "+imp.From+" but not listed")
		}
		if !isRelative(imp.From) {
			continue
		}
		if _, ok := resolveModule(g, registryDir, imp.From); !ok {
			report.add(MissingRouteFile, imp.Name, "no file for "+imp.From)
		}
	}

	for _, module := range state.Modules {
		dir := templates.ModuleDir(cfg, module.ModulePath)
		if !g.Exists(dir) {
			report.add(MissingModuleDir, module.ModulePath, dir+" does not exist")
		}

		identifier := naming.RouteIdentifier(naming.RouteFile(module.Route))
		if !listed[identifier] {
			report.add(UnregisteredModule, module.ModulePath, identifier+" is not in "+cfg.Paths.Collection)
		}

		// Routes like "adminUsers" and "admin/users" share an identifier.
		want := templates.ImportSpecifier(registryDir, templates.RouteFilePath(cfg, module.Route))
		if imp, ok := doc.ImportFor(identifier); ok && imp.From != want {
			report.add(RouteMismatch, module.ModulePath, identifier+" is imported from "+imp.From+", expected "+want)
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		return report.Issues[i].Kind < report.Issues[j].Kind
	})
	return report, nil
}

func (r *Report) add(kind IssueKind, subject, detail string) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Subject: subject, Detail: detail})
}

func isRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// resolveModule maps a relative import specifier to the file it loads.
func resolveModule(g *fsguard.Guard, fromDir, specifier string) (string, bool) {
	base := path.Join(fromDir, specifier)
	candidates := []string{base + ".ts", path.Join(base, "index.ts")}
	if path.Ext(base) != "" {
		candidates = []string{base}
	}
	for _, candidate := range candidates {
		if g.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
