// Package registry patches the generated route index so that new route
// modules are imported and listed in the exported route collection.
//
// The registry is edited as text through a small Document model instead of a
// TypeScript parser. Registering is append-only and idempotent: an identifier
// that already appears in the file is never added twice.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
)

var (
	// ErrMissingRegistry is matched by *MissingRegistryError.
	ErrMissingRegistry = errors.New("route registry not found")
	// ErrInvalidRegistryFormat is matched by *InvalidRegistryFormatError.
	ErrInvalidRegistryFormat = errors.New("invalid route registry format")
	// ErrRouteConflict is matched by *RouteConflictError.
	ErrRouteConflict = errors.New("route identifier already bound to another route file")
)

// MissingRegistryError means the project was never initialized.
type MissingRegistryError struct {
	Path string
}

func (e *MissingRegistryError) Error() string {
	return fmt.Sprintf("route registry not found at %s. Did you run init?", e.Path)
}

func (e *MissingRegistryError) Is(target error) bool {
	return target == ErrMissingRegistry
}

// InvalidRegistryFormatError means the collection declaration could not be
// located in the registry file.
type InvalidRegistryFormatError struct {
	Path       string
	Collection string
}

func (e *InvalidRegistryFormatError) Error() string {
	where := "route registry"
	if e.Path != "" {
		where = "route registry " + e.Path
	}
	return fmt.Sprintf("%s has no `export const %s = [...]` declaration", where, e.Collection)
}

func (e *InvalidRegistryFormatError) Is(target error) bool {
	return target == ErrInvalidRegistryFormat
}

// RouteConflictError means the identifier is already imported from a
// different route file. Two routes such as "adminUsers" and "admin/users"
// produce the same identifier.
type RouteConflictError struct {
	Path       string
	Identifier string
	Existing   string
	Requested  string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("%s in %s is already imported from %q, not %q; choose another --route", e.Identifier, e.Path, e.Existing, e.Requested)
}

func (e *RouteConflictError) Is(target error) bool {
	return target == ErrRouteConflict
}

// Conflict returns a *RouteConflictError when identifier is imported from a
// module other than routeFile.
func (d *Document) Conflict(identifier, routeFile string) error {
	imp, ok := d.ImportFor(identifier)
	if !ok || imp.From == specifier(routeFile) {
		return nil
	}
	return &RouteConflictError{Identifier: identifier, Existing: imp.From, Requested: specifier(routeFile)}
}

// Register adds identifier, imported from routeFile, to the collection in the
// registry at path. routeFile is a module specifier relative to the registry
// directory; a leading "./" is added when missing.
//
// It reports whether the registry changed. Registering an identifier that
// already appears anywhere in the file is a no-op, unless its import points
// at a different route file, which is a *RouteConflictError.
func Register(g *fsguard.Guard, path, collection, routeFile, identifier string) (bool, error) {
	if !g.Exists(path) {
		return false, &MissingRegistryError{Path: path}
	}

	data, err := g.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read route registry %s: %w", path, err)
	}
	text := string(data)

	if Mentions(text, identifier) {
		if doc, err := Parse(text, collection); err == nil {
			var conflict *RouteConflictError
			if errors.As(doc.Conflict(identifier, routeFile), &conflict) {
				conflict.Path = path
				return false, conflict
			}
		}
		return false, nil
	}

	doc, err := Parse(text, collection)
	if err != nil {
		var formatErr *InvalidRegistryFormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
		}
		return false, err
	}

	doc.Add(Import{Name: identifier, From: specifier(routeFile)})

	if err := g.Replace(path, []byte(doc.Render())); err != nil {
		return false, fmt.Errorf("failed to update route registry: %w", err)
	}
	return true, nil
}

// Load parses the registry at path.
func Load(g *fsguard.Guard, path, collection string) (*Document, error) {
	if !g.Exists(path) {
		return nil, &MissingRegistryError{Path: path}
	}
	data, err := g.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route registry %s: %w", path, err)
	}
	doc, err := Parse(string(data), collection)
	if err != nil {
		var formatErr *InvalidRegistryFormatError
		if errors.As(err, &formatErr) {
			formatErr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Mentions reports whether identifier occurs in text as a whole word.
func Mentions(text, identifier string) bool {
	if identifier == "" {
		return false
	}
	pattern := regexp.MustCompile(`(^|[^\w$])` + regexp.QuoteMeta(identifier) + `($|[^\w$])`)
	return pattern.MatchString(text)
}

func specifier(routeFile string) string {
	routeFile = strings.TrimSuffix(routeFile, ".ts")
	if strings.HasPrefix(routeFile, "./") || strings.HasPrefix(routeFile, "../") {
		return routeFile
	}
	return "./" + routeFile
}
