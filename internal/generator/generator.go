// Package generator composes the write guard, templates, route registry and
// module ledger into the init and create commands.
package generator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/firzaelbuho/bun-api-modular/internal/config"
	"github.com/firzaelbuho/bun-api-modular/internal/ctxlog"
	"github.com/firzaelbuho/bun-api-modular/internal/fsguard"
	"github.com/firzaelbuho/bun-api-modular/internal/ledger"
	"github.com/firzaelbuho/bun-api-modular/internal/naming"
	"github.com/firzaelbuho/bun-api-modular/internal/registry"
	"github.com/firzaelbuho/bun-api-modular/internal/templates"
)

// Bundled module created by init.
const (
	TestModulePath  = "test"
	TestModuleRoute = "tests"
)

// InitOptions configure one init run.
type InitOptions struct {
	Force  bool
	DryRun bool
}

// CreateOptions configure one create run. Route overrides the pluralized
// module name.
type CreateOptions struct {
	Route  string
	Force  bool
	DryRun bool
}

// Result describes what a run did, or would do in dry-run mode.
type Result struct {
	DryRun  bool
	Changes []fsguard.Change
	Module  ledger.ModuleEntry

	// Registered is false when the route identifier was already in the
	// registry.
	Registered bool
	// Tracked is false when the module was already in the state document.
	Tracked bool
}

// Generator writes into one project.
type Generator struct {
	root   string
	cfg    *config.ProjectConfig
	ledger *ledger.Ledger
}

// New creates a generator for the project at root.
func New(root string, cfg *config.ProjectConfig) *Generator {
	return &Generator{
		root:   root,
		cfg:    cfg,
		ledger: ledger.New(cfg.Ledger.Log, cfg.Ledger.State),
	}
}

// WithClock makes the ledger timestamp log lines with now.
func (gen *Generator) WithClock(now func() time.Time) *Generator {
	clone := *gen
	clone.ledger = gen.ledger.WithClock(now)
	return &clone
}

// Config returns the project configuration.
func (gen *Generator) Config() *config.ProjectConfig {
	return gen.cfg
}

// RunInit writes the project skeleton and the bundled test module.
func (gen *Generator) RunInit(ctx context.Context, opts InitOptions) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	guard := fsguard.New(gen.root, fsguard.Options{Force: opts.Force, DryRun: opts.DryRun})

	for _, dir := range []string{gen.cfg.Paths.RoutesDir, gen.cfg.Paths.ModulesDir, path.Join(gen.cfg.Paths.SrcDir, "shared")} {
		if err := guard.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	files, err := templates.ProjectFiles(gen.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render project files: %w", err)
	}
	if err := writeFiles(ctx, guard, files); err != nil {
		return nil, err
	}

	logger.Debug("project skeleton written", "root", gen.root, "dry_run", opts.DryRun)

	return gen.createModule(ctx, guard, TestModulePath, TestModuleRoute, ledger.SourceInit)
}

// RunCreate generates the module at modulePath, registers its route and
// records it in the ledger.
func (gen *Generator) RunCreate(ctx context.Context, modulePath string, opts CreateOptions) (*Result, error) {
	modulePath = strings.TrimSpace(modulePath)
	if err := naming.ValidateModulePath(modulePath); err != nil {
		return nil, err
	}

	route := strings.Trim(strings.TrimSpace(opts.Route), "/")
	if route == "" {
		route = naming.Pluralize(naming.ModuleName(modulePath))
	} else if err := naming.ValidateRoute(route); err != nil {
		return nil, err
	}

	guard := fsguard.New(gen.root, fsguard.Options{Force: opts.Force, DryRun: opts.DryRun})
	if err := gen.preflight(ctx, modulePath, route, opts.Force); err != nil {
		return nil, err
	}

	return gen.createModule(ctx, guard, modulePath, route, ledger.SourceCreate)
}

// preflight refuses a create before anything is written: the registry and
// state document must be readable, the route identifier must be free or
// already bound to the same route file, and every module file must be
// writable under force.
func (gen *Generator) preflight(ctx context.Context, modulePath, route string, force bool) error {
	scratch := fsguard.New(gen.root, fsguard.Options{Force: force, DryRun: true})

	doc, err := registry.Load(scratch, gen.cfg.Paths.Registry, gen.cfg.Paths.Collection)
	if err != nil {
		return err
	}
	if _, err := gen.ledger.Load(scratch); err != nil {
		return err
	}

	data, files, specifier, err := gen.moduleFiles(modulePath, route)
	if err != nil {
		return err
	}
	var conflict *registry.RouteConflictError
	if errors.As(doc.Conflict(data.RouteVar, specifier), &conflict) {
		conflict.Path = gen.cfg.Paths.Registry
		return conflict
	}

	return writeFiles(ctx, scratch, files)
}

func (gen *Generator) moduleFiles(modulePath, route string) (templates.ModuleData, []templates.File, string, error) {
	data := templates.NewModuleData(gen.cfg, modulePath, route)
	files, err := templates.ModuleFiles(gen.cfg, data)
	if err != nil {
		return data, nil, "", fmt.Errorf("failed to render module %s: %w", modulePath, err)
	}
	specifier := templates.ImportSpecifier(path.Dir(gen.cfg.Paths.Registry), templates.RouteFilePath(gen.cfg, data.Plural))
	return data, files, specifier, nil
}

func (gen *Generator) createModule(ctx context.Context, guard *fsguard.Guard, modulePath, route string, source ledger.Source) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	data, files, specifier, err := gen.moduleFiles(modulePath, route)
	if err != nil {
		return nil, err
	}

	if err := guard.EnsureDir(templates.ModuleDir(gen.cfg, modulePath)); err != nil {
		return nil, err
	}
	if err := writeFiles(ctx, guard, files); err != nil {
		return nil, err
	}

	registered, err := registry.Register(guard, gen.cfg.Paths.Registry, gen.cfg.Paths.Collection, specifier, data.RouteVar)
	if err != nil {
		return nil, err
	}
	logger.Debug("route registry", "identifier", data.RouteVar, "from", specifier, "changed", registered)

	entry := ledger.ModuleEntry{
		Name:       data.Name,
		ModulePath: modulePath,
		Route:      "/" + data.Plural,
		CreatedBy:  source,
	}
	tracked, err := gen.ledger.Track(guard, entry.Name, entry.ModulePath, entry.Route, entry.CreatedBy)
	if err != nil {
		return nil, err
	}
	logger.Debug("module ledger", "module", modulePath, "added", tracked)

	return &Result{
		DryRun:     guard.Options().DryRun,
		Changes:    guard.Changes(),
		Module:     entry,
		Registered: registered,
		Tracked:    tracked,
	}, nil
}

func writeFiles(ctx context.Context, guard *fsguard.Guard, files []templates.File) error {
	logger := ctxlog.FromContext(ctx)

	for _, file := range files {
		if file.Optional {
			written, err := guard.WriteFileIfAbsent(file.Path, file.Content)
			if err != nil {
				return err
			}
			if !written {
				logger.Debug("kept existing file", "path", file.Path)
			}
			continue
		}

		if err := guard.WriteFile(file.Path, file.Content); err != nil {
			return err
		}
		logger.Debug("wrote file", "path", file.Path, "dry_run", guard.Options().DryRun)
	}
	return nil
}
