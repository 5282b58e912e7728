// # internal/engine/resolver/resolver.go
package resolver

import (
	"context"
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"dts2as/internal/shared/observability"
	"log/slog"
	"slices"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Program is the state shared by every file of a run: the symbol table plus
// the names that never become definitions of their own.
type Program struct {
	World *model.World
	// FunctionAliases holds interfaces made of a single call signature.
	FunctionAliases map[string]bool
	TypeAliases     map[string]model.TypeRef

	// functions and variables whose first declaration has been populated;
	// later declarations merge into it.
	functions map[string]bool
	variables map[string]bool
	// variableTypes keeps the named type of each populated variable, for an
	// interface of the same name declared by a later file.
	variableTypes map[string]staticSide
	// staticSides are applied by Finish.
	staticSides []staticSide
}

func NewProgram() *Program {
	return &Program{
		World:           model.NewWorld(),
		FunctionAliases: make(map[string]bool),
		TypeAliases:     make(map[string]model.TypeRef),
		functions:       make(map[string]bool),
		variables:       make(map[string]bool),
		variableTypes:   make(map[string]staticSide),
	}
}

// Clone deep-copies the program so a resolved baseline can seed several runs.
func (p *Program) Clone() *Program {
	out := &Program{
		World:           p.World.Clone(),
		FunctionAliases: make(map[string]bool, len(p.FunctionAliases)),
		TypeAliases:     make(map[string]model.TypeRef, len(p.TypeAliases)),
		functions:       make(map[string]bool, len(p.functions)),
		variables:       make(map[string]bool, len(p.variables)),
		variableTypes:   make(map[string]staticSide, len(p.variableTypes)),
		staticSides:     slices.Clone(p.staticSides),
	}
	for k, v := range p.FunctionAliases {
		out.FunctionAliases[k] = v
	}
	for k, v := range p.TypeAliases {
		out.TypeAliases[k] = v
	}
	for k, v := range p.functions {
		out.functions[k] = v
	}
	for k, v := range p.variables {
		out.variables[k] = v
	}
	for k, v := range p.variableTypes {
		out.variableTypes[k] = v
	}
	return out
}

// Source is one declaration file handed to the resolver.
type Source struct {
	Path string
	Text []byte
	// External marks baseline input: its definitions are never emitted.
	External bool
}

type Resolver struct {
	parser *parser.Parser
	logger *slog.Logger
}

func New(p *parser.Parser, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{parser: p, logger: logger}
}

// ResolveAll resolves sources in order into prog, then calls Finish. Later
// files may reference anything declared by earlier ones. The first fatal
// error stops the run.
func (r *Resolver) ResolveAll(ctx context.Context, prog *Program, sources []Source) error {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Resolve(ctx, prog, src); err != nil {
			return err
		}
	}
	r.Finish(prog)
	return nil
}

// Resolve runs the declaration and population passes for one file. Static
// sides wait for Finish, which the caller runs after the last file.
func (r *Resolver) Resolve(ctx context.Context, prog *Program, src Source) error {
	_, span := observability.Tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(
		attribute.String("path", src.Path),
		attribute.Bool("external", src.External),
	))
	defer span.End()

	start := time.Now()
	doc, err := r.parser.Parse(src.Path, src.Text)
	if err != nil {
		return errors.AddContext(err, errors.CtxPath, src.Path)
	}
	defer doc.Close()
	observability.ParsingDuration.WithLabelValues(doc.Language).Observe(time.Since(start).Seconds())

	for _, issue := range doc.Issues {
		observability.SyntaxIssuesTotal.Inc()
		r.logger.Warn("syntax error", "location", issue.Location.String(), "text", issue.Text, "missing", issue.Missing)
	}

	f := &file{
		logger:   r.logger,
		prog:     prog,
		doc:      doc,
		external: src.External,
		aliases:  make(map[string]*pendingAlias),
	}
	root := Context{Ambient: r.parser.Supports(src.Path)}

	passes := []struct {
		name string
		run  func() error
	}{
		{"declare", func() error { return f.walk(declarePass(f), root, doc.Root()) }},
		{"populate", func() error { return f.walk(populatePass(f), root, doc.Root()) }},
		{"finalize", func() error { f.finalize(); return nil }},
	}
	for _, pass := range passes {
		passStart := time.Now()
		err := pass.run()
		observability.ResolveDuration.WithLabelValues(pass.name).Observe(time.Since(passStart).Seconds())
		if err != nil {
			span.RecordError(err)
			return err
		}
	}

	observability.FilesResolvedTotal.Inc()
	return nil
}

// file is the per-file resolution state.
type file struct {
	logger   *slog.Logger
	prog     *Program
	doc      *parser.Document
	external bool

	aliases map[string]*pendingAlias
}

type pendingAlias struct {
	node      *sitter.Node
	ctx       Context
	resolving bool
}

// staticSide records `declare var Class: Side`. Side is looked up once the
// whole run is populated, so a later file may declare it; Side equal to
// Class makes every member of Class static.
type staticSide struct {
	class    string
	name     string
	scopes   []string
	location string
}

func (s staticSide) resolve(world *model.World) (string, bool) {
	for _, pkg := range s.scopes {
		fqn := model.JoinFQN(pkg, s.name)
		if world.Has(fqn) {
			return fqn, true
		}
	}
	return "", false
}

func (p *Program) addStaticSide(s staticSide) {
	for _, existing := range p.staticSides {
		if existing.class == s.class && existing.name == s.name {
			return
		}
	}
	p.staticSides = append(p.staticSides, s)
}

func (f *file) world() *model.World { return f.prog.World }

func (f *file) text(node *sitter.Node) string { return f.doc.Text(node) }

func (f *file) header(ctx Context, name string) model.Header {
	return model.Header{
		Name:        name,
		PackageName: ctx.Package(),
		SourceFile:  f.doc.Path,
		Access:      ctx.Access(),
		External:    f.external,
		Require:     ctx.Require,
	}
}

func (f *file) fail(kind errors.ResolutionKind, fqn string, node *sitter.Node) error {
	err := errors.NewResolution(kind, fqn)
	loc := f.doc.Location(node)
	err.File = loc.File
	err.Line = loc.Line
	return err
}

func (f *file) warn(reason string, node *sitter.Node, msg string, args ...any) {
	observability.ResolverWarningsTotal.WithLabelValues(reason).Inc()
	args = append([]any{"location", f.doc.Location(node).String()}, args...)
	f.logger.Warn(msg, args...)
}

func (f *file) discovered(fqn string, kind model.Kind) {
	f.logger.Info("symbol discovered", "fqn", fqn, "kind", kind.String(), "file", f.doc.Path)
}
