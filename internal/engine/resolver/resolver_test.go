// # internal/engine/resolver/resolver_test.go
package resolver

import (
	"bufio"
	"bytes"
	"context"
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"dts2as/internal/shared/observability"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	return New(parser.NewParser(loader), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newLoggingResolver records every log line as JSON so tests can inspect
// the diagnostics.
func newLoggingResolver(t *testing.T) (*Resolver, *bytes.Buffer) {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(parser.NewParser(loader), logger), &buf
}

func logRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	return records
}

// findRecord returns the first record at level with msg whose attributes
// include attrs.
func findRecord(records []map[string]any, level, msg string, attrs map[string]string) (map[string]any, bool) {
	for _, rec := range records {
		if rec["level"] != level || rec["msg"] != msg {
			continue
		}
		matched := true
		for k, v := range attrs {
			if fmt.Sprint(rec[k]) != v {
				matched = false
				break
			}
		}
		if matched {
			return rec, true
		}
	}
	return nil, false
}

func warnings(reason string) float64 {
	return testutil.ToFloat64(observability.ResolverWarningsTotal.WithLabelValues(reason))
}

func resolveSources(t *testing.T, sources ...string) *Program {
	t.Helper()
	prog, err := tryResolve(t, sources...)
	require.NoError(t, err)
	return prog
}

func tryResolve(t *testing.T, sources ...string) (*Program, error) {
	t.Helper()
	r := newTestResolver(t)
	prog := NewProgram()
	files := make([]Source, len(sources))
	for i, src := range sources {
		files[i] = Source{Path: fmt.Sprintf("input%d.d.ts", i), Text: []byte(src)}
	}
	return prog, r.ResolveAll(context.Background(), prog, files)
}

func mustClass(t *testing.T, prog *Program, fqn string) *model.ClassDefinition {
	t.Helper()
	cls, ok := prog.World.Class(fqn)
	require.True(t, ok, "expected class %s", fqn)
	return cls
}

func mustFunction(t *testing.T, prog *Program, fqn string) *model.PackageFunctionDefinition {
	t.Helper()
	def, ok := prog.World.Lookup(fqn)
	require.True(t, ok, "expected function %s", fqn)
	fn, ok := def.(*model.PackageFunctionDefinition)
	require.True(t, ok, "expected %s to be a function, got %s", fqn, def.Kind())
	return fn
}

func paramTypes(params []model.Parameter) []model.TypeRef {
	out := make([]model.TypeRef, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func TestMapType_PrimitiveKeywordsIgnoreNesting(t *testing.T) {
	cases := []struct {
		name   string
		source string
		fqn    string
	}{
		{name: "TopLevel", source: "declare function f(a: number, b: boolean, c: string, d: any): void;", fqn: "f"},
		{name: "Namespace", source: "declare namespace a { function f(a: number, b: boolean, c: string, d: any): void; }", fqn: "a.f"},
		{name: "Nested", source: "declare namespace a.b { namespace c { function f(a: number, b: boolean, c: string, d: any): void; } }", fqn: "a.b.c.f"},
		{name: "QuotedModule", source: `declare module "lib" { function f(a: number, b: boolean, c: string, d: any): void; }`, fqn: "lib.f"},
	}
	want := []model.TypeRef{
		model.Prim(model.Number),
		model.Prim(model.Boolean),
		model.Prim(model.String),
		model.Prim(model.Object),
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog := resolveSources(t, tc.source)
			fn := mustFunction(t, prog, tc.fqn)
			assert.Equal(t, want, paramTypes(fn.Params))
			assert.Equal(t, model.Prim(model.Void), fn.Return)
		})
	}
}

func TestMapType_Rules(t *testing.T) {
	prog := resolveSources(t, `
declare class Thing {}
declare class Box<T> {
	self: this;
	fn: (x: number) => void;
	ctor: new () => Thing;
	either: string | number;
	both: Thing & Box<string>;
	shape: { a: number };
	lit: "on";
	num: 42;
	flag: true;
	list: string[];
	tuple: [number, string];
	generic: Array<number>;
	param: T;
	ref: Thing;
	boxed: Box<Thing>;
	grouped: (Thing);
	missing: Nowhere;
	nothing: void;
	method(): Thing;
	predicate(x: any): x is Thing;
}
`)
	box := mustClass(t, prog, "Box")
	want := map[string]model.TypeRef{
		"self":    model.Ref("Box"),
		"fn":      model.Prim(model.Function),
		"ctor":    model.Prim(model.Function),
		"either":  model.Prim(model.Object),
		"both":    model.Prim(model.Object),
		"shape":   model.Prim(model.Object),
		"lit":     model.Prim(model.String),
		"num":     model.Prim(model.Number),
		"flag":    model.Prim(model.Boolean),
		"list":    model.Prim(model.Array),
		"tuple":   model.Prim(model.Array),
		"generic": model.Prim(model.Array),
		"param":   model.Prim(model.Object),
		"ref":     model.Ref("Thing"),
		"boxed":   model.Ref("Box"),
		"grouped": model.Ref("Thing"),
		"missing": model.Prim(model.Object),
		"nothing": model.Prim(model.Object),
	}
	for name, typ := range want {
		prop, ok := box.FindProperty(name)
		require.True(t, ok, "property %s", name)
		assert.Equal(t, typ, prop.Type, "property %s", name)
	}

	method, ok := box.FindMethod("method")
	require.True(t, ok)
	assert.Equal(t, model.Ref("Thing"), method.Return)

	predicate, ok := box.FindMethod("predicate")
	require.True(t, ok)
	assert.Equal(t, model.Prim(model.Boolean), predicate.Return)
}

func TestMapType_ScopeQualification(t *testing.T) {
	prog := resolveSources(t, `
declare class Node {}
declare namespace outer {
	class Node {}
	namespace inner {
		class Leaf extends Node {
			root: Node;
			global: Other;
		}
	}
}
declare class Other {}
`)
	leaf := mustClass(t, prog, "outer.inner.Leaf")
	assert.Equal(t, "outer.Node", leaf.SuperClass)

	root, ok := leaf.FindProperty("root")
	require.True(t, ok)
	assert.Equal(t, model.Ref("outer.Node"), root.Type)

	global, ok := leaf.FindProperty("global")
	require.True(t, ok)
	assert.Equal(t, model.Ref("Other"), global.Type)
}

func TestFunctionAlias(t *testing.T) {
	prog := resolveSources(t, `
interface Callback { (err: any, value: string): void; }
declare namespace ns {
	interface Listener { (e: number): boolean }
	function on(listener: Listener): Callback;
}
declare var handler: Callback;
`)
	assert.False(t, prog.World.Has("Callback"))
	assert.False(t, prog.World.Has("ns.Listener"))
	assert.True(t, prog.FunctionAliases["Callback"])
	assert.True(t, prog.FunctionAliases["ns.Listener"])

	on := mustFunction(t, prog, "ns.on")
	assert.Equal(t, []model.TypeRef{model.Prim(model.Function)}, paramTypes(on.Params))
	assert.Equal(t, model.Prim(model.Function), on.Return)

	def, ok := prog.World.Lookup("handler")
	require.True(t, ok)
	assert.Equal(t, model.Prim(model.Function), def.(*model.PackageVariableDefinition).Type)
}

func TestFunctionAlias_InterfaceWithMoreMembersIsKept(t *testing.T) {
	prog := resolveSources(t, `
interface Fn { (x: number): void; name: string; }
`)
	iface, ok := prog.World.Interface("Fn")
	require.True(t, ok)
	assert.Len(t, iface.Properties, 1)
	assert.Empty(t, iface.Methods)
	assert.False(t, prog.FunctionAliases["Fn"])
}

func TestOverloadMerge_IncompatibleTypesWidenToObject(t *testing.T) {
	prog := resolveSources(t, `
declare function f(x: number): void;
declare function f(x: string): void;
`)
	fn := mustFunction(t, prog, "f")
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "x", fn.Params[0].Name)
	assert.Equal(t, model.Prim(model.Object), fn.Params[0].Type)
}

func TestOverloadMerge_Positional(t *testing.T) {
	prog := resolveSources(t, `
declare function g(a: number): number;
declare function g(b: number, c: string): string;
declare function h(a: string, b: boolean): void;
declare function h(a: string): void;
declare function k(...rest: any[]): void;
declare function k(a: number, b: number): void;
`)
	g := mustFunction(t, prog, "g")
	require.Len(t, g.Params, 2)
	assert.Equal(t, "a", g.Params[0].Name, "first declaration names the parameter")
	assert.Equal(t, model.Prim(model.Number), g.Params[0].Type)
	assert.Equal(t, "", g.Params[0].Default)
	assert.Equal(t, "c", g.Params[1].Name)
	assert.Equal(t, model.Prim(model.String), g.Params[1].Type)
	assert.Equal(t, "null", g.Params[1].Default)
	assert.Equal(t, model.Prim(model.Object), g.Return)

	h := mustFunction(t, prog, "h")
	require.Len(t, h.Params, 2)
	assert.Equal(t, "", h.Params[0].Default)
	assert.Equal(t, "false", h.Params[1].Default)
	assert.Equal(t, model.Prim(model.Void), h.Return)

	k := mustFunction(t, prog, "k")
	require.Len(t, k.Params, 1)
	assert.True(t, k.Params[0].Rest)
}

func TestOverloadMerge_SetOfTypesIsOrderIndependent(t *testing.T) {
	forward := resolveSources(t, `
declare function f(a: number, b: string): void;
declare function f(a: string, b: string): void;
`)
	backward := resolveSources(t, `
declare function f(a: string, b: string): void;
declare function f(a: number, b: string): void;
`)
	assert.Equal(t,
		paramTypes(mustFunction(t, forward, "f").Params),
		paramTypes(mustFunction(t, backward, "f").Params))
	assert.Equal(t, model.Prim(model.Object), mustFunction(t, forward, "f").Params[0].Type)
	assert.Equal(t, model.Prim(model.String), mustFunction(t, forward, "f").Params[1].Type)
}

func TestOverloadMerge_KeepsFirstDefault(t *testing.T) {
	prog := resolveSources(t, `
declare function f(a?: number): void;
declare function f(a?: boolean): void;
`)
	fn := mustFunction(t, prog, "f")
	require.Len(t, fn.Params, 1)
	assert.Equal(t, model.Prim(model.Object), fn.Params[0].Type)
	assert.Equal(t, "0", fn.Params[0].Default)
}

func TestOverloadMerge_MethodsAndConstructors(t *testing.T) {
	prog := resolveSources(t, `
declare class Point {
	constructor();
	constructor(x: number, y: number);
	move(dx: number): void;
	move(to: Point): void;
	static origin(): Point;
}
`)
	point := mustClass(t, prog, "Point")
	require.NotNil(t, point.Constructor)
	require.Len(t, point.Constructor.Params, 2)
	assert.Equal(t, "0", point.Constructor.Params[0].Default)
	assert.Equal(t, "0", point.Constructor.Params[1].Default)
	assert.True(t, point.Constructor.Return.IsZero())

	require.Len(t, point.Methods, 2)
	move, ok := point.FindMethod("move")
	require.True(t, ok)
	assert.False(t, move.Static)
	assert.Equal(t, []model.TypeRef{model.Prim(model.Object)}, paramTypes(move.Params))

	origin, ok := point.FindMethod("origin")
	require.True(t, ok)
	assert.True(t, origin.Static)
	assert.Equal(t, model.AccessPublic, origin.Access)
}

func TestDecomposedClass_SelfTyped(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{name: "InterfaceFirst", source: `
interface Foo { a: number; b(): void; }
declare var Foo: Foo;
`},
		{name: "VariableFirst", source: `
declare var Foo: Foo;
interface Foo { a: number; b(): void; }
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog := resolveSources(t, tc.source)
			_, isIface := prog.World.Interface("Foo")
			assert.False(t, isIface)

			foo := mustClass(t, prog, "Foo")
			assert.Equal(t, model.AccessPublic, foo.Access)
			assert.Equal(t, 2, len(foo.Properties)+len(foo.Methods))
			for _, p := range foo.Properties {
				assert.True(t, p.Static, p.Name)
				assert.Equal(t, model.AccessPublic, p.Access)
			}
			for _, m := range foo.Methods {
				assert.True(t, m.Static, m.Name)
			}
		})
	}
}

func TestDecomposedClass_StaticSide(t *testing.T) {
	prog := resolveSources(t, `
interface Foo { a: number; b(): string; }
interface FooStatic {
	new(size: number): Foo;
	prototype: Foo;
	create(): Foo;
	count: number;
}
declare var Foo: FooStatic;
declare function use(s: FooStatic): void;
`)
	assert.False(t, prog.World.Has("FooStatic"))

	foo := mustClass(t, prog, "Foo")
	var instance, static []string
	for _, p := range foo.Properties {
		if p.Static {
			static = append(static, p.Name)
		} else {
			instance = append(instance, p.Name)
		}
	}
	for _, m := range foo.Methods {
		if m.Static {
			static = append(static, m.Name)
		} else {
			instance = append(instance, m.Name)
		}
	}
	assert.ElementsMatch(t, []string{"a", "b"}, instance)
	assert.ElementsMatch(t, []string{"count", "create"}, static)

	require.NotNil(t, foo.Constructor)
	require.Len(t, foo.Constructor.Params, 1)
	assert.Equal(t, "size", foo.Constructor.Params[0].Name)

	use := mustFunction(t, prog, "use")
	assert.Equal(t, model.Prim(model.Object), use.Params[0].Type, "references to a merged static side fall back to Object")
}

func TestDecomposedClass_VariableInEarlierFile(t *testing.T) {
	prog := resolveSources(t,
		"declare var Foo: Foo;",
		"interface Foo { a: number; b(): void; }",
	)
	def, ok := prog.World.Lookup("Foo")
	require.True(t, ok)
	foo, ok := def.(*model.ClassDefinition)
	require.True(t, ok, "expected a class, got %s", def.Kind())
	require.Len(t, foo.Properties, 1)
	require.Len(t, foo.Methods, 1)
	assert.True(t, foo.Properties[0].Static)
	assert.True(t, foo.Methods[0].Static)
	assert.Equal(t, model.AccessPublic, foo.Access)
}

func TestDecomposedClass_StaticSideAcrossFiles(t *testing.T) {
	cases := []struct {
		name    string
		sources []string
	}{
		{name: "SideInLaterFile", sources: []string{
			"interface Foo { a: number; }\ndeclare var Foo: FooStatic;",
			"interface FooStatic { create(): Foo; }",
		}},
		{name: "VariableInEarlierFile", sources: []string{
			"declare var Foo: FooStatic;\ninterface FooStatic { create(): Foo; }",
			"interface Foo { a: number; }",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog := resolveSources(t, tc.sources...)
			assert.False(t, prog.World.Has("FooStatic"), "merged static side is not emitted")

			foo := mustClass(t, prog, "Foo")
			create, ok := foo.FindMethod("create")
			require.True(t, ok)
			assert.True(t, create.Static)
			a, ok := foo.FindProperty("a")
			require.True(t, ok)
			assert.False(t, a.Static)
		})
	}
}

func TestDecomposedClass_UnknownStaticSideWarns(t *testing.T) {
	r, logs := newLoggingResolver(t)
	before := warnings("unknown_static_side")

	prog := NewProgram()
	require.NoError(t, r.ResolveAll(context.Background(), prog, []Source{{
		Path: "a.d.ts",
		Text: []byte("interface Foo { a: number; }\ndeclare var Foo: Missing;"),
	}}))

	foo := mustClass(t, prog, "Foo")
	a, ok := foo.FindProperty("a")
	require.True(t, ok)
	assert.False(t, a.Static)

	assert.Equal(t, before+1, warnings("unknown_static_side"))
	_, found := findRecord(logRecords(t, logs), "WARN", "unknown static side, class keeps instance members only",
		map[string]string{"class": "Foo", "type": "Missing"})
	assert.True(t, found, "expected a warning for the unresolved static side")
}

func TestDecomposedClass_InlineStaticSide(t *testing.T) {
	prog := resolveSources(t, `
interface Widget { id: string; }
declare var Widget: {
	new(id: string): Widget;
	lookup(id: string): Widget;
};
`)
	widget := mustClass(t, prog, "Widget")
	lookup, ok := widget.FindMethod("lookup")
	require.True(t, ok)
	assert.True(t, lookup.Static)
	assert.Equal(t, model.Ref("Widget"), lookup.Return)

	id, ok := widget.FindProperty("id")
	require.True(t, ok)
	assert.False(t, id.Static)
	require.NotNil(t, widget.Constructor)
}

func TestDecomposedClass_HeritageBecomesSuperClass(t *testing.T) {
	prog := resolveSources(t, `
interface Base { x: number; }
declare var Base: BaseStatic;
interface BaseStatic { new(): Base; }
interface Derived extends Base { y: number; }
declare var Derived: DerivedStatic;
interface DerivedStatic { new(): Derived; }
declare class Leaf extends Derived {}
interface Marker extends Base {}
`)
	derived := mustClass(t, prog, "Derived")
	assert.Equal(t, "Base", derived.SuperClass)
	assert.Empty(t, derived.Interfaces)

	leaf := mustClass(t, prog, "Leaf")
	assert.Equal(t, "Derived", leaf.SuperClass)

	marker, ok := prog.World.Interface("Marker")
	require.True(t, ok)
	assert.Empty(t, marker.Extends, "interfaces cannot extend classes")
}

func TestClass_Heritage(t *testing.T) {
	prog := resolveSources(t, `
declare class A {}
interface I { run(): void; }
interface J {}
declare class B extends A implements I, J {}
`)
	b := mustClass(t, prog, "B")
	assert.Equal(t, "A", b.SuperClass)
	assert.Equal(t, []string{"I", "J"}, b.Interfaces)
}

func TestClass_FatalResolution(t *testing.T) {
	cases := []struct {
		name   string
		source string
		kind   errors.ResolutionKind
		fqn    string
		line   int
	}{
		{name: "SuperClass", source: "declare class B extends Missing {}", kind: errors.KindSuperClass, fqn: "Missing", line: 1},
		{name: "Implements", source: "\ndeclare class B implements Missing {}", kind: errors.KindInterface, fqn: "Missing", line: 2},
		{name: "InterfaceExtends", source: "interface I extends Gone<T> {}", kind: errors.KindInterface, fqn: "Gone", line: 1},
		{name: "TypeAlias", source: "type Id = Unknown;", kind: errors.KindTypeAlias, fqn: "Unknown", line: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tryResolve(t, tc.source)
			require.Error(t, err)
			re, ok := errors.AsResolution(err)
			require.True(t, ok, "expected a resolution error, got %v", err)
			assert.Equal(t, tc.kind, re.Kind)
			assert.Equal(t, tc.fqn, re.FQN)
			assert.Equal(t, "input0.d.ts", re.File)
			assert.Equal(t, tc.line, re.Line)
			assert.True(t, errors.IsCode(err, errors.CodeNotFound))
		})
	}
}

func TestClass_MemberNamedAfterClassIsDropped(t *testing.T) {
	prog := resolveSources(t, `
declare class Item {
	Item: string;
	Item(): void;
	value: number;
}
`)
	item := mustClass(t, prog, "Item")
	assert.False(t, item.HasMember("Item"))
	assert.True(t, item.HasMember("value"))
}

func TestMembers(t *testing.T) {
	prog := resolveSources(t, `
declare class Config {
	static readonly version: string;
	name: string;
	get size(): number;
	set size(v: number);
	[key: string]: any;
	load(path: string, retries?: number, strict?: boolean): boolean;
	each(...items: string[]): void;
	private secret;
	["computed"]: string;
}
`)
	cfg := mustClass(t, prog, "Config")

	version, ok := cfg.FindProperty("version")
	require.True(t, ok)
	assert.True(t, version.Static)
	assert.True(t, version.Constant)
	assert.Equal(t, model.AccessPublic, version.Access)

	name, ok := cfg.FindProperty("name")
	require.True(t, ok)
	assert.False(t, name.Static)
	assert.False(t, name.Constant)

	size, ok := cfg.FindProperty("size")
	require.True(t, ok)
	assert.Equal(t, model.Prim(model.Number), size.Type)

	secret, ok := cfg.FindProperty("secret")
	require.True(t, ok)
	assert.Equal(t, model.Prim(model.Object), secret.Type)

	load, ok := cfg.FindMethod("load")
	require.True(t, ok)
	require.Len(t, load.Params, 3)
	assert.Equal(t, "", load.Params[0].Default)
	assert.Equal(t, "0", load.Params[1].Default)
	assert.Equal(t, "false", load.Params[2].Default)

	each, ok := cfg.FindMethod("each")
	require.True(t, ok)
	require.Len(t, each.Params, 1)
	assert.True(t, each.Params[0].Rest)
	assert.Equal(t, "items", each.Params[0].Name)

	assert.Len(t, cfg.Properties, 4)
	assert.Len(t, cfg.Methods, 2)
}

func TestInterfaceMembersHaveNoAccess(t *testing.T) {
	prog := resolveSources(t, `
interface Shape {
	area(): number;
	readonly sides: number;
	new (x: number): Shape;
}
`)
	shape, ok := prog.World.Interface("Shape")
	require.True(t, ok)
	require.Len(t, shape.Methods, 1)
	assert.Equal(t, model.AccessNone, shape.Methods[0].Access)
	require.Len(t, shape.Properties, 1)
	assert.Equal(t, model.AccessNone, shape.Properties[0].Access)
	assert.True(t, shape.Properties[0].Constant)
	require.NotNil(t, shape.Constructor, "construct signatures are kept for static sides")
}

func TestQuotedModule(t *testing.T) {
	prog := resolveSources(t, `
declare module "@scope/my-lib" {
	export class Client {}
	export function connect(url: string): Client;
}
declare namespace plain { class Local {} }
`)
	client := mustClass(t, prog, "scope.my_lib.Client")
	assert.True(t, client.Require)
	assert.Equal(t, "scope.my_lib", client.PackageName)

	connect := mustFunction(t, prog, "scope.my_lib.connect")
	assert.True(t, connect.Require)
	assert.Equal(t, model.Ref("scope.my_lib.Client"), connect.Return)

	local := mustClass(t, prog, "plain.Local")
	assert.False(t, local.Require)
}

func TestTypeAliases(t *testing.T) {
	prog := resolveSources(t, `
type Handler = (e: Event) => void;
type Id = string;
type Ref = Target;
type Chain = Ref;
declare class Target {}
declare var id: Id;
declare function handle(h: Handler, r: Chain): Id;
`)
	fn := mustFunction(t, prog, "handle")
	assert.Equal(t, []model.TypeRef{model.Prim(model.Function), model.Ref("Target")}, paramTypes(fn.Params))
	assert.Equal(t, model.Prim(model.String), fn.Return)
	assert.Equal(t, model.Ref("Target"), prog.TypeAliases["Chain"])

	def, ok := prog.World.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, model.Prim(model.String), def.(*model.PackageVariableDefinition).Type)
}

func TestVariables(t *testing.T) {
	prog := resolveSources(t, `
declare var a: number;
declare let b: string;
declare const c: boolean;
declare var a: string;
declare var untyped;
`)
	get := func(fqn string) *model.PackageVariableDefinition {
		def, ok := prog.World.Lookup(fqn)
		require.True(t, ok, fqn)
		return def.(*model.PackageVariableDefinition)
	}
	assert.Equal(t, model.Prim(model.Object), get("a").Type, "redeclared with another type")
	assert.False(t, get("b").Constant)
	assert.True(t, get("c").Constant)
	assert.Equal(t, model.Prim(model.Object), get("untyped").Type)
}

func TestEnums(t *testing.T) {
	prog := resolveSources(t, `
declare enum Color { Red, Green = 3, Label = "label" }
declare function paint(c: Color): void;
`)
	color := mustClass(t, prog, "Color")
	require.Len(t, color.Properties, 3)
	for _, p := range color.Properties {
		assert.True(t, p.Static)
		assert.True(t, p.Constant)
	}
	assert.Equal(t, model.Prim(model.Number), color.Properties[1].Type)
	assert.Equal(t, model.Prim(model.String), color.Properties[2].Type)

	paint := mustFunction(t, prog, "paint")
	assert.Equal(t, model.Ref("Color"), paint.Params[0].Type)
}

func TestUnknownSyntaxIsSkipped(t *testing.T) {
	r, logs := newLoggingResolver(t)
	before := warnings("unknown_declaration")

	prog := NewProgram()
	require.NoError(t, r.ResolveAll(context.Background(), prog, []Source{{
		Path: "mixed.d.ts",
		Text: []byte(`
import fs = require("fs");
if (ready) { go(); }
declare class Kept {}
export = Kept;
`),
	}}))
	assert.True(t, prog.World.Has("Kept"))
	assert.Equal(t, 1, prog.World.Len())

	records := logRecords(t, logs)
	_, found := findRecord(records, "WARN", "skipping unrecognized declaration", map[string]string{"kind": "if_statement"})
	assert.True(t, found, "expected a warning for the if statement")
	_, found = findRecord(records, "INFO", "symbol discovered", map[string]string{"fqn": "Kept", "kind": "class", "file": "mixed.d.ts"})
	assert.True(t, found, "expected an info line for the discovered class")
	assert.Equal(t, before+1, warnings("unknown_declaration"), "unknown statements are reported by one pass only")
}

func TestPopulateMembers_UnknownKindWarns(t *testing.T) {
	r, logs := newLoggingResolver(t)
	doc, err := r.parser.Parse("odd.d.ts", []byte("function body() { let x = 1; }"))
	require.NoError(t, err)
	defer doc.Close()

	fn := parser.FirstNamedChild(doc.Root())
	require.NotNil(t, fn)
	require.Equal(t, "function_declaration", fn.Kind())

	f := &file{logger: r.logger, prog: NewProgram(), doc: doc, aliases: make(map[string]*pendingAlias)}
	before := warnings("unknown_member")

	var members model.Members
	require.NoError(t, f.populateMembers(Context{}, memberTarget{
		fqn:     "Odd",
		members: &members,
		access:  model.AccessPublic,
	}, fn.ChildByFieldName("body")))

	assert.Empty(t, members.Properties)
	assert.Empty(t, members.Methods)
	assert.Equal(t, before+1, warnings("unknown_member"))
	_, found := findRecord(logRecords(t, logs), "WARN", "skipping unrecognized member",
		map[string]string{"kind": "lexical_declaration", "type": "Odd"})
	assert.True(t, found)
}

func TestCrossFileReferences(t *testing.T) {
	prog := resolveSources(t,
		"declare class A { constructor(n: number); }",
		"declare class B extends A {}\ndeclare function f(x: number): void;",
		"declare function f(x: string, y: number): void;",
	)
	b := mustClass(t, prog, "B")
	assert.Equal(t, "A", b.SuperClass)

	f := mustFunction(t, prog, "f")
	require.Len(t, f.Params, 2)
	assert.Equal(t, model.Prim(model.Object), f.Params[0].Type)
	assert.Equal(t, "0", f.Params[1].Default)
	assert.Equal(t, "input1.d.ts", f.SourceFile)
}

func TestBaselineIsExternalAndCloned(t *testing.T) {
	r := newTestResolver(t)
	base := NewProgram()
	require.NoError(t, r.Resolve(context.Background(), base, Source{
		Path: "lib.d.ts",
		Text: []byte(`
interface Error { message: string; }
interface ErrorConstructor { new(message?: string): Error; }
declare var Error: ErrorConstructor;
interface Widget {}
declare var Widget: Widget;
`),
		External: true,
	}))

	r.Finish(base)

	errCls := mustClass(t, base, "Error")
	assert.True(t, errCls.External)
	assert.True(t, errCls.Dynamic)
	assert.True(t, base.World.Has("ErrorConstructor"), "external static sides stay queryable")

	widget := mustClass(t, base, "Widget")
	assert.False(t, widget.Dynamic, "only the built-in allow-list is dynamic")

	run := base.Clone()
	require.NoError(t, r.Resolve(context.Background(), run, Source{
		Path: "app.d.ts",
		Text: []byte("declare class AppError extends Error { code: number; }"),
	}))
	r.Finish(run)
	app := mustClass(t, run, "AppError")
	assert.False(t, app.External)
	assert.False(t, app.Dynamic)
	assert.Equal(t, "Error", app.SuperClass)
	assert.False(t, base.World.Has("AppError"), "the baseline is not mutated by later runs")
}

func TestSuperClassCycleIsBroken(t *testing.T) {
	prog := resolveSources(t, `
declare class A extends B {}
declare class B extends A {}
`)
	a := mustClass(t, prog, "A")
	b := mustClass(t, prog, "B")
	assert.True(t, a.SuperClass == "" || b.SuperClass == "")
	assert.LessOrEqual(t, len(prog.World.SuperChain(a)), 1)
	assert.LessOrEqual(t, len(prog.World.SuperChain(b)), 1)
}

func TestResolveAll_StopsAtFirstFatalError(t *testing.T) {
	r := newTestResolver(t)
	prog := NewProgram()
	err := r.ResolveAll(context.Background(), prog, []Source{
		{Path: "a.d.ts", Text: []byte("declare class A {}")},
		{Path: "b.d.ts", Text: []byte("declare class B extends Nope {}")},
		{Path: "c.d.ts", Text: []byte("declare class C {}")},
	})
	require.Error(t, err)
	assert.True(t, prog.World.Has("A"))
	assert.False(t, prog.World.Has("C"))
}

func TestResolveAll_Cancelled(t *testing.T) {
	r := newTestResolver(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.ResolveAll(ctx, NewProgram(), []Source{{Path: "a.d.ts", Text: []byte("declare class A {}")}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestModuleSegments(t *testing.T) {
	cases := map[string][]string{
		"lodash":           {"lodash"},
		"@angular/core":    {"angular", "core"},
		"my-lib/sub.path":  {"my_lib", "sub", "path"},
		"3d/engine":        {"_3d", "engine"},
		"package/internal": {"package_", "internal_"},
	}
	for in, want := range cases {
		assert.Equal(t, want, moduleSegments(in), in)
	}
}
