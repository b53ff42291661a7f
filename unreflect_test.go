package unreflect_test

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goccy/unreflect"
	"github.com/goccy/unreflect/accessor"
	ureflect "github.com/goccy/unreflect/reflect"
	"github.com/goccy/unreflect/registry"
)

type Base struct {
	Count int
	label string
}

func (b *Base) Increase(n int) int {
	b.Count += n
	return b.Count
}

func (b *Base) Reset() { b.Count = 0 }

func (b *Base) Fail() error { return errFailed }

func (b *Base) Panic() { panic("boom") }

func (b Base) Snapshot() int { return b.Count }

func (b *Base) Pair() (int, string) { return b.Count, b.label }

type Widget struct {
	Base
	Name  string `json:"name" db:"widget_name"`
	Tags  map[string]int
	Grid  [][]bool
	Owner *Base
	Any   any
}

func (w *Widget) Rename(name string) string {
	old := w.Name
	w.Name = name
	return old
}

type Counter interface {
	Increase(n int) int
}

type point struct {
	X, Y int
}

var (
	errFailed   = errors.New("failed")
	errNoSource = errors.New("no source")

	WidgetCount = 7
)

func NewWidget() *Widget { return &Widget{Name: "widget"} }

func NewWidgetNamed(name string) *Widget { return &Widget{Name: name} }

func NewWidgetFrom(v any) (*Widget, error) {
	if v == nil {
		return nil, errNoSource
	}
	return &Widget{Name: fmt.Sprint(v), Any: v}, nil
}

func Describe(s string) string { return "string:" + s }

func DescribeAny(v any) string { return fmt.Sprintf("any:%v", v) }

func Typed(s string, t reflect.Type) string { return s + ":" + t.String() }

func Int(s string, n int) string { return fmt.Sprintf("%s:%d", s, n) }

func Sum(values ...int) int {
	n := 0
	for _, v := range values {
		n += v
	}
	return n
}

var widgetType = reflect.TypeOf(Widget{})

func newEnv(t *testing.T, opts ...unreflect.Option) *unreflect.Env {
	t.Helper()
	env := unreflect.New(append([]unreflect.Option{unreflect.WithRegistry(registry.New())}, opts...)...)
	for _, fn := range []any{NewWidget, NewWidgetNamed, NewWidgetFrom} {
		if err := env.RegisterConstructor(fn); err != nil {
			t.Fatal(err)
		}
	}
	if err := env.RegisterFunc(Widget{}, "Describe", Describe); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterFunc(Widget{}, "Describe", DescribeAny); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterFunc(Widget{}, "Sum", Sum); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterFunc(Widget{}, "Typed", Typed); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterFunc(Widget{}, "Int", Int); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterVar(Widget{}, "WidgetCount", &WidgetCount); err != nil {
		t.Fatal(err)
	}
	if err := env.RegisterInterface((*Counter)(nil)); err != nil {
		t.Fatal(err)
	}
	env.Annotate(Widget{}, "entity")
	env.Annotate(registry.Member{Owner: widgetType, Name: "NewWidgetNamed.arg0"}, "not-empty")
	return env
}

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

func TestConstructorSelection(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	tests := []struct {
		name string
		args []any
		want int
	}{
		{name: "no args", args: nil, want: 1},
		{name: "string value", args: []any{""}, want: 2},
		{name: "string type", args: []any{reflect.TypeFor[string]()}, want: 2},
		{name: "any type", args: []any{ureflect.Root}, want: 1},
		{name: "nil value", args: []any{nil}, want: 1},
		{name: "two args", args: []any{"a", "b"}, want: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := count(class.ConstructorsFor(test.args...)); got != test.want {
				t.Fatalf("expected %d constructors, got %d", test.want, got)
			}
		})
	}
	if count(class.Constructors()) != 3 {
		t.Fatal("expected 3 constructors")
	}
	for m := range class.Constructors() {
		if m.Modifiers().IsSynthetic() {
			t.Fatalf("%s must not be synthetic", m)
		}
	}
}

func TestStaticOverloads(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	if got := count(class.MethodsNamedFor("Describe", "")); got != 2 {
		t.Fatalf("expected 2 methods, got %d", got)
	}
	if got := count(class.MethodsNamedFor("Describe", reflect.TypeFor[string]())); got != 2 {
		t.Fatalf("expected 2 methods, got %d", got)
	}
	if got := count(class.MethodsNamedFor("Describe", reflect.TypeFor[any]())); got != 1 {
		t.Fatalf("expected 1 method, got %d", got)
	}
	m, ok := class.MethodNamedFor("Describe", 42)
	if !ok {
		t.Fatal("failed to find Describe(any)")
	}
	if !m.IsStatic() {
		t.Fatal("Describe must be static")
	}
	v, err := m.Invoke(42)
	if err != nil {
		t.Fatal(err)
	}
	if v != "any:42" {
		t.Fatalf("unexpected result %v", v)
	}
}

func TestCreate(t *testing.T) {
	env := newEnv(t)
	class := env.ReflectType(widgetType)
	v, err := class.Create("gopher")
	if err != nil {
		t.Fatal(err)
	}
	if w := v.(*Widget); w.Name != "gopher" {
		t.Fatalf("unexpected name %q", w.Name)
	}
	if _, err := class.Create(1, 2); !errors.Is(err, unreflect.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	ctor, ok := class.ConstructorFor(reflect.TypeFor[any]())
	if !ok {
		t.Fatal("failed to find constructor")
	}
	_, err = ctor.Invoke(nil)
	if !errors.Is(err, unreflect.ErrInvocation) || !errors.Is(err, errNoSource) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}

	compiled, err := class.Unreflect()
	if err != nil {
		t.Fatal(err)
	}
	v, err = compiled.Create()
	if err != nil {
		t.Fatal(err)
	}
	if w := v.(*Widget); w.Name != "widget" {
		t.Fatalf("unexpected name %q", w.Name)
	}
}

func TestImplicitConstructor(t *testing.T) {
	class := unreflect.ReflectOf[point]()
	ctor, ok := class.ConstructorAt(0)
	if !ok {
		t.Fatal("expected an implicit constructor")
	}
	if ctor.Name() != "new" || !ctor.Modifiers().IsSynthetic() {
		t.Fatalf("unexpected constructor %s", ctor)
	}
	for _, c := range []unreflect.Class{class, must(class.Unreflect())} {
		v, err := c.Create()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(&point{}, v); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func TestFieldRoundTrip(t *testing.T) {
	env := newEnv(t)
	w := NewWidget()
	class, err := env.Reflect(w)
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := class.Unreflect()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []unreflect.Class{class, compiled} {
		f, ok := c.Field("Count")
		if !ok {
			t.Fatal("failed to find Count")
		}
		if f.IsCompiled() != c.IsCompiled() {
			t.Fatal("fields must follow the tier of their class")
		}
		if err := f.Set(1337); err != nil {
			t.Fatal(err)
		}
		v, err := f.Get()
		if err != nil {
			t.Fatal(err)
		}
		if v != 1337 || w.Count != 1337 {
			t.Fatalf("unexpected value %v", v)
		}
		w.Count = 0

		label, ok := c.Field("label")
		if !ok {
			t.Fatal("failed to find label")
		}
		if !label.Modifiers().IsPrivate() {
			t.Fatal("label must be private")
		}
		if err := label.Set("secret"); err != nil {
			t.Fatal(err)
		}
		if w.label != "secret" {
			t.Fatalf("unexpected label %q", w.label)
		}
	}
}

func TestFieldErrors(t *testing.T) {
	env := newEnv(t)
	for _, compile := range []bool{false, true} {
		class := env.ReflectType(widgetType)
		if compile {
			class = must(class.Unreflect())
		}
		name, _ := class.Field("Name")
		if err := name.Bind(Widget{}).Set("x"); !errors.Is(err, unreflect.ErrAccess) {
			t.Fatalf("expected access error, got %v", err)
		}
		if err := name.Bind(&Widget{}).Set(1); !errors.Is(err, unreflect.ErrTypeMismatch) {
			t.Fatalf("expected type mismatch, got %v", err)
		}
		if _, err := name.Get(); !errors.Is(err, unreflect.ErrTypeMismatch) {
			t.Fatalf("expected type mismatch, got %v", err)
		}
		v, err := name.Bind(Widget{Name: "copy"}).Get()
		if err != nil {
			t.Fatal(err)
		}
		if v != "copy" {
			t.Fatalf("unexpected value %v", v)
		}
		count, _ := class.Field("Count")
		n := 5
		w := &Widget{}
		if err := count.Bind(w).Set(&n); err != nil {
			t.Fatal(err)
		}
		if w.Count != 5 {
			t.Fatalf("pointer must be unwrapped, got %d", w.Count)
		}
	}
}

func TestStaticField(t *testing.T) {
	env := newEnv(t)
	f, err := env.ReflectVar(&WidgetCount)
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsStatic() || f.Name() != "WidgetCount" || f.DeclaringType().Reflect() != widgetType {
		t.Fatalf("unexpected field %s", f)
	}
	compiled, err := f.Unreflect()
	if err != nil {
		t.Fatal(err)
	}
	if err := compiled.Set(8); err != nil {
		t.Fatal(err)
	}
	if v, _ := f.Get(); v != 8 {
		t.Fatalf("unexpected value %v", v)
	}
	WidgetCount = 7
}

func TestFieldMetadata(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	name, ok := class.Field("Name")
	if !ok {
		t.Fatal("failed to find Name")
	}
	if v, _ := name.Tag("db"); v != "widget_name" {
		t.Fatalf("unexpected tag %q", v)
	}
	want := []any{
		unreflect.Tag{Key: "json", Value: "name"},
		unreflect.Tag{Key: "db", Value: "widget_name"},
	}
	if diff := cmp.Diff(want, name.Annotations()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if tag, ok := unreflect.AnnotationOf[unreflect.Tag](name); !ok || tag.Value != "name" {
		t.Fatalf("unexpected annotation %v", tag)
	}
	base, _ := class.Field("Base")
	if !base.Modifiers().IsEmbedded() {
		t.Fatal("Base must be embedded")
	}
	tags, _ := class.Field("Tags")
	if got := tags.Type().GenericType(0).Reflect(); got != reflect.TypeFor[string]() {
		t.Fatalf("unexpected key type %v", got)
	}
	grid, _ := class.Field("Grid")
	if got := grid.Type().ComponentType().ComponentType().Reflect(); got != reflect.TypeFor[bool]() {
		t.Fatalf("unexpected component type %v", got)
	}
	count, _ := class.Field("Count")
	if count.DeclaringType().Reflect() != reflect.TypeOf(Base{}) {
		t.Fatalf("unexpected declaring type %s", count.DeclaringType())
	}
	if got := count.String(); got != "int unreflect_test.Base.Count" {
		t.Fatalf("unexpected string %q", got)
	}
	if s, ok := unreflect.AnnotationOf[string](class); !ok || s != "entity" {
		t.Fatalf("unexpected class annotation %v", s)
	}
	if got := class.String(); got != "type github.com/goccy/unreflect_test.Widget" {
		t.Fatalf("unexpected string %q", got)
	}
	sf, _ := widgetType.FieldByName("Name")
	f, err := newEnv(t).ReflectField(widgetType, sf)
	if err != nil {
		t.Fatal(err)
	}
	if f.Name() != "Name" || f.Source().Tag != sf.Tag {
		t.Fatalf("unexpected field %s", f)
	}
}

func TestFieldEnumeration(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	var names []string
	for f := range class.Fields() {
		names = append(names, f.Name())
	}
	want := []string{"Base", "Name", "Tags", "Grid", "Owner", "Any", "WidgetCount", "Count", "label"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	f, ok := class.FieldAt(7)
	if !ok || f.Name() != "Count" {
		t.Fatal("expected Count at 7")
	}
	if _, ok := class.FieldAt(len(want)); ok {
		t.Fatal("expected no field past the end")
	}
}

func TestMethodInvoke(t *testing.T) {
	env := newEnv(t)
	w := &Widget{}
	class := env.ReflectType(widgetType).Bind(w)
	compiled, err := class.Unreflect()
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []unreflect.Class{class, compiled} {
		inc, ok := c.MethodNamedFor("Increase", 0)
		if !ok {
			t.Fatal("failed to find Increase")
		}
		if !inc.Modifiers().IsPointerReceiver() {
			t.Fatal("Increase has a pointer receiver")
		}
		if v, err := inc.Invoke(1); err != nil || v != 1 {
			t.Fatalf("unexpected result %v %v", v, err)
		}
		if v, err := inc.Invoke(2); err != nil || v != 3 {
			t.Fatalf("unexpected result %v %v", v, err)
		}
		pair, _ := c.Method("Pair")
		if diff := cmp.Diff([]any{3, ""}, must(pair.Invoke())); diff != "" {
			t.Fatalf("(-want +got):\n%s", diff)
		}
		reset, _ := c.Method("Reset")
		if v, err := reset.Invoke(); err != nil || v != nil {
			t.Fatalf("unexpected result %v %v", v, err)
		}
		if w.Count != 0 {
			t.Fatal("Reset was not called")
		}
		rename, _ := c.Method("Rename")
		if v, err := rename.Invoke("next"); err != nil || v != "" || w.Name != "next" {
			t.Fatalf("unexpected result %v %v", v, err)
		}
		w.Name = ""
		fail, _ := c.Method("Fail")
		if _, err := fail.Invoke(); !errors.Is(err, unreflect.ErrInvocation) || !errors.Is(err, errFailed) {
			t.Fatalf("expected wrapped failure, got %v", err)
		}
		boom, _ := c.Method("Panic")
		if _, err := boom.Invoke(); !errors.Is(err, unreflect.ErrInvocation) {
			t.Fatalf("expected invocation error, got %v", err)
		}
		sum, _ := c.Method("Sum")
		if v, err := sum.Invoke([]int{1, 2, 3}); err != nil || v != 6 {
			t.Fatalf("unexpected result %v %v", v, err)
		}
	}
}

func TestArgumentCountFirst(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	inc, _ := class.Method("Increase")
	compiled := must(inc.Unreflect())
	for _, m := range []unreflect.Method{inc.Bind("not a widget"), compiled.Bind("not a widget")} {
		if _, err := m.Invoke("x", "y"); !errors.Is(err, unreflect.ErrArgumentCount) {
			t.Fatalf("expected argument count error, got %v", err)
		}
		if _, err := m.Invoke(1); !errors.Is(err, unreflect.ErrTypeMismatch) {
			t.Fatalf("expected type mismatch, got %v", err)
		}
		if _, err := m.Bind(nil).Invoke(1); !errors.Is(err, unreflect.ErrTypeMismatch) {
			t.Fatalf("expected type mismatch, got %v", err)
		}
	}
}

func TestTierEquivalence(t *testing.T) {
	env := newEnv(t)
	w := &Widget{
		Base:  Base{Count: 2, label: "l"},
		Name:  "n",
		Tags:  map[string]int{"a": 1},
		Grid:  [][]bool{{true}},
		Owner: &Base{Count: 9},
		Any:   1.5,
	}
	class := env.ReflectType(widgetType).Bind(w)
	compiled := must(class.Unreflect())
	var reflected, unreflected []any
	for f := range class.Fields() {
		reflected = append(reflected, must(f.Get()))
	}
	for f := range compiled.Fields() {
		if !f.IsCompiled() {
			t.Fatalf("%s is not compiled", f)
		}
		unreflected = append(unreflected, must(f.Get()))
	}
	if diff := cmp.Diff(reflected, unreflected, cmp.AllowUnexported(Base{})); diff != "" {
		t.Fatalf("(-reflect +unreflect):\n%s", diff)
	}
	if compiled.Reflect().IsCompiled() {
		t.Fatal("Reflect must return the reflective tier")
	}
}

func TestParameters(t *testing.T) {
	env := newEnv(t)
	ctor, err := env.ReflectConstructor(NewWidgetNamed)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := ctor.Parameter(0)
	if !ok {
		t.Fatal("missing parameter")
	}
	if p.Name() != "arg0" || p.Type().Reflect() != reflect.TypeFor[string]() {
		t.Fatalf("unexpected parameter %s", p)
	}
	owner, ok := p.Constructor()
	if !ok || owner.Name() != "NewWidgetNamed" {
		t.Fatal("parameter must refer to NewWidgetNamed")
	}
	if _, ok := p.Method(); ok {
		t.Fatal("parameter of a constructor has no method")
	}
	if diff := cmp.Diff([]any{"not-empty"}, p.Annotations()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	p, err = env.ReflectParameter(Sum, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Modifiers().IsVariadic() || p.Type().Reflect() != reflect.TypeFor[[]int]() {
		t.Fatalf("unexpected parameter %s", p)
	}
	m, ok := p.Method()
	if !ok || m.DeclaringType().Reflect() != widgetType {
		t.Fatal("parameter of Sum must belong to a static method of Widget")
	}
	if _, err := env.ReflectParameter(Sum, 1); !errors.Is(err, unreflect.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestSuperclass(t *testing.T) {
	env := newEnv(t)
	w := &Widget{Base: Base{Count: 4}}
	class, err := env.Reflect(w)
	if err != nil {
		t.Fatal(err)
	}
	super, ok := class.Superclass()
	if !ok || super.Type().Reflect() != reflect.TypeOf(Base{}) {
		t.Fatalf("unexpected superclass %v", super.Type())
	}
	if super.Instance() != &w.Base {
		t.Fatal("superclass must be bound to the embedded value")
	}
	count, _ := super.Field("Count")
	if v, _ := count.Get(); v != 4 {
		t.Fatalf("unexpected value %v", v)
	}
	root, ok := super.Superclass()
	if !ok || !root.Type().IsRoot() {
		t.Fatalf("unexpected root %v", root.Type())
	}
	if _, ok := root.Superclass(); ok {
		t.Fatal("root has no superclass")
	}

	compiled := must(class.Unreflect())
	super, _ = compiled.Superclass()
	if !super.IsCompiled() {
		t.Fatal("superclass of a compiled class must be compiled")
	}
	inc, _ := super.Method("Increase")
	if v, err := inc.Invoke(1); err != nil || v != 5 {
		t.Fatalf("unexpected result %v %v", v, err)
	}
}

func TestInterfaceClass(t *testing.T) {
	env := newEnv(t)
	class := env.ReflectType(reflect.TypeFor[Counter]())
	if !class.Modifiers().IsInterface() {
		t.Fatal("Counter is an interface")
	}
	if count(class.Constructors()) != 0 {
		t.Fatal("interfaces have no constructors")
	}
	for _, c := range []unreflect.Class{class, must(class.Unreflect())} {
		inc, ok := c.Method("Increase")
		if !ok || !inc.Modifiers().IsAbstract() {
			t.Fatal("expected abstract Increase")
		}
		if v, err := inc.Bind(&Base{Count: 1}).Invoke(2); err != nil || v != 3 {
			t.Fatalf("unexpected result %v %v", v, err)
		}
		if _, err := inc.Bind(point{}).Invoke(2); !errors.Is(err, unreflect.ErrTypeMismatch) {
			t.Fatalf("expected type mismatch, got %v", err)
		}
	}
}

func TestLookup(t *testing.T) {
	env := newEnv(t)
	class, err := env.ReflectName(registry.Name(widgetType))
	if err != nil {
		t.Fatal(err)
	}
	if class.Type().Reflect() != widgetType {
		t.Fatalf("unexpected class %s", class)
	}
	if _, err := env.ReflectName("example.com/missing.Type"); !errors.Is(err, unreflect.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if _, err := env.Reflect(nil); !errors.Is(err, unreflect.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	m, err := env.ReflectFunc(Describe)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "Describe" || m.DeclaringType().Reflect() != widgetType {
		t.Fatalf("unexpected method %s", m)
	}
	increase, _ := reflect.TypeOf(&Base{}).MethodByName("Increase")
	inc, err := env.ReflectMethod(widgetType, increase)
	if err != nil {
		t.Fatal(err)
	}
	if got := inc.String(); !strings.HasSuffix(got, "Increase(int) int") {
		t.Fatalf("unexpected string %q", got)
	}
	if _, err := env.ReflectConstructor(func() {}); !errors.Is(err, unreflect.ErrLookup) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestUnits(t *testing.T) {
	env := newEnv(t)
	a := must(env.UnreflectType(widgetType))
	b := must(env.UnreflectType(widgetType))
	fa, _ := a.Field("Name")
	fb, _ := b.Field("Name")
	if fa.Unit() == "" || fa.Unit() == fb.Unit() {
		t.Fatalf("expected distinct units, got %q %q", fa.Unit(), fb.Unit())
	}
	if r, _ := env.ReflectType(widgetType).Field("Name"); r.Unit() != "" {
		t.Fatal("reflective fields have no unit")
	}

	cached := newEnv(t, unreflect.WithCompiler(accessor.NewCompiler(accessor.WithCache(true))))
	a = must(cached.UnreflectType(widgetType))
	b = must(cached.UnreflectType(widgetType))
	fa, _ = a.Field("Name")
	fb, _ = b.Field("Name")
	if fa.Unit() != fb.Unit() {
		t.Fatalf("cached compiler must reuse units, got %q %q", fa.Unit(), fb.Unit())
	}
}

func TestTypeTokensAsValues(t *testing.T) {
	class := newEnv(t).ReflectType(widgetType)
	var values []string
	for m := range class.MethodsFor("x", reflect.TypeFor[int]()) {
		values = append(values, m.Name())
	}
	if diff := cmp.Diff([]string{"Typed"}, values); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	m, _ := class.MethodFor("x", reflect.TypeFor[int]())
	if v, err := m.Invoke("x", reflect.TypeFor[int]()); err != nil || v != "x:int" {
		t.Fatalf("unexpected result %v %v", v, err)
	}
	var types []string
	for m := range class.MethodsFor(reflect.TypeFor[string](), reflect.TypeFor[int]()) {
		types = append(types, m.Name())
	}
	if diff := cmp.Diff([]string{"Int"}, types); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !unreflect.Matches(m, "y", reflect.TypeFor[bool]()) {
		t.Fatal("a reflect.Type value must match a reflect.Type parameter")
	}
	if unreflect.MatchParameters(m.ParameterTypes(), reflect.TypeFor[string](), reflect.TypeFor[bool]()) {
		t.Fatal("a list of type tokens is compared as types")
	}
}

type Labeler interface {
	Label() string
}

type tagged struct{}

func (tagged) Label() string { return "tagged" }

type secret struct{}

type holder[T any] struct{}

func TestIsolatedRegistry(t *testing.T) {
	env := unreflect.New(unreflect.WithRegistry(registry.New()))
	if err := env.RegisterInterface((*Labeler)(nil)); err != nil {
		t.Fatal(err)
	}
	env.RegisterType(secret{})
	labeler := ureflect.TypeOf[Labeler]()

	contains := func(c unreflect.Class) bool {
		for s := range c.SubTypes() {
			if s == labeler {
				return true
			}
		}
		return false
	}
	if !contains(env.ReflectType(reflect.TypeOf(tagged{}))) {
		t.Fatal("Labeler is registered in the env")
	}
	if contains(unreflect.ReflectType(reflect.TypeOf(tagged{}))) {
		t.Fatal("Labeler must not leak into the default env")
	}

	h := reflect.TypeOf(holder[secret]{})
	var args []ureflect.Type
	for a := range env.ReflectType(h).GenericTypes() {
		args = append(args, a)
	}
	if len(args) != 1 || args[0] != ureflect.TypeOf[secret]() {
		t.Fatalf("unexpected type arguments %v", args)
	}
	if count(unreflect.ReflectType(h).GenericTypes()) != 0 {
		t.Fatal("secret is not registered in the default env")
	}
}

func TestConcurrentUnreflect(t *testing.T) {
	const workers = 16
	env := newEnv(t)
	class := env.ReflectType(widgetType)
	fields := count(class.Fields())

	var (
		mu    sync.Mutex
		units = map[string]struct{}{}
		wg    sync.WaitGroup
	)
	widgets := make([]*Widget, workers)
	for i := range widgets {
		widgets[i] = &Widget{}
	}
	for i, w := range widgets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := class.Bind(w).Unreflect()
			if err != nil {
				t.Error(err)
				return
			}
			for f := range c.Fields() {
				if !f.IsStatic() {
					switch f.Name() {
					case "Count":
						if err := f.Set(i); err != nil {
							t.Error(err)
						}
					case "Name":
						if err := f.Set(fmt.Sprint(i)); err != nil {
							t.Error(err)
						}
					}
				}
				if _, err := f.Get(); err != nil {
					t.Error(err)
				}
				mu.Lock()
				units[f.Unit()] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(units) != workers*fields {
		t.Fatalf("expected %d unique units, got %d", workers*fields, len(units))
	}
	for i, w := range widgets {
		if w.Count != i || w.Name != fmt.Sprint(i) {
			t.Fatalf("widget %d was written by another binding: %+v", i, w)
		}
	}
	if class.Instance() != nil {
		t.Fatal("binding must not modify the shared class")
	}
}
