package unreflect

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/goccy/unreflect/accessor"
	"github.com/goccy/unreflect/registry"
)

// Env holds the registry, the accessor compiler and the logger descriptors
// are derived with. The package-level functions use Default.
type Env struct {
	registry *registry.Registry
	compiler *accessor.Compiler
	logger   *slog.Logger
	infos    sync.Map
}

type Option func(*Env)

func WithRegistry(r *registry.Registry) Option {
	return func(e *Env) {
		e.registry = r
	}
}

func WithCompiler(c *accessor.Compiler) Option {
	return func(e *Env) {
		e.compiler = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Env) {
		e.logger = logger
	}
}

func New(opts ...Option) *Env {
	e := &Env{}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.Default
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.compiler == nil {
		e.compiler = accessor.NewCompiler(accessor.WithLogger(e.logger))
	}
	return e
}

var defaultEnv = sync.OnceValue(func() *Env {
	return New(WithCompiler(accessor.Default()))
})

func Default() *Env {
	return defaultEnv()
}

func (e *Env) Registry() *registry.Registry {
	return e.registry
}

func (e *Env) Compiler() *accessor.Compiler {
	return e.compiler
}

// info returns the member declarations of t, rebuilt whenever the registry changed.
func (e *Env) info(t reflect.Type) *classInfo {
	version := e.registry.Version()
	if cached, ok := e.infos.Load(t); ok {
		if info := cached.(*classInfo); info.version == version {
			return info
		}
	}
	info := e.buildInfo(t)
	info.version = version
	e.infos.Store(t, info)
	return info
}

func (e *Env) RegisterType(values ...any) {
	e.registry.RegisterType(values...)
}

func (e *Env) RegisterInterface(ptr any) error {
	return e.registry.RegisterInterface(ptr)
}

func (e *Env) RegisterConstructor(fn any, annotations ...any) error {
	_, err := e.registry.RegisterConstructor(fn, annotations...)
	return err
}

func (e *Env) RegisterFunc(owner any, name string, fn any, annotations ...any) error {
	return e.registry.RegisterFunc(owner, name, fn, annotations...)
}

func (e *Env) RegisterVar(owner any, name string, ptr any, annotations ...any) error {
	return e.registry.RegisterVar(owner, name, ptr, annotations...)
}

func (e *Env) Annotate(target any, annotations ...any) {
	e.registry.Annotate(target, annotations...)
}

func RegisterType(values ...any) { Default().RegisterType(values...) }

func RegisterInterface(ptr any) error { return Default().RegisterInterface(ptr) }

func RegisterConstructor(fn any, annotations ...any) error {
	return Default().RegisterConstructor(fn, annotations...)
}

func RegisterFunc(owner any, name string, fn any, annotations ...any) error {
	return Default().RegisterFunc(owner, name, fn, annotations...)
}

func RegisterVar(owner any, name string, ptr any, annotations ...any) error {
	return Default().RegisterVar(owner, name, ptr, annotations...)
}

func Annotate(target any, annotations ...any) { Default().Annotate(target, annotations...) }
