package declare

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/vitrine/internal/logging"
	"github.com/aretw0/vitrine/pkg/entity"
	"github.com/aretw0/vitrine/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions LoadDir picks up.
var Extensions = []string{".yaml", ".yml", ".json", ".jsonc"}

// Loader reads declaration documents into a registry.
type Loader struct {
	registry *registry.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	decls map[string]EntityDecl
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger handed to loaded entities.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader registering into reg.
func NewLoader(reg *registry.Registry, opts ...Option) *Loader {
	l := &Loader{
		registry: reg,
		logger:   logging.NewNop(),
		decls:    make(map[string]EntityDecl),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FormatOf maps a file path to "yaml" or "json" by extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	case ".json", ".jsonc":
		return "json", nil
	}
	return "", fmt.Errorf("unsupported declaration file %q", path)
}

// LoadFile reads one declaration file. It returns the declared entity names.
func (l *Loader) LoadFile(path string) ([]string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open declarations: %w", err)
	}
	defer f.Close()

	names, err := l.Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

// LoadDir reads every declaration file directly under dir, in name order.
func (l *Loader) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read declarations dir: %w", err)
	}
	var all []string
	for _, e := range entries {
		if e.IsDir() || !hasExtension(e.Name()) {
			continue
		}
		names, err := l.LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return all, err
		}
		all = append(all, names...)
	}
	return all, nil
}

// LoadPath reads a file or a directory.
func (l *Loader) LoadPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat declarations: %w", err)
	}
	if info.IsDir() {
		return l.LoadDir(path)
	}
	return l.LoadFile(path)
}

// Load decodes one document in format ("yaml" or "json", comments and
// trailing commas allowed in JSON), registers its entities and checks that
// every extends and using reference names a known entity.
func (l *Loader) Load(r io.Reader, format string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read declarations: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc.Entities))
	for name := range doc.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := l.checkRefs(name, doc); err != nil {
			return nil, err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range names {
		l.decls[name] = doc.Entities[name]
		l.registry.Register(l.Build(name, doc.Entities[name]))
		l.logger.Debug("entity declared", "entity", name)
	}
	return names, nil
}

// Declarations returns a copy of every declaration loaded so far, by name.
func (l *Loader) Declarations() map[string]EntityDecl {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]EntityDecl, len(l.decls))
	for k, v := range l.decls {
		out[k] = v
	}
	return out
}

// References lists the entities one declaration depends on: its parents,
// then every using target in declaration order.
func (d EntityDecl) References() (extends []string, using []Reference) {
	var walk func(xs []ExposureDecl)
	walk = func(xs []ExposureDecl) {
		for _, x := range xs {
			if ref := x.using(); ref != "" {
				using = append(using, Reference{Field: strings.Join(x.names(), ","), Entity: ref})
			}
			walk(x.Expose)
		}
	}
	walk(d.Expose)
	return append([]string(nil), d.Extends...), using
}

// Parse decodes a document without registering anything. Unknown keys are
// reported as entity.ErrInvalidOption.
func Parse(data []byte, format string) (*Document, error) {
	var raw map[string]any
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml declarations: %w", err)
		}
	case "json", "jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json declarations: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported declaration format %q", format)
	}

	var doc Document
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &entity.ConfigError{
			Kind:    entity.ErrInvalidOption,
			Message: fmt.Sprintf("failed to decode declarations: %v", err),
		}
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		return nil, unrecognized(md.Unused[0])
	}
	return &doc, nil
}

// unrecognized turns a mapstructure key path such as
// "entities[user].expose[0].colour" into a ConfigError.
func unrecognized(path string) *entity.ConfigError {
	ce := &entity.ConfigError{Kind: entity.ErrInvalidOption, Field: path}
	key := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		key = path[i+1:]
	}
	if rest, ok := strings.CutPrefix(path, "entities["); ok {
		if i := strings.Index(rest, "]"); i >= 0 {
			ce.Entity = rest[:i]
		}
	}
	ce.Message = fmt.Sprintf("Unrecognized `%s` option", key)
	return ce
}

func (l *Loader) checkRefs(name string, doc *Document) error {
	known := func(ref string) bool {
		if _, ok := doc.Entities[ref]; ok {
			return true
		}
		_, err := l.registry.Lookup(ref)
		return err == nil
	}
	extends, using := doc.Entities[name].References()
	for _, parent := range extends {
		if !known(parent) {
			return unknownEntity(name, "extends", parent)
		}
		if parent == name {
			return &entity.ConfigError{
				Kind:    entity.ErrInvalidOption,
				Entity:  name,
				Field:   "extends",
				Message: "An entity cannot extend itself",
			}
		}
	}
	for _, ref := range using {
		if !known(ref.Entity) {
			return unknownEntity(name, ref.Field, ref.Entity)
		}
	}
	return nil
}

func unknownEntity(name, field, ref string) *entity.ConfigError {
	return &entity.ConfigError{
		Kind:    entity.ErrInvalidOption,
		Entity:  name,
		Field:   field,
		Message: fmt.Sprintf("Unknown entity `%s`", ref),
	}
}

// Build turns one declaration into an entity. Parents and presenters are
// looked up in the loader's registry when the entity is first used.
func (l *Loader) Build(name string, decl EntityDecl) *entity.Entity {
	return entity.New(name, func(b *entity.Builder) {
		for _, parent := range decl.Extends {
			p, err := l.registry.Lookup(parent)
			if err != nil {
				b.Fail(unknownEntity(name, "extends", parent))
				return
			}
			b.Extends(p)
		}
		if len(decl.Root) > 0 {
			singular := ""
			if len(decl.Root) > 1 {
				singular = decl.Root[1]
			}
			b.Root(decl.Root[0], singular)
		}
		if pc := decl.PresentCollection; pc != nil {
			b.PresentCollection(pc.Enabled, pc.Name)
		}
		l.exposeAll(b, decl.Expose)
	}, entity.WithLogger(l.logger))
}

func (l *Loader) exposeAll(b *entity.Builder, xs []ExposureDecl) {
	for _, x := range xs {
		names := x.names()
		if len(names) == 0 {
			b.Fail(&entity.ConfigError{
				Kind:    entity.ErrInvalidOption,
				Message: "Exposures need a `name` or `names`",
			})
			return
		}
		opts := l.options(x)
		if len(x.Expose) > 0 {
			children := x.Expose
			opts = append(opts, entity.Nest(func(b *entity.Builder) {
				l.exposeAll(b, children)
			}))
		}
		if len(names) == 1 {
			b.Expose(names[0], opts...)
		} else {
			b.ExposeEach(names, opts...)
		}
	}
}

func (l *Loader) options(x ExposureDecl) []entity.Option {
	var opts []entity.Option
	if x.As != "" {
		opts = append(opts, entity.As(x.As))
	}
	if x.Default != nil {
		opts = append(opts, entity.Default(x.Default))
	}
	if x.If != nil {
		opts = append(opts, entity.If(x.If))
	}
	if ref := x.using(); ref != "" {
		opts = append(opts, entity.Using(registry.Ref{Registry: l.registry, Name: ref}))
	}
	if x.Safe {
		opts = append(opts, entity.Safe())
	}
	if x.Merge {
		opts = append(opts, entity.Merge())
	}
	if x.FormatWith != "" {
		opts = append(opts, entity.FormatWith(x.FormatWith))
	}
	if x.ExposeNull != nil {
		opts = append(opts, entity.ExposeNull(*x.ExposeNull))
	}
	if x.Override {
		opts = append(opts, entity.Override())
	}
	if x.AttrPath != nil {
		opts = append(opts, entity.AttrPath(attrPath(x.AttrPath)))
	}
	if x.Documentation != nil {
		opts = append(opts, entity.Documentation(x.Documentation))
	}
	if x.Value != nil {
		v := x.Value
		opts = append(opts, entity.Value(func(any, entity.Options) (any, error) {
			return v, nil
		}))
	}
	return opts
}

// attrPath converts decoded lists into []string so AttrPath accepts them.
func attrPath(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, len(list))
	for i, el := range list {
		out[i] = fmt.Sprint(el)
	}
	return out
}

func hasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
