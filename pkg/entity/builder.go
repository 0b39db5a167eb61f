package entity

// Exposure is one declared field. A nested exposure has children and no
// attribute of its own.
type Exposure struct {
	name     string
	opts     exposureOptions
	children []*Exposure
}

// Name returns the source field name.
func (x *Exposure) Name() string { return x.name }

// Nested reports whether the exposure is a nested scope.
func (x *Exposure) Nested() bool { return x.children != nil }

// Children returns the child exposures of a nested scope.
func (x *Exposure) Children() []*Exposure { return x.children }

// Documentation returns the attached documentation blob.
func (x *Exposure) Documentation() any { return x.opts.documentation }

// tree is one immutable snapshot of an entity declaration.
type tree struct {
	exposures         []*Exposure
	formatters        map[string]Formatter
	presentCollection bool
	collectionName    string
	pluralRoot        string
	singularRoot      string
}

func newTree() *tree {
	return &tree{
		formatters:     make(map[string]Formatter),
		collectionName: "items",
	}
}

func (t *tree) clone() *tree {
	cp := *t
	cp.exposures = append([]*Exposure(nil), t.exposures...)
	cp.formatters = make(map[string]Formatter, len(t.formatters))
	for k, v := range t.formatters {
		cp.formatters[k] = v
	}
	return &cp
}

// Builder declares the exposures of one entity. It is handed to declaration
// callbacks and to nested scopes; the first configuration error sticks and
// turns the remaining calls into no-ops.
type Builder struct {
	entity   string
	tree     *tree
	target   *[]*Exposure
	defaults [][]Option
	depth    int
	err      error
}

func newBuilder(entity string, t *tree) *Builder {
	return &Builder{entity: entity, tree: t, target: &t.exposures}
}

// Err returns the first configuration error.
func (b *Builder) Err() error {
	return b.err
}

// Fail records a configuration error. The remaining calls become no-ops.
func (b *Builder) Fail(err error) *Builder {
	b.fail(err, "")
	return b
}

func (b *Builder) fail(err error, field string) {
	if b.err != nil {
		return
	}
	if ce, ok := err.(*ConfigError); ok {
		if ce.Entity == "" {
			ce.Entity = b.entity
		}
		if ce.Field == "" {
			ce.Field = field
		}
	}
	b.err = err
}

func (b *Builder) options(opts []Option) exposureOptions {
	layers := make([][]Option, 0, len(b.defaults)+1)
	layers = append(layers, b.defaults...)
	layers = append(layers, opts)
	return buildOptions(layers...)
}

// Expose declares one field.
func (b *Builder) Expose(name string, opts ...Option) *Builder {
	if b.err != nil {
		return b
	}
	o := b.options(opts)
	if o.err != nil {
		b.fail(o.err, name)
		return b
	}
	b.expose(name, o)
	return b
}

// ExposeEach declares several fields with the same options. As, ExposeNull,
// Value and Nest are rejected when more than one name is given.
func (b *Builder) ExposeEach(names []string, opts ...Option) *Builder {
	if b.err != nil {
		return b
	}
	o := b.options(opts)
	if o.err != nil {
		b.fail(o.err, "")
		return b
	}
	if len(names) > 1 {
		switch {
		case o.value != nil || o.nest != nil:
			b.fail(invalidOption("You may not use a `function` on multi-attribute exposures"), "")
		case o.exposeNull != nil:
			b.fail(invalidOption("You may not use `expose_null` on multi-attribute exposures"), "")
		case o.as != nil:
			b.fail(invalidOption("You may not use the `as` option on multi-attribute exposures"), "")
		}
		if b.err != nil {
			return b
		}
	}
	for _, name := range names {
		b.expose(name, o)
	}
	return b
}

func (b *Builder) expose(name string, o exposureOptions) {
	if o.override {
		kept := (*b.target)[:0:0]
		for _, x := range *b.target {
			if x.name != name {
				kept = append(kept, x)
			}
		}
		*b.target = kept
	}

	x := &Exposure{name: name, opts: o}
	if o.nest != nil {
		if o.formatWith != nil {
			b.fail(invalidOption("You may not use the `format_with` option on nested exposure"), name)
			return
		}
		nest := o.nest
		x.opts.nest = nil
		children := []*Exposure{}
		parent := b.target
		b.target = &children
		b.depth++
		nest(b)
		b.depth--
		b.target = parent
		x.children = children
	}
	*b.target = append(*b.target, x)
}

// WithOptions applies opts as defaults to every exposure declared inside fn.
// Inner defaults and explicit options win over outer ones.
func (b *Builder) WithOptions(opts []Option, fn func(b *Builder)) *Builder {
	if b.err != nil {
		return b
	}
	b.defaults = append(b.defaults, opts)
	fn(b)
	b.defaults = b.defaults[:len(b.defaults)-1]
	return b
}

// Extends copies the exposures and formatters of others, building them first
// when needed. Later local declarations still shadow copied ones.
func (b *Builder) Extends(others ...*Entity) *Builder {
	if b.err != nil {
		return b
	}
	for _, other := range others {
		t, err := other.load()
		if err != nil {
			b.fail(err, "")
			return b
		}
		*b.target = append(*b.target, t.exposures...)
		for name, fn := range t.formatters {
			b.tree.formatters[name] = fn
		}
	}
	return b
}

// Unexpose removes root exposures by name.
func (b *Builder) Unexpose(names ...string) *Builder {
	if b.err != nil {
		return b
	}
	if b.depth != 0 {
		b.fail(nestedExposure(), "")
		return b
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := b.tree.exposures[:0:0]
	for _, x := range b.tree.exposures {
		if _, ok := drop[x.name]; !ok {
			kept = append(kept, x)
		}
	}
	b.tree.exposures = kept
	return b
}

// UnexposeAll removes every root exposure.
func (b *Builder) UnexposeAll() *Builder {
	if b.err != nil {
		return b
	}
	if b.depth != 0 {
		b.fail(nestedExposure(), "")
		return b
	}
	b.tree.exposures = nil
	return b
}

// Root sets the root keys used for collections (plural) and single items.
// An empty name disables wrapping.
func (b *Builder) Root(plural, singular string) *Builder {
	b.tree.pluralRoot = plural
	b.tree.singularRoot = singular
	return b
}

// PresentCollection makes Represent wrap its whole input under name
// (default "items") and render it as one item.
func (b *Builder) PresentCollection(enabled bool, name ...string) *Builder {
	b.tree.presentCollection = enabled
	b.tree.collectionName = "items"
	if len(name) > 0 && name[0] != "" {
		b.tree.collectionName = name[0]
	}
	return b
}

// FormatWith registers a formatter local to this entity.
func (b *Builder) FormatWith(name string, fn Formatter) *Builder {
	b.tree.formatters[name] = fn
	return b
}

func nestedExposure() *ConfigError {
	return &ConfigError{
		Kind:    ErrNestedExposure,
		Message: "You cannot call `unexpose` inside of nesting exposure!",
	}
}
