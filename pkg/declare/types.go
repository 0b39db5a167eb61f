package declare

// Document is the top level of a declaration file.
type Document struct {
	Entities map[string]EntityDecl `mapstructure:"entities"`
}

// EntityDecl declares one entity.
type EntityDecl struct {
	// Root holds the plural and singular root keys.
	Root              []string        `mapstructure:"root"`
	PresentCollection *CollectionDecl `mapstructure:"present_collection"`
	Extends           []string        `mapstructure:"extends"`
	Expose            []ExposureDecl  `mapstructure:"expose"`
}

// CollectionDecl configures collection framing.
type CollectionDecl struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
}

// ExposureDecl declares one exposure, or several sharing options through Names.
type ExposureDecl struct {
	Name          string         `mapstructure:"name"`
	Names         []string       `mapstructure:"names"`
	As            string         `mapstructure:"as"`
	Default       any            `mapstructure:"default"`
	If            any            `mapstructure:"if"`
	Using         string         `mapstructure:"using"`
	With          string         `mapstructure:"with"`
	Safe          bool           `mapstructure:"safe"`
	Merge         bool           `mapstructure:"merge"`
	FormatWith    string         `mapstructure:"format_with"`
	ExposeNull    *bool          `mapstructure:"expose_null"`
	Override      bool           `mapstructure:"override"`
	AttrPath      any            `mapstructure:"attr_path"`
	Documentation any            `mapstructure:"documentation"`
	Value         any            `mapstructure:"value"`
	Expose        []ExposureDecl `mapstructure:"expose"`
}

func (x ExposureDecl) names() []string {
	if x.Name == "" {
		return x.Names
	}
	return append([]string{x.Name}, x.Names...)
}

func (x ExposureDecl) using() string {
	if x.Using != "" {
		return x.Using
	}
	return x.With
}

// Reference is a using edge from an exposure to another entity.
type Reference struct {
	Field  string
	Entity string
}
