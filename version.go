package vitrine

import _ "embed"

// Version is the release version of vitrine.
//
//go:embed VERSION
var Version string
