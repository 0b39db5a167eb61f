/*
Package resolve reads a named attribute from an input value of unknown shape.

A Chain is an ordered list of strategies. Each strategy either handles the
lookup (returning a value or an error) or passes. The default chain tries, in
order:

  - mapping-like inputs (Go maps with string keys and ordered maps),
  - the self members of the declaring entity (fields and methods of a
    "members" value supplied at declaration time),
  - the globally registered adapters, first matching condition wins,
  - structured values: fields, zero-argument methods, and the
    AttributeGetter / AttributeCaller hooks.

When nothing handles the lookup the chain yields nil for safe lookups and a
*MissingAttributeError otherwise.

Reflection lookups are cached per type and name. Visibility gates exclude
unexported fields, promoted (embedded) fields, and promoted methods.
*/
package resolve
