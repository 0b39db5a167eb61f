package entity

import (
	"encoding/json"

	"github.com/aretw0/vitrine/pkg/encoding"
)

// Representation is the lazy result of Represent: the entity, the item and
// the options, rendered on demand.
type Representation struct {
	entity  *Entity
	object  any
	options Options
}

// Entity returns the entity that renders the item.
func (r *Representation) Entity() *Entity { return r.entity }

// Object returns the item being presented.
func (r *Representation) Object() any { return r.object }

// Options returns the render options of the item.
func (r *Representation) Options() Options { return r.options }

// Serialize renders the item into plain data.
func (r *Representation) Serialize() (any, error) {
	return r.entity.SerializableArray(r.object, r.options)
}

// MarshalJSON implements json.Marshaler.
func (r *Representation) MarshalJSON() ([]byte, error) {
	v, err := r.Serialize()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// MarshalYAML implements yaml.Marshaler.
func (r *Representation) MarshalYAML() (any, error) {
	return r.Serialize()
}

// ToJSON renders the item as a JSON document.
func (r *Representation) ToJSON() (string, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToXML renders the item as an XML document. root defaults to "root".
func (r *Representation) ToXML(root string) (string, error) {
	v, err := r.Serialize()
	if err != nil {
		return "", err
	}
	b, err := encoding.XML(v, encoding.WithRoot(root))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
