/*
Package vitrine is a presenter layer that turns domain objects into ordered, serializable representations for APIs.

An entity declares, once, which attributes of an input are exposed, under which output keys, under which conditions, and how nested values are formatted or delegated to other entities. Rendering walks that declaration against any input (maps, structs, values with custom attribute hooks) and produces ordered mappings ready to be encoded as JSON, YAML, XML or CBOR.

# Key Features

  - Declarative exposures: renames, defaults, conditions, nesting, merging and formatters.
  - Composition: entities extend each other and delegate nested values with Using.
  - Projections: only/except render options narrow the output at every depth.
  - Data-driven declarations: entities can be loaded from YAML or JSON files.
  - Pluggable attribute resolution through adapters and a Redis-backed adapter cache.

# Usage

Declare entities in Go or in declaration files, then render through the Engine.

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/vitrine"
		"github.com/aretw0/vitrine/pkg/entity"
	)

	func main() {
		user := entity.New("user", func(b *entity.Builder) {
			b.Expose("name")
			b.Expose("email", entity.If("admin"))
		})

		eng := vitrine.New()
		eng.Register(user)

		out, err := eng.Render(context.Background(), "user",
			map[string]any{"name": "Ada", "email": "ada@example.com"},
			entity.Options{"admin": true})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(out)
	}
*/
package vitrine
