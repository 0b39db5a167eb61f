package vitrine_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aretw0/vitrine"
	"github.com/aretw0/vitrine/pkg/entity"
)

// ExampleEngine_Encode renders a struct through an entity declared in Go.
func ExampleEngine_Encode() {
	type Post struct {
		Title  string
		Author string
		Draft  bool
	}

	post := entity.New("post", func(b *entity.Builder) {
		b.Root("posts", "post")
		b.Expose("Title", entity.As("title"))
		b.Expose("Author", entity.As("by"))
		b.Expose("Draft", entity.As("draft"), entity.If("preview"))
	})

	eng := vitrine.New()
	eng.Register(post)

	data, contentType, err := eng.Encode(context.Background(), "post",
		[]Post{{Title: "Hello", Author: "Ada"}}, nil, "json", false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(contentType)
	fmt.Println(string(data))
	// Output:
	// application/json
	// {"posts":[{"title":"Hello","by":"Ada"}]}
}

// ExampleEngine_LoadDeclarations loads an entity from a YAML document.
func ExampleEngine_LoadDeclarations() {
	eng := vitrine.New()
	_, err := eng.Loader().Load(strings.NewReader(`
entities:
  user:
    expose:
      - name: first_name
        as: name
      - name: nickname
        safe: true
        expose_null: false
`), "yaml")
	if err != nil {
		log.Fatal(err)
	}

	data, _, err := eng.Encode(context.Background(), "user",
		map[string]any{"first_name": "Grace"}, nil, "yaml", false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(data))
	// Output:
	// name: Grace
}
