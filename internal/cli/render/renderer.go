package render

import (
	"encoding/json"
	"io"
)

// Renderer prints the result of a use case
type Renderer[T any] interface {
	Render(result T) error
}

// JSONRenderer prints a view of a result as indented JSON, for --json output
type JSONRenderer[T any] struct {
	out  io.Writer
	view func(T) any
}

// NewJSONRenderer creates a JSON renderer. view selects what gets encoded.
func NewJSONRenderer[T any](out io.Writer, view func(T) any) *JSONRenderer[T] {
	return &JSONRenderer[T]{out: out, view: view}
}

func (r *JSONRenderer[T]) Render(result T) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(r.view(result))
}
