package render

// Renderer writes a command result to the terminal.
type Renderer[T any] interface {
	Render(result T) error
}
