// Package sqlbuilder collects statement arguments while emitting the
// placeholder syntax of the target dialect, so one ops layer can serve
// both sqlite ("?") and postgres ("$n").
package sqlbuilder

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0, 8)}
}

// Arg records v and returns the placeholder that stands for it.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	if b.Style == PlaceholderDollar {
		return "$" + itoa(len(b.args))
	}
	return "?"
}

// ArgList records every value and returns its placeholders in order.
func (b *Builder) ArgList(vs ...any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = b.Arg(v)
	}
	return out
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

// itoa converts int to string without fmt overhead
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	return string(buf[i:])
}
