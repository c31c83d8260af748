package latex

import (
	"hash/fnv"
	"strings"
)

// Token is a single element of a preprocessed LaTeX fragment: either a
// plain text run or a command with an ordered forest of arguments.
// Tokens are immutable after construction; the structural hash and cost
// are computed once by the constructors.
type Token interface {
	// Label returns the text content or the command name.
	Label() string

	// Args returns the child forest. Nil for text tokens.
	Args() Forest

	// Cost returns the edit cost of the whole token tree: 1 for text,
	// 1 plus the cost of the arguments for commands.
	Cost() int

	// Hash returns the structural hash. Equal structures hash equally.
	Hash() uint64
}

// Forest is an ordered sequence of tokens.
type Forest []Token

// Text is a plain text run.
type Text struct {
	value string
	hash  uint64
}

// NewText creates a text token.
func NewText(value string) Text {
	h := fnv.New64a()
	h.Write([]byte{'t'})
	h.Write([]byte(value))
	return Text{value: value, hash: h.Sum64()}
}

func (t Text) Label() string { return t.value }
func (t Text) Args() Forest  { return nil }
func (t Text) Cost() int     { return 1 }
func (t Text) Hash() uint64  { return t.hash }

// Command is a LaTeX command with its argument forest.
type Command struct {
	name string
	args Forest
	hash uint64
	cost int
}

// NewCommand creates a command token over the given argument forest.
// A command's argument forest is never nil, so the codec can tell an
// argless command apart from a text token.
func NewCommand(name string, args Forest) Command {
	if args == nil {
		args = Forest{}
	}
	h := fnv.New64a()
	h.Write([]byte{'c'})
	h.Write([]byte(name))
	var buf [8]byte
	for _, a := range args {
		putUint64(buf[:], a.Hash())
		h.Write(buf[:])
	}
	return Command{name: name, args: args, hash: h.Sum64(), cost: 1 + Cost(args)}
}

func (c Command) Label() string { return c.name }
func (c Command) Args() Forest  { return c.args }
func (c Command) Cost() int     { return c.cost }
func (c Command) Hash() uint64  { return c.hash }

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// Cost returns the total edit cost of a forest.
func Cost(f Forest) int {
	total := 0
	for _, t := range f {
		total += t.Cost()
	}
	return total
}

// Hash returns the structural hash of a whole forest.
func Hash(f Forest) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, t := range f {
		putUint64(buf[:], t.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Equal reports structural equality of two forests.
func Equal(a, b Forest) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Hash() != b[i].Hash() || a[i].Label() != b[i].Label() {
			return false
		}
		if !Equal(a[i].Args(), b[i].Args()) {
			return false
		}
	}
	return true
}

// Suffixes returns every suffix forest of f, from f itself down to the
// empty forest. Suffixes[i] is f with its first i top-level tokens
// removed; the result has length len(f)+1. The suffixes share f's
// backing array, which is safe because forests are immutable.
func Suffixes(f Forest) []Forest {
	out := make([]Forest, len(f)+1)
	for i := 0; i <= len(f); i++ {
		out[i] = f[i:]
	}
	return out
}

// String renders the forest in a LaTeX-like form for diagnostics.
func (f Forest) String() string {
	var sb strings.Builder
	for i, t := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		writeToken(&sb, t)
	}
	return sb.String()
}

func writeToken(sb *strings.Builder, t Token) {
	if t.Args() == nil {
		sb.WriteString(t.Label())
		return
	}
	sb.WriteByte('\\')
	sb.WriteString(t.Label())
	sb.WriteByte('{')
	sb.WriteString(t.Args().String())
	sb.WriteByte('}')
}
