package editdist

import (
	"math/rand"
	"testing"

	"github.com/DavidAlphaFox/texsearch/internal/latex"
	"github.com/stretchr/testify/assert"
)

func text(values ...string) latex.Forest {
	f := make(latex.Forest, len(values))
	for i, v := range values {
		f[i] = latex.NewText(v)
	}
	return f
}

func TestDistanceBaseCases(t *testing.T) {
	f := latex.Forest{latex.NewCommand("dot", text("V")), latex.NewText("x")}

	assert.Equal(t, 0, Distance(nil, nil))
	assert.Equal(t, latex.Cost(f), Distance(nil, f))
	assert.Equal(t, latex.Cost(f), Distance(f, nil))
}

func TestDistanceHandComputed(t *testing.T) {
	tests := []struct {
		name     string
		left     latex.Forest
		right    latex.Forest
		expected int
	}{
		{
			name:     "identical flat forests",
			left:     text("a", "b", "c"),
			right:    text("a", "b", "c"),
			expected: 0,
		},
		{
			name:     "single rename",
			left:     text("x"),
			right:    text("y"),
			expected: 1,
		},
		{
			name:     "rename inside command",
			left:     latex.Forest{latex.NewCommand("dot", text("V"))},
			right:    latex.Forest{latex.NewCommand("dot", text("W"))},
			expected: 1,
		},
		{
			name:     "deleting a wrapper keeps its children",
			left:     latex.Forest{latex.NewCommand("dot", text("V"))},
			right:    text("V"),
			expected: 1,
		},
		{
			name:     "insert one token",
			left:     text("a", "b"),
			right:    text("a", "x", "b"),
			expected: 1,
		},
		{
			name:     "disjoint singletons via rename",
			left:     latex.Forest{latex.NewCommand("frac", text("x", "y"))},
			right:    latex.Forest{latex.NewCommand("binom", text("x", "y"))},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.left, tt.right))
		})
	}
}

func TestLeftDistanceHandComputed(t *testing.T) {
	tests := []struct {
		name     string
		left     latex.Forest
		right    latex.Forest
		expected int
	}{
		{
			name:     "prefix match costs nothing",
			left:     text("a", "b"),
			right:    text("a", "b", "c", "d"),
			expected: 0,
		},
		{
			name:     "right exhausted pays for the rest of left",
			left:     text("a", "b", "c"),
			right:    nil,
			expected: 3,
		},
		{
			name:     "one deletion to reach an inner match",
			left:     text("y"),
			right:    text("x", "y"),
			expected: 1,
		},
		{
			name:     "empty query matches anything",
			left:     nil,
			right:    text("x", "y", "z"),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LeftDistance(tt.left, tt.right))
		})
	}
}

// randomForest builds a small random forest with bounded depth.
func randomForest(rng *rand.Rand, depth int) latex.Forest {
	labels := []string{"a", "b", "c", "dot", "frac", "x", "y"}
	n := rng.Intn(4)
	f := make(latex.Forest, 0, n)
	for i := 0; i < n; i++ {
		label := labels[rng.Intn(len(labels))]
		if depth > 0 && rng.Intn(3) == 0 {
			f = append(f, latex.NewCommand(label, randomForest(rng, depth-1)))
		} else {
			f = append(f, latex.NewText(label))
		}
	}
	return f
}

func TestDistanceProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		f := randomForest(rng, 2)
		g := randomForest(rng, 2)

		df := Distance(f, f)
		assert.Zero(t, df, "d(f, f) must be 0 for %v", f)

		d := Distance(f, g)
		assert.GreaterOrEqual(t, d, 0)
		assert.Equal(t, d, Distance(g, f), "full distance must be symmetric")
		assert.LessOrEqual(t, d, latex.Cost(f)+latex.Cost(g))

		ld := LeftDistance(f, g)
		assert.GreaterOrEqual(t, ld, 0)
		assert.LessOrEqual(t, ld, latex.Cost(f), "left distance is bounded by the query cost")
		assert.LessOrEqual(t, ld, d, "ignoring the right remainder can only help")
	}
}

// flatten returns the preorder label sequence. Deleting a token keeps
// its children, so the distance is insensitive to nesting and a zero
// distance means equal flattenings, not necessarily equal trees.
func flatten(f latex.Forest) []string {
	var out []string
	for _, tok := range f {
		out = append(out, tok.Label())
		out = append(out, flatten(tok.Args())...)
	}
	return out
}

func TestDistanceZeroImpliesEqualFlattening(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		f := randomForest(rng, 2)
		g := randomForest(rng, 2)
		if Distance(f, g) == 0 {
			assert.Equal(t, flatten(f), flatten(g))
		}
	}
}
