package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleaner-cli/gleaner/internal/config"
	"github.com/gleaner-cli/gleaner/internal/lang"
)

func newTestParser(minLines, maxLines int, skipTests bool) *FragmentParser {
	cfg := config.DefaultExtract()
	cfg.MinLines = minLines
	cfg.MaxLines = maxLines
	cfg.SkipTests = skipTests
	return NewFragmentParser(cfg)
}

const goSource = `package sample

// Add returns the sum of its arguments.
func Add(a, b int) int {
	return a + b
}

func (c *Counter) Inc() {
	c.n++
}

// Counter tracks a running count.
type Counter struct {
	n int
}
`

func TestParseGo(t *testing.T) {
	t.Parallel()
	p := newTestParser(1, 100, false)
	frags, warns := p.Parse("sample.go", "proj", []byte(goSource), lang.Go)
	require.Empty(t, warns)
	require.Len(t, frags, 3)

	byName := map[string]Fragment{}
	for _, f := range frags {
		byName[f.Name] = f
	}

	add := byName["Add"]
	assert.Equal(t, KindFunction, add.Kind)
	assert.Equal(t, 3, add.StartLine)
	assert.Equal(t, 6, add.EndLine)
	assert.Contains(t, add.Code, "// Add returns the sum")
	assert.Contains(t, add.Code, "return a + b")

	inc := byName["Counter.Inc"]
	assert.Equal(t, KindMethod, inc.Kind)

	counter := byName["Counter"]
	assert.Equal(t, KindClass, counter.Kind)
	assert.Contains(t, counter.Code, "// Counter tracks")
}

func TestParseGoSyntaxErrorIsWarning(t *testing.T) {
	t.Parallel()
	p := newTestParser(1, 100, false)
	frags, warns := p.Parse("broken.go", "proj", []byte("package x\nfunc {"), lang.Go)
	assert.Empty(t, frags)
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[0].Message, "go parse")
}

func TestParseLineBounds(t *testing.T) {
	t.Parallel()
	p := newTestParser(5, 10, false)
	frags, _ := p.Parse("sample.go", "proj", []byte(goSource), lang.Go)
	// Add spans 4 lines of code plus its doc line (3-6); Inc spans 3 lines.
	// Only constructs within [5,10] lines survive.
	for _, f := range frags {
		span := f.EndLine - f.StartLine + 1
		assert.GreaterOrEqual(t, span, 5)
		assert.LessOrEqual(t, span, 10)
	}
}

func TestParseSkipTestsByPath(t *testing.T) {
	t.Parallel()
	p := newTestParser(1, 100, true)
	frags, warns := p.Parse("sample_test.go", "proj", []byte(goSource), lang.Go)
	assert.Empty(t, frags)
	assert.Empty(t, warns)
}

func TestParseSkipTestsByName(t *testing.T) {
	t.Parallel()
	src := `package sample

func TestThing(t *T) {
	t.Log("x")
}

func Helper() int {
	return 1
}
`
	p := newTestParser(1, 100, true)
	frags, _ := p.Parse("sample.go", "proj", []byte(src), lang.Go)
	require.Len(t, frags, 1)
	assert.Equal(t, "Helper", frags[0].Name)
}

func TestParseJavaScript(t *testing.T) {
	t.Parallel()
	src := `export function greet(name) {
  if (!name) {
    return 'hello';
  }
  return 'hello ' + name;
}

class Greeter {
  constructor(prefix) {
    this.prefix = prefix;
  }
}

const shout = (msg) => {
  return msg.toUpperCase();
};
`
	p := newTestParser(1, 100, false)
	frags, warns := p.Parse("app.js", "proj", []byte(src), lang.JavaScript)
	require.Empty(t, warns)
	require.Len(t, frags, 3)

	byName := map[string]Fragment{}
	for _, f := range frags {
		byName[f.Name] = f
	}
	assert.Equal(t, KindFunction, byName["greet"].Kind)
	assert.Equal(t, 1, byName["greet"].StartLine)
	assert.Equal(t, 6, byName["greet"].EndLine)
	assert.Equal(t, KindClass, byName["Greeter"].Kind)
	assert.Equal(t, KindFunction, byName["shout"].Kind)
}

func TestParseUnterminatedBraceIsWarning(t *testing.T) {
	t.Parallel()
	src := "function broken(a) {\n  return a;\n"
	p := newTestParser(1, 100, false)
	frags, warns := p.Parse("app.js", "proj", []byte(src), lang.JavaScript)
	assert.Empty(t, frags)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "broken")
}

func TestParsePython(t *testing.T) {
	t.Parallel()
	src := `class Shape:
    def area(self):
        return 0

    def name(self):
        return "shape"


def standalone(x):
    return x * 2
`
	p := newTestParser(2, 100, false)
	frags, warns := p.Parse("shapes.py", "proj", []byte(src), lang.Python)
	require.Empty(t, warns)
	require.Len(t, frags, 4)

	byName := map[string]Fragment{}
	for _, f := range frags {
		byName[f.Name] = f
	}
	assert.Equal(t, KindClass, byName["Shape"].Kind)
	assert.Equal(t, 1, byName["Shape"].StartLine)
	assert.Equal(t, 6, byName["Shape"].EndLine)
	assert.Equal(t, KindMethod, byName["area"].Kind)
	assert.Equal(t, KindMethod, byName["name"].Kind)
	assert.Equal(t, KindFunction, byName["standalone"].Kind)
}

func TestParsePythonTabIndentation(t *testing.T) {
	t.Parallel()
	src := "class Widget:\n" +
		"\tdef alpha(self):\n" +
		"\t\treturn 1\n" +
		"\n" +
		"\tdef beta(self):\n" +
		"\t\treturn 2\n"
	p := newTestParser(2, 100, false)
	frags, warns := p.Parse("widget.py", "proj", []byte(src), lang.Python)
	require.Empty(t, warns)
	require.Len(t, frags, 3)

	byName := map[string]Fragment{}
	for _, f := range frags {
		byName[f.Name] = f
	}
	// A sibling method at the same depth ends the previous one.
	assert.Equal(t, 2, byName["alpha"].StartLine)
	assert.Equal(t, 3, byName["alpha"].EndLine)
	assert.Equal(t, 5, byName["beta"].StartLine)
	assert.Equal(t, 6, byName["beta"].EndLine)
	assert.Equal(t, 6, byName["Widget"].EndLine)
}

func TestParsePythonDecorators(t *testing.T) {
	t.Parallel()
	src := `@app.route("/health")
def health():
    return "ok", 200
`
	p := newTestParser(2, 100, false)
	frags, _ := p.Parse("app.py", "proj", []byte(src), lang.Python)
	require.Len(t, frags, 1)
	assert.Equal(t, 1, frags[0].StartLine)
	assert.Contains(t, frags[0].Code, "@app.route")
}

func TestParseRuby(t *testing.T) {
	t.Parallel()
	src := `class Greeter
  def greet(name)
    if name
      "hi #{name}"
    end
  end
end
`
	p := newTestParser(2, 100, false)
	frags, warns := p.Parse("greeter.rb", "proj", []byte(src), lang.Ruby)
	require.Empty(t, warns)
	require.Len(t, frags, 2)

	byName := map[string]Fragment{}
	for _, f := range frags {
		byName[f.Name] = f
	}
	assert.Equal(t, KindClass, byName["Greeter"].Kind)
	assert.Equal(t, 1, byName["Greeter"].StartLine)
	assert.Equal(t, 7, byName["Greeter"].EndLine)
	assert.Equal(t, KindMethod, byName["greet"].Kind)
	assert.Equal(t, 2, byName["greet"].StartLine)
	assert.Equal(t, 6, byName["greet"].EndLine)
}

func TestParseRust(t *testing.T) {
	t.Parallel()
	src := `pub fn parse(input: &str) -> Result<Node, Error> {
    let trimmed = input.trim();
    if trimmed.is_empty() {
        return Err(Error::Empty);
    }
    Ok(Node::new(trimmed))
}

pub struct Node {
    value: String,
}
`
	p := newTestParser(2, 100, false)
	frags, warns := p.Parse("lib.rs", "proj", []byte(src), lang.Rust)
	require.Empty(t, warns)
	require.Len(t, frags, 2)
	assert.Equal(t, "parse", frags[0].Name)
	assert.Equal(t, KindFunction, frags[0].Kind)
	assert.Equal(t, "Node", frags[1].Name)
	assert.Equal(t, KindClass, frags[1].Kind)
}

func TestParseUnknownLanguage(t *testing.T) {
	t.Parallel()
	p := newTestParser(1, 100, false)
	frags, warns := p.Parse("data.xyz", "proj", []byte("whatever"), lang.Unknown)
	assert.Empty(t, frags)
	assert.Empty(t, warns)
}
