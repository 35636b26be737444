package htmlclean

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestClean_RemovesScriptAndStyle(t *testing.T) {
	out := Clean(`
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.x {}</style>
</body>`, nil)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.Contains(t, out, `id="main"`)
}

func TestClean_RemovesComments(t *testing.T) {
	out := Clean(`<body><!-- secret comment --><div>Text</div></body>`, nil)

	assert.NotContains(t, out, "secret comment")
	assert.Contains(t, out, "Text")
}

func TestClean_FormAttributes(t *testing.T) {
	out := Clean(`
<body>
  <form>
    <label for="email">Email</label>
    <input id="email" name="email" placeholder="you@example.com" data-testid="x" onclick="go()" style="color:red" aria-label="Email address" aria-hidden="true">
  </form>
</body>`, nil)

	for _, want := range []string{`id="email"`, `name="email"`, `placeholder="you@example.com"`, `aria-label="Email address"`, `for="email"`} {
		assert.Contains(t, out, want)
	}
	for _, gone := range []string{"data-testid", "onclick", "style=", "aria-hidden"} {
		assert.NotContains(t, out, gone)
	}
}

func TestClean_CustomFilter(t *testing.T) {
	cfg := DefaultConfig
	cfg.CustomAttrFilter = func(a html.Attribute) bool { return a.Key == "class" }

	out := Clean(`<body><a href="/x" class="link">Go</a></body>`, &cfg)

	assert.Contains(t, out, `href="/x"`)
	assert.NotContains(t, out, "class=")
}

func TestClean_WithoutBodyTagStillParses(t *testing.T) {
	out := Clean(`<p>fragment</p>`, nil)

	assert.Contains(t, out, "<p>fragment</p>")
}

func TestClean_Truncation(t *testing.T) {
	var big strings.Builder
	big.WriteString("<body>")
	for i := 0; i < 20000; i++ {
		big.WriteString("<div>test</div>")
	}
	big.WriteString("</body>")

	out := Clean(big.String(), nil)

	assert.LessOrEqual(t, len(out), DefaultConfig.MaxOutputSize+len(TruncationNotice))
	assert.True(t, strings.HasSuffix(out, TruncationNotice))
}
