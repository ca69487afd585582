package sanitizer

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostile is a corpus of injection attempts and awkward markup.
var hostile = []string{
	`<script>alert(1)</script>`,
	`<img src=x onerror=alert(1)>`,
	`<a href="javascript:alert(1)">click</a>`,
	`<a href="JaVaScRiPt:alert(1)">click</a>`,
	`<a href="java&#x09;script:alert(1)">tab</a>`,
	`<a href="javascript&#58;alert(1)">entity</a>`,
	`<img src="data:image/svg+xml;base64,PHN2Zz48L3N2Zz4=">`,
	`<a href="data:text/html,<script>alert(1)</script>">data</a>`,
	`<a href="//evil.example/x">protocol relative</a>`,
	`<a href="/relative/path">relative</a>`,
	`<img src="/api/files/../../etc/passwd">`,
	`<p onclick="steal()" style="color:red" class="x">para</p>`,
	`<iframe src="https://evil.example"></iframe>text after`,
	`<svg><g onload="alert(1)"></g></svg>`,
	`<div><span>nested <b>bold</b> <i>italic</i></span></div>`,
	`<style>body{display:none}</style>visible`,
	`<object data="x.swf"></object><embed src="x.swf">`,
	`<form action="https://evil.example"><input name="q"><button>go</button></form>`,
	`<math><mi xlink:href="javascript:alert(1)">x</mi></math>`,
	`<a href="https://example.com" target="_blank" rel="opener" onmouseover="x()">ok</a>`,
	`<a href="https://example.com" target="javascript:alert(1)">bad target</a>`,
	`<img src="/api/files/0123abcd-4567" alt="fine" title="t" width="10">`,
	`<pre class="language-go"><code class="language-go">x := 1</code></pre>`,
	`<table class="grid" border="1"><thead><tr><th>a</th></tr></thead><tbody><tr><td class="c" colspan="2">1</td></tr></tbody></table>`,
	`<p>unclosed <strong>bold <em>both`,
	`</p></p><br/><hr/>`,
	`&lt;script&gt; already escaped &amp; fine`,
	`<!-- comment --><p>after comment</p>`,
	`<scr<script>ipt>alert(1)</script>`,
	`<<a href="javascript:alert(1)">a>`,
	`<base href="javascript:/"><link rel="stylesheet" href="x.css">`,
	`<meta http-equiv="refresh" content="0;url=javascript:alert(1)">`,
	`plain text with "quotes" & 'apostrophes'`,
}

var (
	tagPattern   = regexp.MustCompile(`<\s*/?\s*([a-zA-Z0-9]+)`)
	eventPattern = regexp.MustCompile(`(?i)\son[a-z]+\s*=`)
)

func TestSanitize_XSSScenarios(t *testing.T) {
	s := NewHTMLSanitizer()

	t.Run("script tag", func(t *testing.T) {
		out := s.Sanitize(`<script>alert(1)</script>`)
		assert.NotContains(t, strings.ToLower(out), "<script")
		assert.NotContains(t, out, "alert(1)")
	})

	t.Run("onerror attribute", func(t *testing.T) {
		out := s.Sanitize(`<img src=x onerror=alert(1)>`)
		assert.NotContains(t, out, "onerror")
		assert.NotContains(t, out, "alert")
	})

	t.Run("javascript href", func(t *testing.T) {
		out := s.Sanitize(`<a href="javascript:alert(1)">click</a>`)
		assert.NotContains(t, strings.ToLower(out), "javascript:")
		assert.Contains(t, out, "click")
	})
}

func TestSanitize_AllowListClosure(t *testing.T) {
	s := NewHTMLSanitizer()

	for _, in := range hostile {
		out := s.Sanitize(in)

		require.NoError(t, Verify(out), "input %q produced %q", in, out)
		assert.False(t, eventPattern.MatchString(out), "event handler in %q", out)

		lower := strings.ToLower(out)
		assert.NotContains(t, lower, "javascript:")
		assert.NotContains(t, lower, "data:")

		for _, m := range tagPattern.FindAllStringSubmatch(out, -1) {
			_, ok := allowList[strings.ToLower(m[1])]
			assert.True(t, ok, "tag %q escaped the allow-list in %q", m[1], out)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewHTMLSanitizer()

	for _, in := range hostile {
		once := s.Sanitize(in)
		twice := s.Sanitize(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestSanitize_KeepsLegitimateFormatting(t *testing.T) {
	s := NewHTMLSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "paragraph with emphasis",
			in:   `<p>Hello <strong>world</strong> and <em>you</em></p>`,
			want: `<p>Hello <strong>world</strong> and <em>you</em></p>`,
		},
		{
			name: "heading",
			in:   `<h2 id="intro">Intro</h2>`,
			want: `<h2>Intro</h2>`,
		},
		{
			name: "internal asset image",
			in:   `<img src="/api/files/0123abcd-4567" alt="chart" title="t" width="10">`,
			want: `<img src="/api/files/0123abcd-4567" alt="chart" title="t">`,
		},
		{
			name: "external link",
			in:   `<a href="https://example.com/a?b=c" title="ex" target="_blank" rel="x">ex</a>`,
			want: `<a href="https://example.com/a?b=c" title="ex" target="_blank">ex</a>`,
		},
		{
			name: "code class kept",
			in:   `<pre><code class="language-go">x</code></pre>`,
			want: `<pre><code class="language-go">x</code></pre>`,
		},
		{
			name: "disallowed wrapper unwrapped",
			in:   `<div><p>inside</p></div>`,
			want: `<p>inside</p>`,
		},
		{
			name: "style attribute dropped",
			in:   `<p style="color:red" onclick="x()">para</p>`,
			want: `<p>para</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.in))
		})
	}
}

func TestSanitize_NeutralisesURLs(t *testing.T) {
	s := NewHTMLSanitizer()

	tests := []struct {
		name string
		in   string
	}{
		{name: "short asset id", in: `<img src="/api/files/abc">`},
		{name: "uppercase asset id", in: `<img src="/api/files/ABCDEF12">`},
		{name: "asset with suffix", in: `<img src="/api/files/abcdef12/../x">`},
		{name: "relative", in: `<img src="images/a.png">`},
		{name: "ftp", in: `<a href="ftp://example.com/f">f</a>`},
		{name: "mailto", in: `<a href="mailto:a@example.com">m</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Sanitize(tt.in)
			assert.NotContains(t, out, "src=")
			assert.NotContains(t, out, "href=")
			assert.NoError(t, Verify(out))
		})
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "allowed", in: `<p>ok <a href="https://x.example">x</a></p>`},
		{name: "asset image", in: `<img src="/api/files/deadbeef" alt="a">`},
		{name: "text only", in: `just text`},
		{name: "script", in: `<script></script>`, wantErr: true},
		{name: "div", in: `<div>x</div>`, wantErr: true},
		{name: "attribute", in: `<p class="x">x</p>`, wantErr: true},
		{name: "event handler", in: `<img src="/api/files/deadbeef" onerror="x">`, wantErr: true},
		{name: "bad scheme", in: `<a href="javascript:x">x</a>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrDisallowedMarkup)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsAllowedURL(t *testing.T) {
	assert.True(t, IsAllowedURL("https://example.com"))
	assert.True(t, IsAllowedURL("HTTP://EXAMPLE.COM"))
	assert.True(t, IsAllowedURL("/api/files/01234567-89ab"))
	assert.False(t, IsAllowedURL("/api/files/0123"))
	assert.False(t, IsAllowedURL("javascript:alert(1)"))
	assert.False(t, IsAllowedURL(""))
}
