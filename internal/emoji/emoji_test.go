package emoji

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		marker   string
		expected string
	}{
		{"🗺", "mindmap"},
		{"🌐", "wiki"},
		{"🗂", "stack exchange"},
		{"📖", "free book"},
		{"📕", "non-free book"},
		{"📄", "paper"},
		{"👀", "video"},
		{"🖋", "article"},
		{"🗃", "blog"},
		{"🐙", "github"},
		{"👾", "interactive"},
		{"🖌", "image"},
		{"🎙", "podcast"},
		{"📮", "newsletter"},
		{"🗣", "chat"},
		{"🎥", "youtube"},
		{"🤖", "reddit"},
		{"🚀", ""},
		{"", ""},
		{"a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expected+tt.marker, func(t *testing.T) {
			assert.Equal(t, tt.expected, Category(tt.marker))
		})
	}
}

func TestToHTMLGeneric(t *testing.T) {
	got := ToHTML("see 🗺 here")
	assert.Equal(t,
		`see <img class="mindmap-emoji" src="https://assets-cdn.github.com/images/icons/emoji/unicode/1f5fa.png"> here`,
		got)
}

func TestToHTMLOverrides(t *testing.T) {
	assert.Equal(t, `<img class="mindmap-emoji" src="https://assets-cdn.github.com/images/icons/emoji/octocat.png">`, ToHTML("🐙"))
	assert.Contains(t, ToHTML("🤖"), `class="mindmap-emoji reddit-emoji"`)
	assert.Contains(t, ToHTML("🗂"), "se-icon.png")
}

func TestToHTMLUnknownMarker(t *testing.T) {
	// Not in the vocabulary, still converted via the codepoint.
	assert.Equal(t,
		`<img class="mindmap-emoji" src="https://assets-cdn.github.com/images/icons/emoji/unicode/1f680.png">`,
		ToHTML("🚀"))
}

func TestToHTMLLeavesBMPText(t *testing.T) {
	in := "plain ascii, accents é and ★ stay"
	assert.Equal(t, in, ToHTML(in))
}

func TestCategoryRoundTrip(t *testing.T) {
	for _, e := range Vocabulary() {
		if e.HTML != "" {
			continue
		}
		t.Run(e.Category, func(t *testing.T) {
			assert.Equal(t, ToHTML(e.Marker), CategoryToHTML(Category(e.Marker)))
		})
	}
}

func TestCategoryToHTMLOverrides(t *testing.T) {
	for _, e := range Vocabulary() {
		if e.HTML == "" {
			continue
		}
		assert.Equal(t, e.HTML, CategoryToHTML(e.Category))
	}
	assert.Empty(t, CategoryToHTML("podcasts"))
}

func TestCodepoint(t *testing.T) {
	assert.Equal(t, "1f5fa", Codepoint("🗺"))
	assert.Equal(t, "1f916", Codepoint("🤖"))
	assert.Equal(t, "1f3a5", Codepoint("🎥"))
	assert.Equal(t, "", Codepoint(""))
}

func TestFindAndStrip(t *testing.T) {
	text := "🌐 Wiki 📖 and more"
	require.Equal(t, []string{"🌐", "📖"}, Find(text))
	assert.Equal(t, " Wiki  and more", Strip(text))
	assert.Empty(t, Find("nothing here"))
}

func TestVocabularyIsClosed(t *testing.T) {
	v := Vocabulary()
	require.Len(t, v, 17)

	seen := map[string]bool{}
	for _, e := range v {
		assert.False(t, seen[e.Category], "duplicate category %q", e.Category)
		seen[e.Category] = true
		assert.Len(t, Find(e.Marker), 1, "marker for %q must be a single supplementary rune", e.Category)
	}

	v[0].Category = "changed"
	assert.Equal(t, "mindmap", Category("🗺"))
}

func TestToHTMLMultiple(t *testing.T) {
	got := ToHTML("🗺🌐")
	assert.Equal(t, 2, strings.Count(got, "<img"))
}
