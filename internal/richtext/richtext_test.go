package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want Text
	}{
		{
			name: "plain text",
			blob: "Machine learning",
			want: Text{Text: "Machine learning"},
		},
		{
			name: "styled paragraph",
			blob: `<p style="text-align:center;"><span style="color:#000000;">Deep learning</span></p>`,
			want: Text{Text: "Deep learning"},
		},
		{
			name: "link",
			blob: `<p><a href="https://en.wikipedia.org/wiki/Go"> Go </a> 🌐</p>`,
			want: Text{Text: "Go  🌐", URL: "https://en.wikipedia.org/wiki/Go"},
		},
		{
			name: "first link wins",
			blob: `<p><a href="https://a.example">A</a> <a href="https://b.example">B</a></p>`,
			want: Text{Text: "A B", URL: "https://a.example"},
		},
		{
			name: "entities decoded",
			blob: `<p>Tom &amp; Jerry &lt;3</p>`,
			want: Text{Text: "Tom & Jerry <3"},
		},
		{
			name: "paragraphs and breaks",
			blob: `<p>first</p><p>second<br>third</p>`,
			want: Text{Text: "first\nsecond\nthird"},
		},
		{
			name: "empty",
			blob: "",
			want: Text{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.blob))
		})
	}
}

func TestExtractKeepsPlainTextAngleBrackets(t *testing.T) {
	tests := []struct {
		blob string
		want string
	}{
		{"x<y and z", "x<y and z"},
		{"a<z>c", "a<z>c"},
		{"fish & chips", "fish & chips"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<p>1 <k> 2</p>", "1 <k> 2"},
	}

	for _, tt := range tests {
		t.Run(tt.blob, func(t *testing.T) {
			assert.Equal(t, Text{Text: tt.want}, Extract(tt.blob))
		})
	}
}

func TestExtractNormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent.
	got := Extract("cafe\u0301")
	assert.Equal(t, "caf\u00e9", got.Text)
}

func TestDefaultExtractor(t *testing.T) {
	assert.Equal(t, Extract("<p>x</p>"), Default.Extract("<p>x</p>"))
}
