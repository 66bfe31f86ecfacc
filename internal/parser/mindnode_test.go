package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSample(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.json")
	require.NoError(t, err)

	doc, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "Learning Go", doc.Title)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, ID("root-1"), doc.Nodes[0].ID)
	assert.Equal(t, 120.5, doc.Nodes[0].Location.X)
	require.Len(t, doc.Nodes[0].Nodes, 2)
	assert.Equal(t, "#E0A030", doc.Nodes[0].Nodes[0].Color())
	assert.Equal(t, "", doc.Nodes[0].Nodes[1].Color())
	require.Len(t, doc.Connections, 1)
	assert.Equal(t, ID("root-1"), doc.Connections[0].StartNodeID)
	assert.Equal(t, 6, doc.Count())
}

func TestIDAcceptsNumbers(t *testing.T) {
	doc, err := Parse([]byte(`{
		"title": "ids",
		"nodes": [{"id": 1, "title": {"text": "X"}, "location": {"x": 0, "y": 0}, "nodes": []}],
		"connections": [{"startNodeID": 1, "endNodeID": "2", "wayPointOffset": {"x": 1, "y": 2}}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, ID("1"), doc.Nodes[0].ID)
	assert.Equal(t, ID("1"), doc.Connections[0].StartNodeID)
	assert.Equal(t, ID("2"), doc.Connections[0].EndNodeID)
}

func TestIDNormalizesNumbers(t *testing.T) {
	doc, err := Parse([]byte(`{
		"title": "ids",
		"nodes": [{"id": 1.0, "title": {"text": "X"}, "location": {"x": 0, "y": 0}, "nodes": []}],
		"connections": [{"startNodeID": 1, "endNodeID": 1e0, "wayPointOffset": {"x": 0, "y": 0}}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, ID("1"), doc.Nodes[0].ID)
	assert.Equal(t, doc.Nodes[0].ID, doc.Connections[0].StartNodeID)
	assert.Equal(t, doc.Nodes[0].ID, doc.Connections[0].EndNodeID)
}

func TestIDRejectsObjects(t *testing.T) {
	_, err := Parse([]byte(`{"title": "x", "nodes": [{"id": {}, "title": {"text": "X"}, "location": {"x": 0, "y": 0}}]}`))
	require.Error(t, err)
}

func TestParseMissingFields(t *testing.T) {
	tests := []struct {
		name string
		json string
		path string
	}{
		{
			name: "missing title",
			json: `{"title": "t", "nodes": [{"id": "a", "location": {"x": 0, "y": 0}}]}`,
			path: "nodes[0]: title",
		},
		{
			name: "nested missing location",
			json: `{"title": "t", "nodes": [{"id": "a", "title": {"text": "A"}, "location": {"x": 0, "y": 0},
				"nodes": [{"id": "b", "title": {"text": "B"}}]}]}`,
			path: "nodes[0].nodes[0]: location",
		},
		{
			name: "connection without offset",
			json: `{"title": "t", "nodes": [], "connections": [{"startNodeID": "a", "endNodeID": "b"}]}`,
			path: "connections[0]: wayPointOffset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"title": `))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMissingField))
}

func TestValidateDeepTree(t *testing.T) {
	root := Node{ID: "0", Title: &StyledText{Text: "0"}, Location: &Point{}}
	cur := &root
	for i := 0; i < 5000; i++ {
		cur.Nodes = []Node{{ID: "n", Title: &StyledText{Text: "n"}, Location: &Point{}}}
		cur = &cur.Nodes[0]
	}
	doc := &Document{Nodes: []Node{root}}
	require.NoError(t, doc.Validate())
	assert.Equal(t, 5001, doc.Count())
}

func TestDecodeTooDeep(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"title": "deep", "nodes": [`)
	const depth = 6000
	for i := 0; i < depth; i++ {
		b.WriteString(`{"id": "n", "title": {"text": "n"}, "location": {"x": 0, "y": 0}, "nodes": [`)
	}
	for i := 0; i < depth; i++ {
		b.WriteString(`]}`)
	}
	b.WriteString(`]}`)

	_, err := Parse([]byte(b.String()))
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to decode mind map")
}
