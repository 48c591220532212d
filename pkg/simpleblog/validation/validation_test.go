package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var postRules = Ruleset{
	{Field: "title", Required: true, Kind: KindString, Message: "Title is mandatory field"},
	{Field: "cover", Kind: KindURL},
	{Field: "readTime", Required: true, Kind: KindObject},
	{Field: "readTime.value", Required: true, Kind: KindInteger, Min: MinValue(0)},
	{Field: "author", Kind: KindObject},
	{Field: "author.name", Required: true, Kind: KindString},
}

func TestValidateCollectsEveryFailure(t *testing.T) {
	result := postRules.Validate(map[string]any{})

	assert.False(t, result.Valid())
	assert.Equal(t, []string{"title", "readTime", "readTime.value"}, result.Fields())
	assert.Equal(t, "Title is mandatory field", result.Errors[0].Message)
	assert.Equal(t, "is required", result.Errors[1].Message)
}

func TestValidateNestedFields(t *testing.T) {
	tests := []struct {
		name   string
		doc    map[string]any
		fields []string
	}{
		{
			name: "valid",
			doc: map[string]any{
				"title":    "A",
				"readTime": map[string]any{"value": float64(3)},
				"author":   map[string]any{"name": "Ada"},
			},
			fields: []string{},
		},
		{
			name:   "optional parent absent",
			doc:    map[string]any{"title": "A", "readTime": map[string]any{"value": float64(3)}},
			fields: []string{},
		},
		{
			name: "optional parent present but incomplete",
			doc: map[string]any{
				"title":    "A",
				"readTime": map[string]any{"value": float64(3)},
				"author":   map[string]any{},
			},
			fields: []string{"author.name"},
		},
		{
			name:   "fractional integer",
			doc:    map[string]any{"title": "A", "readTime": map[string]any{"value": 2.5}},
			fields: []string{"readTime.value"},
		},
		{
			name:   "below minimum",
			doc:    map[string]any{"title": "A", "readTime": map[string]any{"value": float64(-1)}},
			fields: []string{"readTime.value"},
		},
		{
			name:   "wrong kinds",
			doc:    map[string]any{"title": 7, "readTime": "soon", "cover": "not a link"},
			fields: []string{"title", "cover", "readTime", "readTime.value"},
		},
		{
			name:   "blank required string",
			doc:    map[string]any{"title": "   ", "readTime": map[string]any{"value": float64(1)}},
			fields: []string{"title"},
		},
		{
			name:   "blank optional url",
			doc:    map[string]any{"title": "A", "cover": "", "readTime": map[string]any{"value": float64(1)}},
			fields: []string{"cover"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fields, postRules.Validate(tt.doc).Fields())
		})
	}
}

func TestValidateReportsValue(t *testing.T) {
	result := postRules.Validate(map[string]any{"title": 7, "readTime": map[string]any{"value": float64(1)}})
	if assert.Len(t, result.Errors, 1) {
		assert.Equal(t, 7, result.Errors[0].Value)
		assert.Equal(t, "title: Title is mandatory field", result.Errors[0].Error())
	}
}

func TestValidateStrictUnknownFields(t *testing.T) {
	doc := map[string]any{
		"title":    "A",
		"readTime": map[string]any{"value": float64(1), "extra": true},
		"zeta":     1,
		"alpha":    2,
	}

	result := postRules.ValidateStrict(doc)
	assert.Equal(t, []string{"alpha", "zeta"}, result.Fields())
	assert.Equal(t, "unknown field", result.Errors[0].Message)
}

func TestIsEmail(t *testing.T) {
	valid := []string{"ada@example.com", "a.b+c@sub.example.org"}
	invalid := []string{"", "ada", "ada@localhost", "Ada <ada@example.com>", "ada@@example.com"}

	for _, s := range valid {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), s)
	}
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://localhost:8080/media/x"))
	assert.False(t, IsURL("ftp://example.com/a"))
	assert.False(t, IsURL("/relative/path"))
	assert.False(t, IsURL("example.com"))
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("1815-12-10"))
	assert.True(t, IsISODate("2021-03-01T10:00:00Z"))
	assert.True(t, IsISODate("2021-03-01T10:00:00"))
	assert.False(t, IsISODate("10/12/1815"))
	assert.False(t, IsISODate("1815-13-10"))
}
