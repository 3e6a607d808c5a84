package blank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"ab", 3},
		{"int", 3},
		{"LocalDate", 9},
		{"DateTimeFormatter", 17},
		{"IllegalArgumentException", 20},
	}

	for _, tt := range tests {
		got := Placeholder(tt.text)
		assert.Len(t, got, tt.want, "Placeholder(%q)", tt.text)
		assert.Equal(t, strings.Repeat("_", tt.want), got)
	}
}

func TestRender(t *testing.T) {
	source := "int x = 42;"
	selected := []Candidate{
		{Start: 0, End: 3, Text: "int"},
		{Start: 8, End: 10, Text: "42"},
	}

	code, blanks := Render(source, selected, nil)
	assert.Equal(t, "___ x = ___;", code)
	assert.Equal(t, []domain.Blank{{Answer: "int"}, {Answer: "42"}}, blanks)
}

func TestRender_InputOrderDoesNotMatter(t *testing.T) {
	source := "String name = reader.readLine();"
	a := Candidate{Start: 0, End: 6, Text: "String"}
	b := Candidate{Start: 7, End: 11, Text: "name"}
	c := Candidate{Start: 21, End: 29, Text: "readLine"}

	code1, blanks1 := Render(source, []Candidate{a, b, c}, nil)
	code2, blanks2 := Render(source, []Candidate{c, a, b}, nil)

	assert.Equal(t, code1, code2)
	assert.Equal(t, blanks1, blanks2)
	assert.Equal(t, "______ ____ = reader.________();", code1)
	assert.Equal(t, []string{"String", "name", "readLine"}, (&domain.Exercise{Blanks: blanks1}).Answers())
}

func TestRender_SkipsIntegrityMismatch(t *testing.T) {
	source := "int total = 10;"
	selected := []Candidate{
		{Start: 0, End: 3, Text: "int"},
		{Start: 4, End: 9, Text: "count"},
		{Start: 12, End: 14, Text: "10"},
		{Start: 40, End: 45, Text: "beyond"},
	}

	code, blanks := Render(source, selected, nil)
	assert.Equal(t, "___ total = ___;", code)
	assert.Equal(t, []domain.Blank{{Answer: "int"}, {Answer: "10"}}, blanks)
}

func TestRender_OverlappingSelectionStaysAligned(t *testing.T) {
	source := "abcdefghij"
	selected := []Candidate{
		{Start: 0, End: 5, Text: "abcde"},
		{Start: 3, End: 8, Text: "defgh"},
	}

	code, blanks := Render(source, selected, nil)
	assert.Equal(t, "abc_____ij", code)
	assert.Equal(t, []domain.Blank{{Answer: "defgh"}}, blanks)
}

func TestRender_Empty(t *testing.T) {
	code, blanks := Render("int x = 42;", nil, nil)
	assert.Equal(t, "int x = 42;", code)
	assert.Empty(t, blanks)
}

func TestStyleFileBanners(t *testing.T) {
	rule := strings.Repeat("=", 44)
	source := "// " + rule + "\n// FILE: Product.java\n// " + rule + "\npublic interface Product {}"

	got := StyleFileBanners(source)
	require.True(t, strings.HasPrefix(got, `<span class="file-separator">// `+rule+"\n// FILE: Product.java\n// "+rule+"</span>"), got)
	assert.True(t, strings.HasSuffix(got, "\npublic interface Product {}"))

	short := "// ====\n// FILE: X.java\n// ===="
	assert.Equal(t, short, StyleFileBanners(short), "short rules are not banners")
}
