package blank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractProtected(t *testing.T) {
	got := ExtractProtected(ageFinderReadme)

	for _, id := range []string{"LocalDate", "calculateAge", "AgeFinder"} {
		assert.True(t, got.Contains(id), "expected %q to be protected", id)
	}
	assert.False(t, got.Contains("Period"), "Period is not declared in the README")
	assert.Len(t, got, 3)
}

func TestExtractProtected_Variants(t *testing.T) {
	tests := []struct {
		name   string
		readme string
		want   []string
	}{
		{
			name: "expected classes heading",
			readme: "### Expected Classes\n```java\n" +
				"public class Node {\n}\n" +
				"class LinkedList {\n    private Node head;\n    public void add(int value)\n}\n```",
			want: []string{"Node", "LinkedList", "add"},
		},
		{
			name: "expected functions heading is case-insensitive",
			readme: "### expected functions\n```java\n" +
				"public static boolean isAnagram(String a, String b)\n" +
				"protected List<String> split(String s)\n```",
			want: []string{"isAnagram", "split"},
		},
		{
			name: "generic return types",
			readme: "### Expected Class\n```java\n" +
				"import java.util.Map;\n" +
				"public Map<String, Integer> countWords(String text)\n```",
			want: []string{"Map", "countWords"},
		},
		{
			name:   "multiple sections are unioned",
			readme: "### Expected Class\n```java\nclass A {}\n```\n\n### Expected Functions\n```java\npublic int b()\n```",
			want:   []string{"A", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractProtected(tt.readme)
			for _, id := range tt.want {
				assert.True(t, got.Contains(id), "expected %q in %v", id, got)
			}
		})
	}
}

func TestExtractProtected_NoSection(t *testing.T) {
	tests := []string{
		"",
		"# Title\n\nNo expectations here.",
		"### Expected Class\n\nbut no code block",
		"### Expected Class\n```python\nclass Foo:\n```",
		"## Usage\n```java\npublic class Hidden {}\n```",
	}

	for _, readme := range tests {
		got := ExtractProtected(readme)
		assert.Empty(t, got, "readme %q", readme)
	}
}

func TestProtectedSet_NilContains(t *testing.T) {
	var s ProtectedSet
	assert.False(t, s.Contains("anything"))
	assert.True(t, NewProtectedSet("a", "b").Contains("b"))
}
