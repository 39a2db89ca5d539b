package markdown_test

import (
	"strings"
	"testing"

	"focusforge/internal/platform/markdown"
)

func TestRenderFrontmatter(t *testing.T) {
	t.Parallel()

	content, err := markdown.RenderFrontmatter(map[string]any{
		"result": "victory",
		"max_hp": 1000,
	}, "# Report\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("missing opening fence: %q", content)
	}
	for _, want := range []string{"result: victory\n", "max_hp: 1000\n", "\n---\n", "# Report\n"} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in:\n%s", want, content)
		}
	}
	// Body must be separated from the closing fence.
	if strings.Contains(content, "---\n# Report") {
		t.Fatalf("body glued to fence:\n%s", content)
	}
}
