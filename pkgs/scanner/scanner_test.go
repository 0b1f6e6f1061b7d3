package scanner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanBlockTag(t *testing.T) {
	content := `<p>before</p><xtml>@var a = 1;</xtml><p>after</p>`

	tags := Scan(content)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}

	want := Tag{
		Full:       `<xtml>@var a = 1;</xtml>`,
		Head:       `<xtml>`,
		Content:    `@var a = 1;`,
		Attributes: map[string]string{},
	}
	if diff := cmp.Diff(want, tags[0]); diff != "" {
		t.Errorf("tag mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSelfClosingTag(t *testing.T) {
	content := `<xtml define="title" value="Home" type="string" />`

	tags := Scan(content)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}

	tag := tags[0]
	if !tag.SelfClosing {
		t.Error("expected self-closing tag")
	}
	if tag.Content != "" {
		t.Errorf("expected empty content, got %q", tag.Content)
	}
	wantAttrs := map[string]string{"define": "title", "value": "Home", "type": "string"}
	if diff := cmp.Diff(wantAttrs, tag.Attributes); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestScanMixedTagsInOrder(t *testing.T) {
	content := `<xtml include="head.xtml" /><xtml>@print("a");</xtml><xtml define="x" value="1" />`

	tags := Scan(content)
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if !tags[0].SelfClosing || tags[0].Attributes["include"] != "head.xtml" {
		t.Errorf("unexpected first tag: %+v", tags[0])
	}
	if tags[1].SelfClosing || tags[1].Content != `@print("a");` {
		t.Errorf("unexpected second tag: %+v", tags[1])
	}
	if !tags[2].SelfClosing || tags[2].Attributes["define"] != "x" {
		t.Errorf("unexpected third tag: %+v", tags[2])
	}
}

func TestScanNonGreedyBlockMatching(t *testing.T) {
	content := `<xtml>@var a = 1;</xtml>middle<xtml>@var b = 2;</xtml>`

	tags := Scan(content)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Content != `@var a = 1;` {
		t.Errorf("first block matched greedily: %q", tags[0].Content)
	}
	if tags[1].Content != `@var b = 2;` {
		t.Errorf("unexpected second block: %q", tags[1].Content)
	}
}

func TestScanMultilineBlock(t *testing.T) {
	content := "<xtml>\n@var a = 1;\n@print(a);\n</xtml>"

	tags := Scan(content)
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Content != "\n@var a = 1;\n@print(a);\n" {
		t.Errorf("unexpected content: %q", tags[0].Content)
	}
}

func TestScanNoTags(t *testing.T) {
	if tags := Scan(`<p>plain html</p>`); len(tags) != 0 {
		t.Errorf("expected no tags, got %d", len(tags))
	}
}

func TestParseAttributes(t *testing.T) {
	head := `<xtml include="partials/nav.xtml" resolve="local" param-title="Site" />`

	want := map[string]string{
		"include":     "partials/nav.xtml",
		"resolve":     "local",
		"param-title": "Site",
	}
	if diff := cmp.Diff(want, ParseAttributes(head)); diff != "" {
		t.Errorf("attributes mismatch (-want +got):\n%s", diff)
	}
}
