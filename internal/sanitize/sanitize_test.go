package sanitize

import (
	"testing"
)

func TestCheckName(t *testing.T) {
	valid := []string{"report1.json", "a", "A-b_c.d", "0", "..."}
	for _, name := range valid {
		got, err := CheckName(name)
		if err != nil {
			t.Fatalf("expected %q valid, got %v", name, err)
		}
		if got != name {
			t.Fatalf("expected %q unchanged, got %q", name, got)
		}
	}

	invalid := []string{"", "../secret", "a b", "a/b", "a\\b", "näme", "a\x00b"}
	for _, name := range invalid {
		if _, err := CheckName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestValueEscapesStringLeaves(t *testing.T) {
	got := Value("<script>x</script>")
	if got != "&lt;script&gt;x&lt;/script&gt;" {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestValueDeepRecursion(t *testing.T) {
	in := map[string]any{
		"a": "<b>bold</b>",
		"n": float64(4),
		"nested": map[string]any{
			"deep": "<i>x</i>",
			"list": []any{"<u>y</u>", true},
		},
	}

	out, ok := Value(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map result, got %T", Value(in))
	}
	if out["a"] != "&lt;b&gt;bold&lt;/b&gt;" {
		t.Fatalf("top-level string not escaped: %v", out["a"])
	}
	if out["n"] != float64(4) {
		t.Fatalf("number changed: %v", out["n"])
	}
	nested := out["nested"].(map[string]any)
	if nested["deep"] != "&lt;i&gt;x&lt;/i&gt;" {
		t.Fatalf("nested string not escaped: %v", nested["deep"])
	}
	list := nested["list"].([]any)
	if list[0] != "&lt;u&gt;y&lt;/u&gt;" || list[1] != true {
		t.Fatalf("slice not handled: %v", list)
	}

	// Input must stay untouched.
	if in["a"] != "<b>bold</b>" {
		t.Fatal("input was mutated")
	}
}

func TestFieldStripsTags(t *testing.T) {
	cases := map[string]string{
		"<script>alert(1)</script>hello": "alert(1)hello",
		"plain text":                     "plain text",
		"  <b>bold</b>  ":                "bold",
		"a < b":                          "a < b",
	}
	for in, want := range cases {
		if got := Field(in); got != want {
			t.Fatalf("Field(%q) = %q, want %q", in, got, want)
		}
	}
}
