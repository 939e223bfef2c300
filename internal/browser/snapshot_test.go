package browser

import (
	"strings"
	"testing"
)

func TestFormatSnapshotEmptyPage(t *testing.T) {
	table := newRefTable()
	info := PageInfo{Title: "Blank", URL: "about:blank"}

	text, boxes := formatSnapshot(nil, info, table)

	if !strings.HasPrefix(text, "[empty page]\n") {
		t.Errorf("expected [empty page] sentinel, got:\n%s", text)
	}
	if !strings.Contains(text, "Page title: Blank") {
		t.Errorf("expected title trailer, got:\n%s", text)
	}
	if !strings.Contains(text, "Page URL: about:blank") {
		t.Errorf("expected URL trailer, got:\n%s", text)
	}
	if len(boxes) != 0 {
		t.Errorf("expected no boxes for empty page, got %d", len(boxes))
	}
}

func TestFormatSnapshotSingleButton(t *testing.T) {
	table := newRefTable()
	root := &Node{Role: "button", Name: "Go", Locator: "#go"}
	info := PageInfo{Title: "Example", URL: "https://example.com/"}

	text, _ := formatSnapshot(root, info, table)

	want := "- button \"Go\" [ref=e1]\n"
	if !strings.HasPrefix(text, want) {
		t.Errorf("expected line %q, got:\n%s", want, text)
	}

	loc, err := table.resolve("e1")
	if err != nil {
		t.Fatalf("resolve(e1) failed: %v", err)
	}
	if loc != "#go" {
		t.Errorf("expected #go, got %s", loc)
	}
}

func TestFormatSnapshotTree(t *testing.T) {
	root := &Node{
		Role: "main",
		Children: []Node{
			{Role: "heading", Name: "Welcome", Level: 1, Locator: "h1"},
			{
				Role: "form",
				Children: []Node{
					{Role: "textbox", Name: "Email", Value: "a@b.c", Required: true, Focused: true, Locator: "#email"},
					{Role: "checkbox", Name: "Remember me", Checked: true, Locator: "#remember"},
					{Role: "button", Name: "Sign in", Disabled: true, Locator: "#signin"},
				},
			},
		},
	}
	table := newRefTable()
	text, boxes := formatSnapshot(root, PageInfo{Title: "Login", URL: "https://example.com/login"}, table)

	wantLines := []string{
		`- main`,
		`  - heading "Welcome" [level=1] [ref=e1]`,
		`  - form`,
		`    - textbox "Email" [value="a@b.c"] [required, focused] [ref=e2]`,
		`    - checkbox "Remember me" [checked] [ref=e3]`,
		`    - button "Sign in" [disabled] [ref=e4]`,
	}
	gotLines := strings.Split(text, "\n")
	for i, want := range wantLines {
		if i >= len(gotLines) {
			t.Fatalf("output truncated at line %d, want %q", i, want)
		}
		if gotLines[i] != want {
			t.Errorf("line %d: want %q, got %q", i, want, gotLines[i])
		}
	}

	// Refs are issued in emission order, one box per ref.
	if len(boxes) != 4 {
		t.Fatalf("expected 4 boxes, got %d", len(boxes))
	}
	if boxes[0].ref != "e1" || boxes[3].ref != "e4" {
		t.Errorf("expected boxes e1..e4 in order, got %s..%s", boxes[0].ref, boxes[3].ref)
	}
}

func TestFormatSnapshotInvalidatesOldRefs(t *testing.T) {
	table := newRefTable()
	first := &Node{Role: "button", Name: "One", Locator: "#one"}
	second := &Node{Role: "link", Name: "Two", Locator: "#two"}
	info := PageInfo{Title: "T", URL: "u"}

	formatSnapshot(first, info, table)
	formatSnapshot(second, info, table)

	loc, err := table.resolve("e1")
	if err != nil {
		t.Fatalf("resolve(e1) failed: %v", err)
	}
	if loc != "#two" {
		t.Errorf("expected e1 to point at the new snapshot's element, got %s", loc)
	}
	if _, err := table.resolve("e2"); err == nil {
		t.Error("expected e2 from the first snapshot to be gone")
	}
}

func TestFormatSnapshotNoLocatorNoRef(t *testing.T) {
	root := &Node{
		Role: "list",
		Children: []Node{
			{Role: "listitem", Name: "plain text"},
		},
	}
	table := newRefTable()
	text, boxes := formatSnapshot(root, PageInfo{}, table)

	if strings.Contains(text, "[ref=") {
		t.Errorf("expected no refs for nodes without locators, got:\n%s", text)
	}
	if table.size() != 0 || len(boxes) != 0 {
		t.Errorf("expected empty ref table and boxes, got size=%d boxes=%d", table.size(), len(boxes))
	}
}

func TestStateFlagsOrder(t *testing.T) {
	n := &Node{Disabled: true, Checked: true, Expanded: true, Required: true, Focused: true}
	got := strings.Join(stateFlags(n), ", ")
	want := "disabled, checked, expanded, required, focused"
	if got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}
