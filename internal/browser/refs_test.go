package browser

import (
	"errors"
	"testing"
)

func TestRefTableAssignAndResolve(t *testing.T) {
	table := newRefTable()

	ref1 := table.assign("#login")
	ref2 := table.assign("button.submit")

	if ref1 != "e1" || ref2 != "e2" {
		t.Errorf("expected e1, e2, got %s, %s", ref1, ref2)
	}

	loc, err := table.resolve("e1")
	if err != nil {
		t.Fatalf("resolve(e1) failed: %v", err)
	}
	if loc != "#login" {
		t.Errorf("expected #login, got %s", loc)
	}

	if table.size() != 2 {
		t.Errorf("expected size 2, got %d", table.size())
	}
}

func TestRefTableResolveUnknown(t *testing.T) {
	table := newRefTable()
	table.assign("#login")

	_, err := table.resolve("e99")
	if err == nil {
		t.Fatal("expected error for unknown ref")
	}

	var notFound *RefNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected RefNotFoundError, got %T", err)
	}
	if notFound.Ref != "e99" {
		t.Errorf("expected ref e99 in error, got %s", notFound.Ref)
	}
}

func TestRefTableResetRestartsNumbering(t *testing.T) {
	table := newRefTable()
	table.assign("#a")
	table.assign("#b")
	table.assign("#c")

	table.reset()

	if table.size() != 0 {
		t.Errorf("expected empty table after reset, got size %d", table.size())
	}
	if _, err := table.resolve("e1"); err == nil {
		t.Error("expected stale ref to fail resolution after reset")
	}

	ref := table.assign("#d")
	if ref != "e1" {
		t.Errorf("expected numbering to restart at e1, got %s", ref)
	}
}
