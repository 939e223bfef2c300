package cmd

import (
	"reflect"
	"testing"
)

func TestStringParam(t *testing.T) {
	params := map[string]interface{}{
		"present": "value",
		"number":  42,
	}
	if got := stringParam(params, "present", "def"); got != "value" {
		t.Errorf("expected value, got %q", got)
	}
	if got := stringParam(params, "missing", "def"); got != "def" {
		t.Errorf("expected default for missing key, got %q", got)
	}
	if got := stringParam(params, "number", "def"); got != "def" {
		t.Errorf("expected default for wrong type, got %q", got)
	}
}

func TestBoolParam(t *testing.T) {
	params := map[string]interface{}{
		"yes":    true,
		"string": "true",
	}
	if !boolParam(params, "yes", false) {
		t.Error("expected true")
	}
	if boolParam(params, "missing", false) {
		t.Error("expected default false for missing key")
	}
	if !boolParam(params, "string", true) {
		t.Error("expected default for wrong type")
	}
}

func TestStringSliceParam(t *testing.T) {
	params := map[string]interface{}{
		"values": []interface{}{"a", "b", 3, "c"},
		"scalar": "not-an-array",
	}
	got := stringSliceParam(params, "values")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if stringSliceParam(params, "missing") != nil {
		t.Error("expected nil for missing key")
	}
	if stringSliceParam(params, "scalar") != nil {
		t.Error("expected nil for non-array value")
	}
}
