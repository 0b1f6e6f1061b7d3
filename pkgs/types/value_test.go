package types

import (
	"testing"
)

func TestValueConstructors(t *testing.T) {
	if v := Str("x"); v.Kind != KindString || v.Raw != "x" {
		t.Errorf("Str: %+v", v)
	}
	if v := Num(-7); v.Kind != KindNumber || v.Raw != "-7" {
		t.Errorf("Num: %+v", v)
	}
	if v := BoolValue(true); v.Kind != KindBool || v.Raw != "1" {
		t.Errorf("BoolValue(true): %+v", v)
	}
	if v := BoolValue(false); v.Kind != KindBool || v.Raw != "0" {
		t.Errorf("BoolValue(false): %+v", v)
	}
	if v := Unknown(); !v.IsUnknown() {
		t.Errorf("Unknown: %+v", v)
	}
}

func TestValueInt64(t *testing.T) {
	n, err := Num(42).Int64()
	if err != nil || n != 42 {
		t.Errorf("Int64: %d, %v", n, err)
	}
	if _, err := Str("abc").Int64(); err == nil {
		t.Error("Int64 on non-numeric text should fail")
	}
}

func TestIsDigits(t *testing.T) {
	for _, s := range []string{"0", "7", "007", "123456789012345678"} {
		if !IsDigits(s) {
			t.Errorf("IsDigits(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "-1", "1.5", "1a", " 1", "a"} {
		if IsDigits(s) {
			t.Errorf("IsDigits(%q) = true, want false", s)
		}
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindString:  "string",
		KindNumber:  "number",
		KindBool:    "bool",
		KindArray:   "array",
		KindUnknown: "unknown",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestEnvironmentCloneIsIndependent(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", Str("1"))

	clone := env.Clone()
	clone.Define("a", Str("2"))
	clone.Define("b", Str("3"))

	if v, _ := env.Lookup("a"); v.Raw != "1" {
		t.Errorf("clone mutation leaked into parent: %+v", v)
	}
	if _, ok := env.Lookup("b"); ok {
		t.Error("clone addition leaked into parent")
	}
}

func TestEnvironmentMergeOverwrites(t *testing.T) {
	env := NewEnvironment()
	env.Define("a", Str("old"))

	other := NewEnvironment()
	other.Define("a", Str("new"))
	other.Define("b", Str("x"))

	env.Merge(other)

	if v, _ := env.Lookup("a"); v.Raw != "new" {
		t.Errorf("merge should overwrite: %+v", v)
	}
	if _, ok := env.Lookup("b"); !ok {
		t.Error("merge should add new keys")
	}
}
