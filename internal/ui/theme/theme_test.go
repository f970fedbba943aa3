package theme

import "testing"

func TestBuiltinThemesRegistered(t *testing.T) {
	got := Available()
	want := []string{"mono", "nord", "tokyonight"}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Available() = %v, want %v", got, want)
		}
	}
}

func TestDefaultIsFirstRegistered(t *testing.T) {
	SetTheme("tokyonight")
	if Current().Name != "tokyonight" {
		t.Fatalf("expected tokyonight, got %q", Current().Name)
	}
}

func TestSetThemeUnknownKeepsCurrent(t *testing.T) {
	SetTheme("nord")
	t.Cleanup(func() { SetTheme("tokyonight") })
	if SetTheme("nope") {
		t.Fatal("expected unknown theme to be rejected")
	}
	if Current().Name != "nord" {
		t.Fatalf("current changed to %q", Current().Name)
	}
}

func TestCycleThemeWraps(t *testing.T) {
	SetTheme("tokyonight")
	t.Cleanup(func() { SetTheme("tokyonight") })
	if got := CycleTheme(); got != "mono" {
		t.Fatalf("cycle from tokyonight = %q, want mono", got)
	}
	if got := CycleTheme(); got != "nord" {
		t.Fatalf("cycle from mono = %q, want nord", got)
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, name := range Available() {
		SetTheme(name)
		th := Current()
		for label, c := range map[string]string{
			"Primary":   th.Primary.Dark,
			"Error":     th.Error.Dark,
			"Text":      th.Text.Light,
			"Selection": th.Selection.Light,
			"Border":    th.Border.Dark,
		} {
			if c == "" {
				t.Errorf("%s: %s is empty", name, label)
			}
		}
	}
	SetTheme("tokyonight")
}
