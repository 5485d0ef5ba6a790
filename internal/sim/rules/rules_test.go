package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func loadTestRules(t *testing.T) *Ruleset {
	t.Helper()
	r, err := Load("testdata/rules.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return r
}

func TestLoad_PopulatesTables(t *testing.T) {
	r := loadTestRules(t)

	if r.Name != "test" || r.Version != 1 {
		t.Fatalf("header = %s/%d", r.Name, r.Version)
	}
	if r.Digest == "" {
		t.Fatalf("no file digest computed")
	}
	if len(r.Archetypes) != 4 {
		t.Fatalf("archetypes = %d, want 4", len(r.Archetypes))
	}

	base := r.Archetypes["BASE"]
	if base.Name != "BASE" {
		t.Fatalf("archetype name not backfilled: %q", base.Name)
	}
	if !base.Has(CapBuild) || !base.Has(CapRepair) || base.Has(CapAttack) {
		t.Fatalf("base capability table wrong")
	}
	if !base.CanBuild("WORKER") || base.CanBuild("TOWER") {
		t.Fatalf("base build list wrong")
	}
	if r.Archetypes["FIGHTER"].CanBuild("WORKER") {
		t.Fatalf("builder check ignores the build capability")
	}
}

func TestLoad_DigestTracksContent(t *testing.T) {
	r1 := loadTestRules(t)

	raw, err := os.ReadFile("testdata/rules.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	edited := strings.Replace(string(raw), "base_rate: 10", "base_rate: 11", 1)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r2, err := Load(path)
	if err != nil {
		t.Fatalf("load edited: %v", err)
	}
	if r1.Digest == r2.Digest {
		t.Fatalf("digest identical for different rule content")
	}
}

func TestMaxHealth_ScalesByLevel(t *testing.T) {
	r := loadTestRules(t)
	w := r.Archetypes["WORKER"]

	cases := []struct{ level, want int }{
		{0, 30}, // clamped up to level 1
		{1, 30},
		{2, 36},
		{9, 36}, // clamped down to max level
	}
	for _, tc := range cases {
		if got := r.MaxHealth(w, tc.level); got != tc.want {
			t.Fatalf("MaxHealth(level %d) = %d, want %d", tc.level, got, tc.want)
		}
	}
}

func TestArchetypeNames_Sorted(t *testing.T) {
	r := loadTestRules(t)
	names := r.ArchetypeNames()
	want := []string{"BASE", "FIGHTER", "TOWER", "WORKER"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestLoad_RejectsBadFiles(t *testing.T) {
	raw, err := os.ReadFile("testdata/rules.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	good := string(raw)

	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"bad_heat_charge",
			func(s string) string { return strings.Replace(s, "heat_charge: after", "heat_charge: during", 1) },
			"heat_charge",
		},
		{
			"unknown_capability",
			func(s string) string { return strings.Replace(s, "[mine, build, repair, upgrade]", "[mine, fly]", 1) },
			"capability",
		},
		{
			"builds_unknown_archetype",
			func(s string) string { return strings.Replace(s, "builds: [TOWER]", "builds: [CASTLE]", 1) },
			"unknown archetype",
		},
		{
			"missing_name",
			func(s string) string { return strings.Replace(s, "name: test\n", "", 1) },
			"name",
		},
		{
			"health_permille_short",
			func(s string) string { return strings.Replace(s, "health_permille: [1000, 1200]", "health_permille: [1000]", 1) },
			"health_permille",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tc.mutate(good)), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("bad ruleset accepted")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	raw, err := os.ReadFile("testdata/rules.yaml")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(raw)
	s = strings.Replace(s, "  max_length: 16\n", "", 1)
	s = strings.Replace(s, "prototype_health_permille: 500\n", "", 1)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if r.Indicator.MaxLength != 64 {
		t.Fatalf("indicator default = %d, want 64", r.Indicator.MaxLength)
	}
	if r.PrototypeHealthPermille != 1000 {
		t.Fatalf("prototype health default = %d, want 1000", r.PrototypeHealthPermille)
	}
}
