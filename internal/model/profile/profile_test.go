package profile

import (
	"strings"
	"testing"
)

func TestSeedProfilesAreValid(t *testing.T) {
	for _, p := range Seed() {
		if err := p.Validate(); err != nil {
			t.Fatalf("seed profile %s invalid: %v", p.ID, err)
		}
	}
}

func TestAdminInitialCategory(t *testing.T) {
	store := NewMemoryStore(Seed())
	admin, ok := store.FindByID("admin")
	if !ok {
		t.Fatal("expected admin profile")
	}
	if got := admin.InitialCategory(); got != "Moderación" {
		t.Fatalf("expected Moderación, got %s", got)
	}

	coach, _ := store.FindByID("coach")
	if got := coach.InitialCategory(); got != "Análisis" {
		t.Fatalf("expected first category fallback, got %s", got)
	}
}

func TestTemplates(t *testing.T) {
	var p Profile
	if got := p.PendingContent("Sancionar Usuario"); got != "Ejecutando acción: Sancionar Usuario..." {
		t.Fatalf("unexpected pending content %q", got)
	}
	if got := p.ResultFallback("Sancionar Usuario"); got != "Acción completada: Sancionar Usuario" {
		t.Fatalf("unexpected result fallback %q", got)
	}
	if p.Failure() == "" {
		t.Fatal("expected default failure reply")
	}
}

func TestSummaryHidesScriptedData(t *testing.T) {
	store := NewMemoryStore(Seed())
	admin, _ := store.FindByID("admin")

	summary := admin.Summary()
	if len(summary.Categories) != 4 {
		t.Fatalf("expected 4 categories, got %v", summary.Categories)
	}
	if summary.DefaultCategory != "Moderación" {
		t.Fatalf("unexpected default category %s", summary.DefaultCategory)
	}
}

func TestParseCatalogue(t *testing.T) {
	const data = `
[[profiles]]
id = "front-desk"
name = "Recepción"
greeting = "Hola"
fallback_reply = "No entendí"
default_category = "Reservas"

  [[profiles.replies]]
  intent = "court"
  keywords = ["cancha", "pista"]
  reply = "Hay pistas libres a las 18h."

  [[profiles.categories]]
  name = "Reservas"

    [[profiles.categories.actions]]
    kind = "book_court"
    label = "Reservar Cancha"

  [profiles.action_results]
  book_court = "Cancha reservada."
`
	profiles, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}

	p := profiles[0]
	if p.ID != "front-desk" || p.DefaultCategory != "Reservas" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if len(p.Replies) != 1 || p.Replies[0].Keywords[1] != "pista" {
		t.Fatalf("unexpected replies: %+v", p.Replies)
	}
	if p.ActionResults["book_court"] != "Cancha reservada." {
		t.Fatalf("unexpected action results: %+v", p.ActionResults)
	}

	registry, err := p.Registry()
	if err != nil {
		t.Fatalf("Registry err: %v", err)
	}
	def, ok := registry.Resolve("book_court")
	if !ok || def.Label != "Reservar Cancha" {
		t.Fatalf("unexpected definition %+v", def)
	}
}

func TestParseRejectsUnknownDefaultCategory(t *testing.T) {
	const data = `
[[profiles]]
id = "broken"
greeting = "Hola"
default_category = "Nada"
`
	_, err := Parse(data)
	if err == nil || !strings.Contains(err.Error(), "default category") {
		t.Fatalf("expected default category error, got %v", err)
	}
}

func TestOpenStoreDefaultsToSeed(t *testing.T) {
	store, err := OpenStore("")
	if err != nil {
		t.Fatalf("OpenStore err: %v", err)
	}
	if len(store.List()) != len(Seed()) {
		t.Fatalf("expected seed profiles, got %d", len(store.List()))
	}

	if _, err := OpenStore("testdata/does-not-exist.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
