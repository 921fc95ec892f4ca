// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	t.Run("new i18n provider with empty locale string succeeds", func(t *testing.T) {
		provider, err := New("")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if provider == nil {
			t.Fatal("expected i18n provider to be non-nil")
		}
	})
	t.Run("english messages are returned untranslated", func(t *testing.T) {
		provider, err := New("en")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Maghrib"); got != "Maghrib" {
			t.Errorf("expected %q, got %q", "Maghrib", got)
		}
	})
	t.Run("german prayer labels are translated", func(t *testing.T) {
		provider, err := New("de-DE")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		tests := map[string]string{
			"Fajr":              "Fadschr",
			"Sunrise":           "Sonnenaufgang",
			"Isha":              "Ischa",
			"Location required": "Standort benötigt",
		}
		for msg, want := range tests {
			if got := provider.Get(msg); got != want {
				t.Errorf("expected %q to be translated to %q, got %q", msg, want, got)
			}
		}
	})
	t.Run("unknown message is returned as is", func(t *testing.T) {
		provider, err := New("de")
		if err != nil {
			t.Fatalf("failed to create i18n provider: %s", err)
		}
		if got := provider.Get("Tahajjud"); got != "Tahajjud" {
			t.Errorf("expected %q, got %q", "Tahajjud", got)
		}
	})
}

func TestLanguage(t *testing.T) {
	if got := Language("de-DE"); got != language.MustParse("de-DE") {
		t.Errorf("expected de-DE, got %s", got)
	}
	if got := Language("en"); got != language.English {
		t.Errorf("expected en, got %s", got)
	}
}
