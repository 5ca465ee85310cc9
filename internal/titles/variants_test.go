package titles

import (
	"reflect"
	"testing"
)

func TestSearchVariantsOrdering(t *testing.T) {
	got := Normalize("Castlevania: Symphony of the Night").SearchVariants
	want := []string{"Castlevania: Symphony of the Night", "Castlevania Symphony of the Night", "Castlevania"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchVariants = %v, want %v", got, want)
	}
}

func TestSearchVariantsRomanSwap(t *testing.T) {
	got := Normalize("Final Fantasy VII").SearchVariants
	want := []string{"Final Fantasy VII", "Final Fantasy 7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchVariants = %v, want %v", got, want)
	}
}

func TestSearchVariantsDedupCaseInsensitive(t *testing.T) {
	// Folding changes nothing here, so the normalized form must not repeat.
	got := Normalize("Ridge Racer").SearchVariants
	want := []string{"Ridge Racer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SearchVariants = %v, want %v", got, want)
	}
}

func TestSearchVariantsPreDashPrefix(t *testing.T) {
	got := Normalize("Castlevania - Symphony of the Night").SearchVariants
	if len(got) == 0 || got[len(got)-1] != "Castlevania" {
		t.Errorf("SearchVariants = %v, want pre-dash prefix %q last", got, "Castlevania")
	}
}

func TestSearchVariantsEmptyTitle(t *testing.T) {
	if got := Normalize("").SearchVariants; len(got) != 0 {
		t.Errorf("SearchVariants = %v, want none", got)
	}
}
