package titles

import (
	"testing"
)

func TestNormalizeStripsRegionAndExtension(t *testing.T) {
	got := Normalize("Super Mario World (USA).sfc")
	if got.Cleaned != "Super Mario World" {
		t.Errorf("Cleaned = %q, want %q", got.Cleaned, "Super Mario World")
	}
	if got.SequelNumber != "" {
		t.Errorf("SequelNumber = %q, want empty", got.SequelNumber)
	}
	if got.Subtitle != "" {
		t.Errorf("Subtitle = %q, want empty", got.Subtitle)
	}
	if got.Year != 0 {
		t.Errorf("Year = %d, want 0", got.Year)
	}
}

func TestNormalizeExtractsYearAndRomanSequel(t *testing.T) {
	got := Normalize("Final Fantasy VII (1997)")
	if got.Year != 1997 {
		t.Errorf("Year = %d, want 1997", got.Year)
	}
	if got.SequelNumber != "7" {
		t.Errorf("SequelNumber = %q, want %q", got.SequelNumber, "7")
	}
	if got.Cleaned != "Final Fantasy VII" {
		t.Errorf("Cleaned = %q, want %q", got.Cleaned, "Final Fantasy VII")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dump tags", "Zelda no Densetsu [!] [J]", "Zelda no Densetsu"},
		{"file size", "Big Game (6.01 GB)", "Big Game"},
		{"bare size", "Packed (123456789)", "Packed"},
		{"revision", "Sonic the Hedgehog (Rev 2)", "Sonic the Hedgehog"},
		{"version", "Tetris v1.0.3", "Tetris"},
		{"disc", "Riven (Disc 3 of 5)", "Riven"},
		{"update tag", "Ship Sim + Update v2.1", "Ship Sim"},
		{"trailing junk", "Half Game -_. ", "Half Game"},
		{"languages", "Metroid (En,Fr,De)", "Metroid"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Super Mario World (USA).sfc",
		"Pokémon Rouge (France)",
		"Castlevania - Symphony of the Night (USA) [!]",
		"Final Fantasy VII (1997)",
		"",
	}
	for _, raw := range inputs {
		once := Normalize(raw)
		twice := Normalize(once.Cleaned)
		if twice.Cleaned != once.Cleaned {
			t.Errorf("Normalize(%q): Cleaned not idempotent: %q vs %q", raw, once.Cleaned, twice.Cleaned)
		}
		if twice.Normalized != once.Normalized {
			t.Errorf("Normalize(%q): Normalized not idempotent: %q vs %q", raw, once.Normalized, twice.Normalized)
		}
	}
}

func TestNormalizeFoldsAccents(t *testing.T) {
	got := Normalize("Pokémon Stadium")
	if got.Normalized != "Pokemon Stadium" {
		t.Errorf("Normalized = %q, want %q", got.Normalized, "Pokemon Stadium")
	}
}

func TestSequelNumberExtraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Street Fighter 2", "2"},
		{"Mega Man X", "10"},
		{"Final Fantasy IX", "9"},
		{"Doom", ""},
		{"Quake III", "3"},
		{"Wipeout 2097", "2097"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in).SequelNumber; got != tt.want {
				t.Errorf("SequelNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSubtitleExtraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Castlevania: Symphony of the Night", "symphony of the night"},
		{"Shadowgate", ""},
		{"Game - 2", ""}, // bare number is not a subtitle
		{"Ico: Go", ""},  // too short
		{"A: The Saga", "the saga"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in).Subtitle; got != tt.want {
				t.Errorf("Subtitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestYearPrefersParenthesized(t *testing.T) {
	got := Normalize("Blade Runner 2049 (1997)")
	if got.Year != 1997 {
		t.Errorf("Year = %d, want parenthesized 1997", got.Year)
	}
}
