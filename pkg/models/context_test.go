package models

import (
	"testing"
)

func TestStage_Valid(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		want  bool
	}{
		{"idea is valid", StageIdea, true},
		{"pre-revenue is valid", StagePreRevenue, true},
		{"early-revenue is valid", StageEarlyRevenue, true},
		{"scaling is valid", StageScaling, true},
		{"empty string is invalid", Stage(""), false},
		{"unknown stage is invalid", Stage("unicorn"), false},
		{"underscore variant is invalid", Stage("pre_revenue"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stage.Valid(); got != tt.want {
				t.Errorf("Stage(%q).Valid() = %v, want %v", tt.stage, got, tt.want)
			}
		})
	}
}

func TestParseStage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Stage
		wantErr bool
	}{
		{"exact match", "idea", StageIdea, false},
		{"uppercase", "SCALING", StageScaling, false},
		{"underscores tolerated", "pre_revenue", StagePreRevenue, false},
		{"surrounding whitespace", "  early-revenue ", StageEarlyRevenue, false},
		{"unknown stage", "series-z", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFounderContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     FounderContext
		wantErr bool
	}{
		{
			"complete context",
			FounderContext{Idea: "B2B SaaS for dental clinics", Stage: StagePreRevenue},
			false,
		},
		{
			"missing idea",
			FounderContext{Stage: StageIdea},
			true,
		},
		{
			"whitespace idea",
			FounderContext{Idea: "   ", Stage: StageIdea},
			true,
		},
		{
			"invalid stage",
			FounderContext{Idea: "marketplace", Stage: Stage("ipo")},
			true,
		},
		{
			"constraints are optional",
			FounderContext{Idea: "marketplace", Stage: StageScaling, Constraints: nil},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFounderContext_Keywords(t *testing.T) {
	ctx := FounderContext{
		Idea:        "B2B SaaS for dental clinics",
		Industry:    "healthcare",
		Stage:       StagePreRevenue,
		Constraints: []string{"solo founder", "no paid ads"},
	}

	got := ctx.Keywords()

	want := []string{"pre-revenue", "b2b", "saas", "dental", "clinics", "healthcare", "solo", "founder", "no", "paid", "ads"}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Keywords() = %v, missing %q", got, w)
		}
	}

	// No duplicates even when tokens repeat across fields.
	seen := make(map[string]int)
	for _, g := range got {
		seen[g]++
	}
	for tok, n := range seen {
		if n > 1 {
			t.Errorf("Keywords() contains %q %d times, want 1", tok, n)
		}
	}
}

func TestFounderContext_KeywordsStripPunctuation(t *testing.T) {
	ctx := FounderContext{Idea: "Marketplace, for chefs!", Stage: StageIdea}

	got := ctx.Keywords()
	for _, g := range got {
		if g == "marketplace," || g == "chefs!" {
			t.Errorf("Keywords() = %v, punctuation not stripped", got)
		}
	}
}
