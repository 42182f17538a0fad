package models

import (
	"testing"
)

func TestRouterDecision_PersonaIDs(t *testing.T) {
	decision := RouterDecision{
		Selected: []Selection{
			{PersonaID: "product", Score: 3},
			{PersonaID: "sales", Score: 2},
			{PersonaID: "growth", Score: 1},
		},
	}

	got := decision.PersonaIDs()
	want := []string{"product", "sales", "growth"}
	if len(got) != len(want) {
		t.Fatalf("PersonaIDs() returned %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PersonaIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRouterDecision_Validate(t *testing.T) {
	tests := []struct {
		name     string
		decision RouterDecision
		max      int
		wantErr  bool
	}{
		{
			name: "single selection",
			decision: RouterDecision{
				Selected: []Selection{{PersonaID: "product", Score: 2}},
			},
			max:     4,
			wantErr: false,
		},
		{
			name: "at the cap",
			decision: RouterDecision{
				Selected: []Selection{
					{PersonaID: "product"},
					{PersonaID: "sales"},
					{PersonaID: "fundraising"},
					{PersonaID: "growth"},
				},
			},
			max:     4,
			wantErr: false,
		},
		{
			name:     "empty selection",
			decision: RouterDecision{},
			max:      4,
			wantErr:  true,
		},
		{
			name: "over the cap",
			decision: RouterDecision{
				Selected: []Selection{
					{PersonaID: "product"},
					{PersonaID: "sales"},
					{PersonaID: "fundraising"},
				},
			},
			max:     2,
			wantErr: true,
		},
		{
			name: "duplicate persona",
			decision: RouterDecision{
				Selected: []Selection{
					{PersonaID: "product"},
					{PersonaID: "product"},
				},
			},
			max:     4,
			wantErr: true,
		},
		{
			name: "empty persona id",
			decision: RouterDecision{
				Selected: []Selection{{PersonaID: ""}},
			},
			max:     4,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.Validate(tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%d) error = %v, wantErr %v", tt.max, err, tt.wantErr)
			}
		})
	}
}
