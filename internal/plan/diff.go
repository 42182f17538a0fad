package plan

import (
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffAgainstPrior produces a unified diff between the founder's prior
// plan file and a freshly rendered plan. An empty string means the plans
// are identical.
func DiffAgainstPrior(priorPath, rendered string) (string, error) {
	prior, err := os.ReadFile(priorPath)
	if err != nil {
		return "", fmt.Errorf("reading prior plan: %w", err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(prior)),
		B:        difflib.SplitLines(rendered),
		FromFile: priorPath,
		ToFile:   "new plan",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diffing plans: %w", err)
	}
	return strings.TrimRight(text, "\n"), nil
}
