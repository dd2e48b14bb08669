package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scout/internal/types"
)

func TestDefault_IsValid(t *testing.T) {
	rs := Default()
	require.NotEmpty(t, rs)
	assert.NoError(t, Validate(rs))
}

func TestDefault_ContainsCoreSignals(t *testing.T) {
	phrases := make(map[string]int)
	for _, r := range Default() {
		phrases[r.Phrase] = r.Weight
	}

	// The two headline incident phrases carry maximum weight.
	assert.Equal(t, 5, phrases["ticket scalping"])
	assert.Equal(t, 5, phrases["bot attack"])
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []types.KeywordRule
	}{
		{"empty table", nil},
		{"empty phrase", []types.KeywordRule{{Phrase: "", Category: types.CategorySignal, Weight: 3}}},
		{"weight too low", []types.KeywordRule{{Phrase: "x", Category: types.CategorySignal, Weight: 0}}},
		{"weight too high", []types.KeywordRule{{Phrase: "x", Category: types.CategorySignal, Weight: 6}}},
		{"bad category", []types.KeywordRule{{Phrase: "x", Category: "spam", Weight: 3}}},
		{"duplicate phrase", []types.KeywordRule{
			{Phrase: "x", Category: types.CategorySignal, Weight: 3},
			{Phrase: "x", Category: types.CategoryCost, Weight: 2},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(tt.rules))
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `{
		"version": 1,
		"rules": [
			{"phrase": "bot attack", "category": "signal", "weight": 5, "tags": ["bot-mitigation"]},
			{"phrase": "chargeback", "category": "cost", "weight": 3}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "bot attack", rs[0].Phrase)
	assert.Equal(t, types.CategoryCost, rs[1].Category)
}

func TestLoadFile_RejectsInvalidWeight(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `{"version": 1, "rules": [{"phrase": "x", "category": "signal", "weight": 9}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
