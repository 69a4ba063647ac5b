package errors

import "testing"

func TestCompilerCoreErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		code string
		pred func(string) bool
	}{
		{"module graph", MGR002, IsModGraphError},
		{"mir", MIR001, IsMirError},
		{"contracts", CTR002, IsContractError},
		{"patterns", PAT001, IsPatternError},
		{"codegen", CDG003, IsCodegenError},
		{"concurrency", CNC001, IsConcurrencyError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.code) {
				t.Errorf("predicate for %s rejected its own code %s", tt.name, tt.code)
			}
			if tt.pred(PAR001) {
				t.Errorf("predicate for %s wrongly accepted %s", tt.name, PAR001)
			}
		})
	}
}

func TestPatternErrorCarriesWitnessesDescription(t *testing.T) {
	info, exists := GetErrorInfo(PAT001)
	if !exists {
		t.Fatal("PAT001 missing from registry")
	}
	if info.Phase != "patterns" || info.Category != "exhaustiveness" {
		t.Errorf("unexpected PAT001 classification: %+v", info)
	}
}
