package usecase

import "testing"

func TestCommonPrefixTokens(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"single shared token", "DOLIPRANE 500MG COMPRIME", "DOLIPRANE 1000MG COMPRIME", "DOLIPRANE"},
		{"two shared tokens", "GEL DOUCHE AMANDE", "GEL DOUCHE MIEL", "GEL DOUCHE"},
		{"case-insensitive, upper-cased result", "Gel douche Amande", "GEL DOUCHE miel", "GEL DOUCHE"},
		{"no shared token", "SMECTA ORANGE", "DOLIPRANE 500MG", ""},
		{"identical names", "BIAFINE EMULSION", "BIAFINE EMULSION", "BIAFINE EMULSION"},
		{"one name is a prefix of the other", "ARNICA", "ARNICA 9CH GRANULES", "ARNICA"},
		{"mismatch stops the scan even if later tokens realign", "A X C D", "A Y C D", "A"},
		{"extra whitespace is ignored", "  EFFERALGAN   500MG ", "EFFERALGAN\t500MG SANS SUCRE", "EFFERALGAN 500MG"},
		{"empty name", "", "DOLIPRANE", ""},
		{"both empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommonPrefixTokens(tt.a, tt.b); got != tt.want {
				t.Errorf("CommonPrefixTokens(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCommonPrefixTokens_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"GEL DOUCHE AMANDE", "gel douche"},
		{"DOLIPRANE 500MG", "DOLIPRANE 1000MG"},
		{"X", "Y"},
	}
	for _, p := range pairs {
		if CommonPrefixTokens(p[0], p[1]) != CommonPrefixTokens(p[1], p[0]) {
			t.Errorf("CommonPrefixTokens not symmetric for %q / %q", p[0], p[1])
		}
	}
}
