package tui

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/agentwallet/internal/backend"
)

// typoTolerance is the edit distance under which a query word still matches a name word.
const typoTolerance = 2

// matchPayment reports whether every word of query matches the agent, client or market
// of p, either as a substring or within typoTolerance edits of a word.
func matchPayment(p backend.Payment, clientName, marketName, query string) bool {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{p.AgentNames, clientName, marketName}, " "))
	candidates := strings.Fields(hay)
	for _, w := range words {
		if !matchWord(w, hay, candidates) {
			return false
		}
	}
	return true
}

func matchWord(w, hay string, candidates []string) bool {
	if strings.Contains(hay, w) {
		return true
	}
	if len([]rune(w)) <= typoTolerance+1 {
		return false
	}
	for _, c := range candidates {
		if levenshtein.ComputeDistance(w, c) <= typoTolerance {
			return true
		}
	}
	return false
}
