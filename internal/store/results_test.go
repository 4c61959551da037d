package store

import "testing"

func TestSearchResultsIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		results *SearchResults
		want    bool
	}{
		{"no documents no error", &SearchResults{}, true},
		{"with documents", &SearchResults{Documents: []string{"doc"}}, false},
		{"error set", &SearchResults{Err: "Search error: boom"}, false},
		{"error and documents", &SearchResults{Err: "x", Documents: []string{"doc"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.results.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorResults(t *testing.T) {
	r := errorResults("No course found matching '%s'", "Ghost")
	if r.Err != "No course found matching 'Ghost'" {
		t.Errorf("Err = %q", r.Err)
	}
	if r.IsEmpty() {
		t.Error("error results must not report empty")
	}
}
