package common

import "testing"

func TestContainsAnyFold(t *testing.T) {
	tests := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Bad Request. The value for variable API_KEY is not registered.", []string{"api_key"}, true},
		{"Bad Request. Variable series_id is not set.", []string{"api_key", "api key"}, false},
		{"", []string{"x"}, false},
	}
	for _, tt := range tests {
		if got := ContainsAnyFold(tt.s, tt.subs...); got != tt.want {
			t.Errorf("ContainsAnyFold(%q, %v) = %v, want %v", tt.s, tt.subs, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  Nonfarm \n\t Payrolls  "); got != "Nonfarm Payrolls" {
		t.Errorf("got %q", got)
	}
}
