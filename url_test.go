package fetch_test

import (
	"testing"

	"github.com/outpostkit/fetch"
)

func TestURL(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "plain",
			got:  fetch.URL("https", "api.example.com", "/v1/items").String(),
			want: "https://api.example.com/v1/items",
		},
		{
			name: "with port",
			got:  fetch.URL("http", "localhost", "/health", fetch.WithPort(8080)).String(),
			want: "http://localhost:8080/health",
		},
		{
			name: "with query strings",
			got:  fetch.URL("https", "api.example.com", "/search", fetch.WithQueryStrings(map[string]string{"q": "golang"})).String(),
			want: "https://api.example.com/search?q=golang",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, tc.got)
			}
		})
	}
}
