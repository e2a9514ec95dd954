package content

import (
	"errors"
	"testing"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name      string
		owner     string
		requester string
		want      bool
	}{
		{"owner", "user-1", "user-1", true},
		{"notOwner", "user-1", "user-2", false},
		{"blankOwner", "", "user-1", false},
		{"blankRequester", "user-1", "", false},
		{"bothBlank", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.owner, tc.requester); got != tc.want {
				t.Fatalf("Authorize(%q, %q) = %v, want %v", tc.owner, tc.requester, got, tc.want)
			}
		})
	}
}

func TestRequireOwner(t *testing.T) {
	if err := RequireOwner("user-1", "user-1"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := RequireOwner("user-1", "user-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden got %v", err)
	}
}
