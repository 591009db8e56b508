package account

import (
	"testing"

	"github.com/baechuer/account-service/internal/domain"
)

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code=%q, got nil", code)
	}
	if !domain.Is(err, code) {
		t.Fatalf("expected code=%q, got err=%v", code, err)
	}
}

func requireKind(t *testing.T, err error, kind domain.ErrKind) {
	t.Helper()
	if !domain.HasKind(err, kind) {
		t.Fatalf("expected kind=%q, got err=%v", kind, err)
	}
}

// codes returns the drained message codes in order.
func codes(ms []domain.Message) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Code)
	}
	return out
}

func requireCodes(t *testing.T, ms []domain.Message, want ...string) {
	t.Helper()
	got := codes(ms)
	if len(got) != len(want) {
		t.Fatalf("expected messages %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected messages %v, got %v", want, got)
		}
	}
}

func hasCode(ms []domain.Message, code string) bool {
	for _, m := range ms {
		if m.Code == code {
			return true
		}
	}
	return false
}
