package bargerr

import (
	"errors"
	"testing"
)

func TestGrammarErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *GrammarError
		want string
	}{
		{
			name: "no line",
			err:  NewGrammarErrorf("unknown transform 'builtin.nope'"),
			want: "error: unknown transform 'builtin.nope'",
		},
		{
			name: "with line",
			err:  NewGrammarErrorf("unknown transform 'builtin.nope'").WithLine(12),
			want: "12: error: unknown transform 'builtin.nope'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInternalErrorFormatting(t *testing.T) {
	err := NewInternalErrorf("transform registry node %q is a namespace, not a function", "builtin")
	want := `internal error: transform registry node "builtin" is a namespace, not a function`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	ge := NewGrammarError(cause)
	if !errors.Is(ge, cause) {
		t.Errorf("errors.Is(GrammarError, cause) = false, want true")
	}
	ie := NewInternalError(cause)
	if !errors.Is(ie, cause) {
		t.Errorf("errors.Is(InternalError, cause) = false, want true")
	}
}
