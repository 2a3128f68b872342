package repository

import "testing"

func TestBuildLikeConditionByDialect(t *testing.T) {
	got := buildLikeConditionByDialect("sqlite", "email", " ", "display_name")
	want := `email LIKE ? ESCAPE '\' OR display_name LIKE ? ESCAPE '\'`
	if got != want {
		t.Fatalf("sqlite like condition mismatch, want %s got %s", want, got)
	}
	got = buildLikeConditionByDialect("postgres", "subject")
	want = `subject ILIKE ? ESCAPE '\'`
	if got != want {
		t.Fatalf("postgres like condition mismatch, want %s got %s", want, got)
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := likePattern(" 50%_off "); got != `%50\%\_off%` {
		t.Fatalf("unexpected pattern: %s", got)
	}
}

func TestRepeatArgs(t *testing.T) {
	args := repeatArgs("%x%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%x%" {
			t.Fatalf("args[%d] mismatch: %v", idx, arg)
		}
	}
}
