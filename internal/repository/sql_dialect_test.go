package repository

import (
	"strings"
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildLikeCondition("sqlite", []string{"title", "excerpt"}, []string{"tags"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	if !strings.Contains(condition, "title LIKE ?") {
		t.Fatalf("condition should contain title LIKE, got %s", condition)
	}
	if !strings.Contains(condition, "EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value LIKE ? ESCAPE '\\')") {
		t.Fatalf("condition should match tags per element, got %s", condition)
	}
	if strings.Contains(condition, "CAST(") {
		t.Fatalf("condition should not search serialized tags, got %s", condition)
	}
}

func TestJSONElementLikeExprPostgres(t *testing.T) {
	got := jsonElementLikeExpr("postgres", "tags")
	want := "EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags::jsonb) AS elem(value) WHERE elem.value ILIKE ? ESCAPE '\\')"
	if got != want {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestBuildLikeConditionPostgresUsesILike(t *testing.T) {
	condition, _ := buildLikeCondition("postgres", []string{"title"}, nil)
	if !strings.Contains(condition, "title ILIKE ?") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestJSONArrayContainsCondition(t *testing.T) {
	if got := jsonArrayContainsCondition("sqlite", "tags"); !strings.Contains(got, "json_each(tags)") {
		t.Fatalf("sqlite condition should use json_each, got %s", got)
	}
	if got := jsonArrayContainsCondition("postgres", "tags"); got != "tags::jsonb @> jsonb_build_array(?::text)" {
		t.Fatalf("postgres condition mismatch, got %s", got)
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	if got := likePattern("50%_off"); got != `%50\%\_off%` {
		t.Fatalf("like pattern want %%50\\%%\\_off%% got %s", got)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
