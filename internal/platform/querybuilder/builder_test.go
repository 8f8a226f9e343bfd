package querybuilder

import (
	"slices"
	"testing"
)

func TestToSQL(t *testing.T) {
	tests := []struct {
		name      string
		build     func() (string, []any, error)
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select with order and limit",
			build: Select("league_id").From("league_members").
				Where(Eq("user_id", "u1"), IsNull("left_at")).
				OrderBy("created_at DESC", "id DESC").
				Limit(1).
				ToSQL,
			wantQuery: "SELECT league_id FROM league_members WHERE user_id = $1 AND left_at IS NULL ORDER BY created_at DESC, id DESC LIMIT 1",
			wantArgs:  []any{"u1"},
		},
		{
			name: "multi-row insert",
			build: InsertInto("draft_picks").
				Columns("league_id", "contestant_id").
				Values("l1", "c1").
				Values("l1", "c2").
				ToSQL,
			wantQuery: "INSERT INTO draft_picks (league_id, contestant_id) VALUES ($1, $2), ($3, $4)",
			wantArgs:  []any{"l1", "c1", "l1", "c2"},
		},
		{
			name: "insert with suffix",
			build: InsertInto("draft_picks").
				Columns("league_id").
				Values("l1").
				Suffix("RETURNING id").
				ToSQL,
			wantQuery: "INSERT INTO draft_picks (league_id) VALUES ($1) RETURNING id",
			wantArgs:  []any{"l1"},
		},
		{
			name: "guarded status update",
			build: Update("leagues").
				Set("status", "drafting").
				SetRaw("updated_at", "NOW()").
				Where(Eq("id", "l1"), Eq("commissioner_id", "boss")).
				ToSQL,
			wantQuery: "UPDATE leagues SET status = $1, updated_at = NOW() WHERE id = $2 AND commissioner_id = $3",
			wantArgs:  []any{"drafting", "l1", "boss"},
		},
		{
			name: "delete picks",
			build: DeleteFrom("draft_picks").
				Where(Eq("league_id", "l1")).
				ToSQL,
			wantQuery: "DELETE FROM draft_picks WHERE league_id = $1",
			wantArgs:  []any{"l1"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := tc.build()
			if err != nil {
				t.Fatalf("build query: %v", err)
			}
			if query != tc.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tc.wantQuery, query)
			}
			if !slices.Equal(args, tc.wantArgs) {
				t.Fatalf("unexpected args: %+v", args)
			}
		})
	}
}

func TestToSQL_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, []any, error)
	}{
		{name: "select without table", build: Select("id").ToSQL},
		{name: "select without columns", build: Select().From("leagues").ToSQL},
		{name: "insert without rows", build: InsertInto("draft_picks").Columns("id").ToSQL},
		{name: "insert row width mismatch", build: InsertInto("draft_picks").Columns("a", "b").Values("x").ToSQL},
		{name: "unfiltered update", build: Update("league_members").SetRaw("draft_position", "NULL").ToSQL},
		{name: "update without sets", build: Update("leagues").Where(Eq("id", "l1")).ToSQL},
		{name: "unfiltered delete", build: DeleteFrom("draft_picks").ToSQL},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.build(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
