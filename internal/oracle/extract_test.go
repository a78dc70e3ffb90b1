package oracle

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ParsedKind
		wantText string
	}{
		{
			name:     "sql fence",
			raw:      "```sql\nSELECT * FROM demands\n```",
			wantKind: KindFenced,
			wantText: "SELECT * FROM demands",
		},
		{
			name:     "bare fence",
			raw:      "```\nSELECT 1\n```",
			wantKind: KindFenced,
			wantText: "SELECT 1",
		},
		{
			name:     "json fence",
			raw:      "```json\n{\"steps\": []}\n```",
			wantKind: KindFenced,
			wantText: "{\"steps\": []}",
		},
		{
			name:     "fence with prose around it",
			raw:      "Here you go:\n```sql\nSELECT id FROM users\n```\nLet me know!",
			wantKind: KindFenced,
			wantText: "SELECT id FROM users",
		},
		{
			name:     "reasoning comment prefix",
			raw:      "/* First I join demands to users */\nSELECT u.name FROM users u",
			wantKind: KindReasoningPrefixed,
			wantText: "SELECT u.name FROM users u",
		},
		{
			name:     "plain sql untouched",
			raw:      "  SELECT count(*) FROM demands  ",
			wantKind: KindRaw,
			wantText: "SELECT count(*) FROM demands",
		},
		{
			name:     "prose before select",
			raw:      "Sure, here is the query: SELECT 1",
			wantKind: KindRaw,
			wantText: "SELECT 1",
		},
		{
			name:     "no sql at all",
			raw:      "I cannot answer that.",
			wantKind: KindRaw,
			wantText: "I cannot answer that.",
		},
		{
			name:     "empty input",
			raw:      "",
			wantKind: KindRaw,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.raw)
			if got.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}
		})
	}
}
