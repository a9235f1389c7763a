package normalize

import (
	"testing"
	"time"
)

func TestRecordText(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{
			name:   "simple fields",
			fields: []string{"John", "Smith", "London"},
			want:   "John Smith London",
		},
		{
			name:   "empty fields skipped",
			fields: []string{"John", "", "London"},
			want:   "John London",
		},
		{
			name:   "whitespace-only fields skipped",
			fields: []string{"John", "   ", "London"},
			want:   "John London",
		},
		{
			name:   "fields trimmed",
			fields: []string{" John ", "Smith "},
			want:   "John Smith",
		},
		{
			name:   "all empty",
			fields: []string{"", "", ""},
			want:   "",
		},
		{
			name:   "no fields",
			fields: nil,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecordText(tt.fields)
			if got != tt.want {
				t.Errorf("RecordText(%v) = %q, want %q", tt.fields, got, tt.want)
			}
		})
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"nil", nil, ""},
		{"string", "  hello ", "hello"},
		{"bool", true, "true"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float no trailing zeros", 12.5, "12.5"},
		{"float whole number", 100.0, "100"},
		{"time", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CellText(tt.value)
			if got != tt.want {
				t.Errorf("CellText(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestRecordTexts(t *testing.T) {
	records := [][]string{
		{"a", "b"},
		{"", ""},
		{"c"},
	}

	texts := RecordTexts(records)
	if len(texts) != 3 {
		t.Fatalf("RecordTexts returned %d entries, want 3", len(texts))
	}

	want := []string{"a b", "", "c"}
	for i, w := range want {
		if texts[i] != w {
			t.Errorf("texts[%d] = %q, want %q", i, texts[i], w)
		}
	}
}
