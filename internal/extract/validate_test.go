package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/quizgest/internal/quizdoc"
)

func TestValidateMetadata(t *testing.T) {
	tests := []struct {
		name      string
		meta      Metadata
		durations []int
		wantField string
	}{
		{"duration ok", Metadata{Category: "math", Duration: 60}, nil, ""},
		{"subject ok", Metadata{Category: "math", Subject: "algebra"}, nil, ""},
		{"subject wins over bad duration", Metadata{Category: "math", Subject: "algebra", Duration: 7}, nil, ""},
		{"custom durations", Metadata{Category: "math", Duration: 45}, []int{15, 45}, ""},
		{"missing category", Metadata{Duration: 30}, nil, "category"},
		{"blank category", Metadata{Category: "  ", Duration: 30}, nil, "category"},
		{"long category", Metadata{Category: strings.Repeat("x", 101), Duration: 30}, nil, "category"},
		{"no duration or subject", Metadata{Category: "math"}, nil, "duration"},
		{"duration not allowed", Metadata{Category: "math", Duration: 45}, nil, "duration"},
		{"negative duration", Metadata{Category: "math", Duration: -30}, nil, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.meta, tt.durations)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var me *quizdoc.MetadataError
			if !errors.As(err, &me) {
				t.Fatalf("expected MetadataError, got %v", err)
			}
			if me.Field != tt.wantField {
				t.Errorf("field = %q, want %q", me.Field, tt.wantField)
			}
		})
	}
}
