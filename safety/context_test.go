package safety

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTimeOfDaySignal(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, LevelHigh},
		{5, LevelHigh},
		{6, LevelLow},
		{12, LevelLow},
		{17, LevelLow},
		{18, LevelMedium},
		{21, LevelMedium},
		{22, LevelHigh},
		{23, LevelHigh},
	}
	for _, tt := range tests {
		if got := TimeOfDaySignal(tt.hour); got.Level != tt.want {
			t.Errorf("TimeOfDaySignal(%d).Level = %q, want %q", tt.hour, got.Level, tt.want)
		}
	}
}

func TestActivitySignal(t *testing.T) {
	tests := []struct {
		nearby   int
		want     string
		wantNote string
	}{
		{0, LevelLow, "No community reports near this area"},
		{1, LevelMedium, "1 community report near this area"},
		{3, LevelMedium, "3 community reports near this area"},
		{4, LevelHigh, "4 community reports near this area"},
	}
	for _, tt := range tests {
		got := ActivitySignal(tt.nearby)
		if got.Level != tt.want {
			t.Errorf("ActivitySignal(%d).Level = %q, want %q", tt.nearby, got.Level, tt.want)
		}
		if got.Note != tt.wantNote {
			t.Errorf("ActivitySignal(%d).Note = %q, want %q", tt.nearby, got.Note, tt.wantNote)
		}
	}
}

func TestContextSignals(t *testing.T) {
	got := ContextSignals(14, 2)
	want := []ContextSignal{
		{Label: "Time of Day", Level: LevelLow, Note: "Good daytime visibility"},
		{Label: "Lighting", Level: LevelMedium, Note: "No lighting data for this area yet"},
		{Label: "Visibility", Level: LevelMedium, Note: "No visibility data for this area yet"},
		{Label: "Public Activity", Level: LevelMedium, Note: "2 community reports near this area"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ContextSignals() mismatch (-want +got):\n%s", diff)
	}
}
