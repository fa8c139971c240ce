package version

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.0", Version{1, 0}, false},
		{"2.15", Version{2, 15}, false},
		{"1", Version{}, true},
		{"1.0.0", Version{}, true},
		{"", Version{}, true},
		{"a.b", Version{}, true},
		{"1.", Version{}, true},
		{".0", Version{}, true},
		{"300.0", Version{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCurrentParses(t *testing.T) {
	v, err := Parse(Current)
	if err != nil {
		t.Fatalf("Parse(Current): %v", err)
	}
	if v.Major != CurrentMajor {
		t.Errorf("Current major = %d, CurrentMajor = %d", v.Major, CurrentMajor)
	}
	if v.String() != Current {
		t.Errorf("String() = %q, want %q", v.String(), Current)
	}
}

func TestCompatible(t *testing.T) {
	if !(Version{1, 0}).Compatible(Version{1, 9}) {
		t.Error("same major should be compatible")
	}
	if (Version{1, 0}).Compatible(Version{2, 0}) {
		t.Error("different major should not be compatible")
	}
}

func TestCompatibleMajor(t *testing.T) {
	if !CompatibleMajor(CurrentMajor) {
		t.Error("CompatibleMajor(CurrentMajor) = false")
	}
	if CompatibleMajor(CurrentMajor + 1) {
		t.Error("future major should not be compatible")
	}
}
