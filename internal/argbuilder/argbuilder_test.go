package argbuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestAddIf(t *testing.T) {
	tests := []struct {
		name      string
		condition bool
		want      []string
	}{
		{"true appends", true, []string{"--clean"}},
		{"false skips", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddIf(nil, tt.condition, "--clean")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AddIf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddPairIfNonEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"non-empty", "default", []string{"--rev", "default"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddPairIfNonEmpty(nil, "--rev", tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AddPairIfNonEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddDateIf(t *testing.T) {
	d := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	got := AddDateIf(nil, "--date", &d)
	want := []string{"--date", "2023-01-02 03:04:05"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AddDateIf() = %v, want %v", got, want)
	}

	if got := AddDateIf(nil, "--date", nil); got != nil {
		t.Errorf("AddDateIf(nil) = %v, want nil", got)
	}
}

func TestAddAllIfNonEmpty(t *testing.T) {
	got := AddAllIfNonEmpty(nil, "--include", []string{"*.go", "", "*.md"})
	want := []string{"--include", "*.go", "--include", "*.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AddAllIfNonEmpty() = %v, want %v", got, want)
	}
}

func TestArgBuilder_Chaining(t *testing.T) {
	var args []string
	args = append(args, "log")
	args = AddIf(args, true, "--verbose")
	args = AddPairIfNonEmpty(args, "--rev", "1::")
	args = AddPairIfNonEmpty(args, "--branch", "")

	want := []string{"log", "--verbose", "--rev", "1::"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("chained args = %v, want %v", args, want)
	}
}
