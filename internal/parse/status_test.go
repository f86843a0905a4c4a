package parse

import (
	"reflect"
	"testing"
)

func TestParseStatusLines_HappyPath(t *testing.T) {
	output := "M file1.txt\n? file2.txt\n"
	got := ParseStatusLines(output)
	want := map[string]FileStatus{
		"file1.txt": StatusModified,
		"file2.txt": StatusUnknown,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseStatusLines() = %v, want %v", got, want)
	}
}

func TestParseStatusLines_DiscardsEmptyAndShortLines(t *testing.T) {
	output := "M file1.txt\n\nA\n! x\n"
	got := ParseStatusLines(output)
	want := map[string]FileStatus{
		"file1.txt": StatusModified,
		"x":         StatusMissing,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseStatusLines() = %v, want %v", got, want)
	}
}

func TestParseFileStatus_RoundTrip(t *testing.T) {
	codes := []byte{'M', 'A', 'R', 'C', '!', '?', 'I', ' ', 'U'}
	for _, c := range codes {
		got := ParseFileStatus(c)
		if byte(got) != c {
			t.Errorf("ParseFileStatus(%q) = %q, want %q", c, byte(got), c)
		}
	}
}

func TestParseFileStatus_UnrecognizedFallsBackToClean(t *testing.T) {
	if got := ParseFileStatus('X'); got != StatusClean {
		t.Errorf("ParseFileStatus('X') = %v, want StatusClean", got)
	}
}

func TestParseResolveList(t *testing.T) {
	output := "R resolved.txt\nU unresolved.txt\n"
	got := ParseResolveList(output)
	want := map[string]bool{
		"resolved.txt":   true,
		"unresolved.txt": false,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseResolveList() = %v, want %v", got, want)
	}
}

func TestArchiveType_Flag(t *testing.T) {
	tests := []struct {
		at   ArchiveType
		want string
	}{
		{ArchiveDefault, ""},
		{ArchiveDirectory, "files"},
		{ArchiveTar, "tar"},
		{ArchiveTarBzip2, "tbz2"},
		{ArchiveTarGzip, "tgz"},
		{ArchiveUncompressedZip, "uzip"},
		{ArchiveZip, "zip"},
	}
	for _, tt := range tests {
		if got := tt.at.Flag(); got != tt.want {
			t.Errorf("ArchiveType(%d).Flag() = %q, want %q", tt.at, got, tt.want)
		}
	}
}
