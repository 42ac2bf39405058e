package whispercpp

import (
	"context"
	"testing"
)

const sampleJSON = `{
  "result": {"language": "ar"},
  "transcription": [
    {"offsets": {"from": 0, "to": 420}, "text": " بسم"},
    {"offsets": {"from": 420, "to": 420}, "text": "،"},
    {"offsets": {"from": 430, "to": 900}, "text": " الله"},
    {"offsets": {"from": 950, "to": 1600}, "text": " الرحمن"},
    {"offsets": {"from": 1650, "to": 1500}, "text": " الرحيم"},
    {"offsets": {"from": 1700, "to": 2000}, "text": " extra"}
  ]
}`

func TestParseTimings(t *testing.T) {
	got, err := parseTimings([]byte(sampleJSON), 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 timings, got %+v", got)
	}
	for i, wt := range got {
		if wt.Position != i+1 {
			t.Fatalf("timing %d has position %d", i, wt.Position)
		}
		if wt.EndMS < wt.StartMS {
			t.Fatalf("timing %d ends before it starts: %+v", i, wt)
		}
	}
	if got[1].StartMS != 430 || got[3].EndMS != 1650 {
		t.Fatalf("unexpected offsets: %+v", got)
	}
}

func TestParseTimings_BadJSON(t *testing.T) {
	if _, err := parseTimings([]byte("{"), 3); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAlign_RequiresModel(t *testing.T) {
	if _, err := New("", "").Align(context.Background(), "a.wav", "x", t.TempDir()); err == nil {
		t.Fatalf("expected error without binary")
	}
}
