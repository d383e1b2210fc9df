package srt

import (
	"strings"
	"testing"
	"time"
)

const sample = "1\n00:00:01,000 --> 00:00:02,500\nTen four.\n\n2\n00:01:04,250 --> 00:01:06,000\nKeep on\ntruckin'.\n"

func TestParse(t *testing.T) {
	cues, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	first := cues[0]
	if first.Index != 1 || first.Start != time.Second || first.End != 2500*time.Millisecond {
		t.Fatalf("unexpected first cue: %#v", first)
	}
	if first.Text() != "Ten four." {
		t.Errorf("text = %q", first.Text())
	}
	second := cues[1]
	if second.Start != time.Minute+4*time.Second+250*time.Millisecond {
		t.Errorf("second start = %v", second.Start)
	}
	if len(second.Lines) != 2 {
		t.Errorf("second cue lines = %#v", second.Lines)
	}
}

func TestParseWindowsLineEndingsAndBOM(t *testing.T) {
	data := "\xef\xbb\xbf" + strings.ReplaceAll(sample, "\n", "\r\n")
	cues, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cues) != 2 || cues[0].Text() != "Ten four." {
		t.Fatalf("unexpected cues: %#v", cues)
	}
}

func TestParseDotMillisecondSeparator(t *testing.T) {
	cues, err := Parse([]byte("1\n00:00:01.500 --> 00:00:02.000\nHello.\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cues) != 1 || cues[0].Start != 1500*time.Millisecond {
		t.Fatalf("unexpected cues: %#v", cues)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("<html>not a subtitle</html>")); err == nil {
		t.Fatal("expected an error for non-SubRip input")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	cues, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rendered := Render(cues)
	again, err := Parse(rendered)
	if err != nil {
		t.Fatalf("Parse of rendered output failed: %v", err)
	}
	if len(again) != len(cues) {
		t.Fatalf("round trip changed cue count: %d != %d", len(again), len(cues))
	}
	for i := range cues {
		if again[i].Start != cues[i].Start || again[i].End != cues[i].End || again[i].Text() != cues[i].Text() {
			t.Errorf("cue %d changed: %#v != %#v", i, again[i], cues[i])
		}
	}
	if !strings.Contains(string(rendered), "00:01:04,250 --> 00:01:06,000") {
		t.Errorf("rendered output missing timing line:\n%s", rendered)
	}
}

func TestRenderRenumbers(t *testing.T) {
	cues := []Cue{
		{Index: 9, Start: 0, End: time.Second, Lines: []string{"a"}},
		{Index: 3, Start: 2 * time.Second, End: 3 * time.Second, Lines: []string{"b"}},
	}
	out := string(Render(cues))
	if !strings.HasPrefix(out, "1\n") || !strings.Contains(out, "\n2\n") {
		t.Errorf("expected sequential numbering:\n%s", out)
	}
}
