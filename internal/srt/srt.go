package srt

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

var timingRe = regexp.MustCompile(
	`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

// Parse reads SubRip content into cues. Cue indexes are renumbered
// sequentially; blank cues and stray blank lines are dropped. BOMs and
// Windows line endings are tolerated.
func Parse(data []byte) ([]Cue, error) {
	data = bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf})

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cues []Cue
	var current *Cue
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			if current != nil && len(current.Lines) > 0 {
				cues = append(cues, *current)
			}
			current = nil
			continue
		}

		if m := timingRe.FindStringSubmatch(line); m != nil {
			if current != nil && len(current.Lines) > 0 {
				cues = append(cues, *current)
			}
			current = &Cue{
				Start: timestamp(m[1], m[2], m[3], m[4]),
				End:   timestamp(m[5], m[6], m[7], m[8]),
			}
			continue
		}

		if current == nil {
			// Expect a cue number before the timing line; anything
			// else this early is not SubRip.
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err != nil {
				return nil, fmt.Errorf("line %d: expected cue number or timing, got %q", lineNo, line)
			}
			continue
		}
		current.Lines = append(current.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read subtitle: %w", err)
	}
	if current != nil && len(current.Lines) > 0 {
		cues = append(cues, *current)
	}

	for i := range cues {
		cues[i].Index = i + 1
	}
	return cues, nil
}

// Render writes cues back out as SubRip, renumbering from 1.
func Render(cues []Cue) []byte {
	var sb strings.Builder
	for i, cue := range cues {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(formatTimestamp(cue.Start))
		sb.WriteString(" --> ")
		sb.WriteString(formatTimestamp(cue.End))
		sb.WriteString("\n")
		for _, line := range cue.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return []byte(sb.String())
}

// Text joins a cue's lines into a single translation unit.
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

func timestamp(h, m, s, ms string) time.Duration {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	// Pad short fraction fields: "5" means 500ms.
	for len(ms) < 3 {
		ms += "0"
	}
	millis, _ := strconv.Atoi(ms)
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	millis := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
