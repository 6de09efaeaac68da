package timeline

import (
	"strconv"
	"strings"

	"github.com/fakeyudi/tt/internal/logentry"
)

const resumeTagPrefix = "resume:"

// Frame is one entry of the resume stack.
type Frame struct {
	Activity string
	Tags     []string // original tags, without resume markers
	Index    int      // position of the resumed interval in the timeline
}

// ResumeTag marks an entry that resumes the interval offset positions back.
func ResumeTag(offset int) string {
	return resumeTagPrefix + strconv.Itoa(offset)
}

func resumeOffset(tags []string) (int, bool) {
	for _, t := range tags {
		if s, ok := strings.CutPrefix(t, resumeTagPrefix); ok {
			n, err := strconv.Atoi(s)
			if err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

// IsResumeTag reports whether t is a resume marker.
func IsResumeTag(t string) bool {
	return strings.HasPrefix(t, resumeTagPrefix)
}

func withoutResumeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if !IsResumeTag(t) {
			out = append(out, t)
		}
	}
	return out
}

// ResumeStack lists the activities that can be resumed, most recent first.
// The current interval is not part of it; break and start never are.
// Consecutive repeats collapse into one frame, and an interval created by
// a resume jumps straight to the interval it resumed so that repeated
// resumes walk further back instead of bouncing between two activities.
func (tl *Timeline) ResumeStack() []Frame {
	ivs := tl.Intervals
	if len(ivs) == 0 {
		return nil
	}

	var frames []Frame
	last := ivs[len(ivs)-1].Activity
	for i := len(ivs) - 1; i >= 0; {
		iv := ivs[i]
		next := i - 1
		if n, ok := resumeOffset(iv.Tags); ok && i-n >= 0 {
			next = i - n
		}
		if i != len(ivs)-1 && !logentry.IsBreak(iv.Activity) && !logentry.IsStart(iv.Activity) && iv.Activity != last {
			frames = append(frames, Frame{Activity: iv.Activity, Tags: withoutResumeTags(iv.Tags), Index: i})
			last = iv.Activity
		}
		i = next
	}
	return frames
}

// ResumeEntry builds the entry that resumes frame n (1-based) of the
// stack at time at.
func (tl *Timeline) ResumeEntry(n int, at logentry.Time) (logentry.Line, bool) {
	stack := tl.ResumeStack()
	if n < 1 || n > len(stack) {
		return logentry.Line{}, false
	}
	f := stack[n-1]
	tags := append(append([]string(nil), f.Tags...), ResumeTag(len(tl.Intervals)-f.Index))
	return logentry.NewEntry(at, f.Activity, tags...), true
}
