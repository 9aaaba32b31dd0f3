package fixcycle

import (
	"github.com/google/uuid"
)

// frame is the state of one in-flight VerifyAndFix call.
type frame struct {
	id       uuid.UUID
	filename string
	sentinel bool

	ruleID   string
	settings Settings
	err      error
}

// capture records the delegate's activation. Only the first capture in a
// frame counts; sentinel frames never capture.
func (f *frame) capture(ruleID string, s Settings) bool {
	if f.sentinel || f.ruleID != "" {
		return false
	}
	f.ruleID = ruleID
	f.settings = s
	return true
}

// fail keeps the first error raised while the frame was live.
func (f *frame) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// stack holds the frames of nested VerifyAndFix calls. Only the top frame
// is live. It is not safe for concurrent use: the host drives nested calls
// on one goroutine.
type stack struct {
	frames []*frame
}

// push makes f the live frame. The returned release clears f's rule id and
// pops it; callers defer it so every exit path restores the stack.
func (s *stack) push(f *frame) (release func()) {
	s.frames = append(s.frames, f)
	return func() {
		f.ruleID = ""
		for i := len(s.frames) - 1; i >= 0; i-- {
			if s.frames[i] == f {
				s.frames = append(s.frames[:i], s.frames[i+1:]...)
				return
			}
		}
	}
}

func (s *stack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

func (s *stack) depth() int { return len(s.frames) }
