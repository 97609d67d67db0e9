package focus

import "github.com/pstuifzand/subtasks/internal/model"

// ResolveCaret decides where the caret goes when field receives focus.
// An explicit offset in state wins (clamped to the text), OffsetEnd means
// end of text, and anything else keeps the native offset of the event that
// focused the field.
func ResolveCaret(state State, field Field, text string, native int) int {
	length := model.TextLen(text)
	if state.Field != field || state.SelectionStart == nil {
		return max(0, min(native, length))
	}
	offset := *state.SelectionStart
	if offset == model.OffsetEnd {
		return length
	}
	if offset < 0 {
		return max(0, min(native, length))
	}
	return min(offset, length)
}
