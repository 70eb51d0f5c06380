package desensitize

import "io"

// Writer 写入前脱敏的 io.Writer 包装
type Writer struct {
	w    io.Writer
	hook *Hook
}

// NewWriter 包装 w，hook 为 nil 时原样写入
func NewWriter(w io.Writer, hook *Hook) *Writer {
	return &Writer{w: w, hook: hook}
}

// Write 返回值按输入长度计算，脱敏后长度变化不影响调用方
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook == nil || w.hook.Len() == 0 {
		return w.w.Write(p)
	}
	text := string(p)
	out := w.hook.Desensitize(text)
	if out == text {
		return w.w.Write(p)
	}
	if _, err := io.WriteString(w.w, out); err != nil {
		return 0, err
	}
	return len(p), nil
}
