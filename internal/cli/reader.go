package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInputCancelled is returned when the context ends while waiting for an answer.
var ErrInputCancelled = errors.New("input canceled")

type answer struct {
	err  error
	text string
}

// answerReader reads prompt answers one line at a time. A read still pending when
// its context ends is kept, and its line becomes the next answer.
type answerReader struct {
	lines   *bufio.Reader
	pending chan answer
}

func newAnswerReader(r io.Reader) *answerReader {
	return &answerReader{lines: bufio.NewReader(r)}
}

// next returns the next answer without surrounding whitespace. A last line without
// a newline is an answer; io.EOF is returned once input is exhausted.
func (r *answerReader) next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInputCancelled, err)
	}

	if r.pending == nil {
		ch := make(chan answer, 1)
		go func() {
			line, err := r.lines.ReadString('\n')
			if errors.Is(err, io.EOF) && line != "" {
				err = nil
			}
			ch <- answer{text: strings.TrimSpace(line), err: err}
		}()
		r.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrInputCancelled, ctx.Err())
	case a := <-r.pending:
		r.pending = nil
		return a.text, a.err
	}
}
