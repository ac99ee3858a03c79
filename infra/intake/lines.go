package intake

import (
	"bufio"
	"context"
	"io"
)

// Lines reads newline-delimited quotes from an io.Reader.
type Lines struct {
	sc *bufio.Scanner
}

func NewLines(r io.Reader) *Lines {
	return &Lines{sc: bufio.NewScanner(r)}
}

func (l *Lines) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !l.sc.Scan() {
		if err := l.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return l.sc.Text(), nil
}
