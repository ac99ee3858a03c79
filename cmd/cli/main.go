// Command cli runs the matching engine against the terminal: one quote
// per line on stdin, trade and failure events on stdout, stopped by the
// line "stop".
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"matchbook/domain/book"
	"matchbook/infra/feed"
	"matchbook/infra/intake"
	"matchbook/infra/sequence"
	"matchbook/service"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	b := book.New(feed.NewConsole(os.Stdout))
	svc := service.New(b, sequence.New(0), log)

	if err := svc.Run(context.Background(), intake.NewLines(os.Stdin)); err != nil {
		fmt.Fprintln(os.Stderr, "engine stopped:", err)
		os.Exit(1)
	}
}
