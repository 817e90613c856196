package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/report"
	"github.com/rshade/sequestra/internal/session"
)

// Line prompt commands.
const (
	promptBack  = ":back"
	promptReset = ":reset"
	promptQuit  = ":quit"
)

// RunLinePrompt drives sess from reader, one answer per line, writing prompts
// and the final estimate to writer.
//
// An empty line keeps the stored answer. Accepting the last question
// calculates the estimate and ends the prompt; a calculation error re-asks.
// EOF or :quit stop early with the answers saved. Once the answer store fails
// a one-time note says answers are kept in memory only.
func RunLinePrompt(
	ctx context.Context,
	reader io.Reader,
	writer io.Writer,
	sess *session.Session,
	opts report.Options,
) error {
	scanner := bufio.NewScanner(reader)
	cat := sess.Flow().Catalog()
	noted := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !noted && sess.MemoryOnly() {
			fmt.Fprintln(writer, session.MemoryOnlyNotice)
			noted = true
		}

		q := sess.Current()
		fmt.Fprintln(writer)
		fmt.Fprint(writer, report.Prompt(q, sess.CurrentAnswer(), len(sess.State().Path), cat.Len()))
		if q.Kind == flow.KindInformation {
			fmt.Fprint(writer, "Press Enter to continue. ")
		} else {
			fmt.Fprint(writer, "> ")
		}

		if !scanner.Scan() {
			fmt.Fprintln(writer)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading answers: %w", err)
			}
			return nil
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case promptQuit:
			return nil
		case promptBack:
			sess.Back()
			continue
		case promptReset:
			if err := sess.Reset(ctx); err != nil {
				fmt.Fprintf(writer, "Could not reset, the answer store is unavailable. Answers kept: %v\n", err)
			}
			continue
		case "":
			input = sess.CurrentAnswer()
		}

		if !sess.Submit(ctx, input) {
			fmt.Fprintf(writer, "✗ %s\n", sess.LastError())
			continue
		}
		if !cat.Terminal(q.ID) {
			continue
		}

		res, err := sess.Calculate(ctx)
		if err != nil {
			fmt.Fprintf(writer, "Cannot calculate: %s\n", sess.LastError())
			continue
		}
		summary, err := report.Summary(res, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(writer)
		fmt.Fprint(writer, summary)
		return nil
	}
}
