package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/sells-group/company-intel/internal/config"
	"github.com/sells-group/company-intel/internal/report"
	"github.com/sells-group/company-intel/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive company research session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, config.ModeChat)
		if err != nil {
			return err
		}
		defer env.Close()

		c := &chat{
			sess:      session.New(env.Pipeline),
			in:        cmd.InOrStdin(),
			out:       cmd.OutOrStdout(),
			exportDir: cfg.Export.Dir,
			format:    cfg.Export.Format,
			progress:  spinnerProgress(os.Stderr),
		}
		return c.run(ctx)
	},
}

const chatHelp = `Commands:
  <company name>      search for a company (when starting)
  yes | no            analyze the found sources, or start over
  deep                run the deep website analysis
  download [format]   export results (json, yaml, markdown)
  reset               start a new analysis
  quit                leave`

// chat is the terminal front end of a session.
type chat struct {
	sess      *session.Session
	in        io.Reader
	out       io.Writer
	exportDir string
	format    string
	progress  func(msg string) (stop func())
}

// spinnerProgress shows a spinner on w while an action runs.
func spinnerProgress(w io.Writer) func(string) func() {
	return func(msg string) func() {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
		s.Suffix = " " + msg
		s.Start()
		return s.Stop
	}
}

func (c *chat) run(ctx context.Context) error {
	c.say(c.sess.Messages()[0].Content)

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if done := c.handle(ctx, line); done {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// handle processes one input line and reports whether the chat should end.
func (c *chat) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "quit", "exit":
		return true
	case "help", "?":
		c.say(chatHelp)
		return false
	case "reset", "new":
		c.reset()
		return false
	}

	switch c.sess.Stage() {
	case session.StageIdle:
		c.search(ctx, line)
	case session.StageSourcesFound:
		switch fields[0] {
		case "yes", "y", "analyze":
			c.analyze(ctx)
		case "no", "n":
			c.reset()
		default:
			c.say("Reply yes to analyze these sources, or no to search again.")
		}
	case session.StageAnalyzed:
		switch fields[0] {
		case "deep":
			c.deepen(ctx)
		case "download", "export":
			format := c.format
			if len(fields) > 1 {
				format = fields[1]
			}
			c.download(format)
		default:
			c.say("Type deep, download [format], or reset.")
		}
	}
	return false
}

func (c *chat) search(ctx context.Context, company string) {
	stop := c.progress(fmt.Sprintf("🔍 Searching for %s's online presence...", company))
	_, err := c.sess.Search(ctx, company)
	stop()
	c.sayLast()
	if err == nil {
		c.say("Analyze these sources? (yes/no)")
	}
}

func (c *chat) analyze(ctx context.Context) {
	src := c.sess.Snapshot().Sources
	msg := "📊 Analyzing " + src.Website
	if src.Website == "" {
		msg = "💼 Analyzing " + src.LinkedIn
	}
	stop := c.progress(msg)
	_, err := c.sess.Analyze(ctx)
	stop()
	c.sayLast()
	if err == nil {
		c.say("📥 Type download [json|yaml|markdown] to save the results, deep for a deeper website analysis, or reset to start over.")
	}
}

func (c *chat) deepen(ctx context.Context) {
	stop := c.progress("📊 Running deep website analysis...")
	_, err := c.sess.Deepen(ctx)
	stop()
	if errors.Is(err, session.ErrWrongStage) {
		c.say("A deep analysis needs a website.")
		return
	}
	c.sayLast()
}

func (c *chat) download(format string) {
	f, err := report.ParseFormat(format)
	if err != nil {
		c.say(err.Error())
		return
	}
	downloads, err := c.sess.Downloads(f)
	if err != nil {
		c.say("Nothing to download: " + err.Error())
		return
	}
	paths, err := report.Export(c.exportDir, c.sess.Snapshot().Sources.Company, downloads)
	if err != nil {
		c.say("Export failed: " + err.Error())
		return
	}
	for i, p := range paths {
		c.say(fmt.Sprintf("%s → %s", downloads[i].Label, p))
	}
}

func (c *chat) reset() {
	if err := c.sess.Reset(); err != nil {
		c.say(err.Error())
		return
	}
	c.say(c.sess.Messages()[0].Content)
}

// sayLast prints the newest assistant message.
func (c *chat) sayLast() {
	msgs := c.sess.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleAssistant {
			c.say(msgs[i].Content)
			return
		}
	}
}

func (c *chat) say(msg string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, msg)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
