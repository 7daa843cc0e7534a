package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"team-relay/errors"
	"team-relay/infrastructure/grpc/client"
	"team-relay/protocol"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// connect opens a client and joins the team given by --team/--name.
func connect(ctx context.Context, log *slog.Logger, config client.Config, opts options, observers client.Observers) (*client.HubClient, error) {
	c := client.NewHubClient(log, config, observers)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	if _, err := c.Join(ctx, opts.team, opts.name); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func join(ctx context.Context, log *slog.Logger, config client.Config, opts options, out io.Writer) error {
	lost := make(chan error, 1)
	c := client.NewHubClient(log, config, client.Observers{
		OnQuestion: func(q *protocol.Question) {
			fmt.Fprintf(out, "%s %s %s\n", color.Cyan.Sprint("?"), memberLabel(q.From), color.Gray.Sprint(q.QuestionID))
			fmt.Fprintln(out, indent(q.Content))
		},
		OnMemberJoined: func(m *protocol.MemberJoined) {
			fmt.Fprintf(out, "%s %s joined\n", color.Green.Sprint("+"), memberLabel(m.Member))
		},
		OnMemberLeft: func(m *protocol.MemberLeft) {
			fmt.Fprintf(out, "%s %s left\n", color.Yellow.Sprint("-"), m.MemberID)
		},
		OnError: func(err error) {
			fmt.Fprintf(out, "%s %v\n", color.Red.Sprint("!"), err)
			if errors.CodeOf(err) == errors.CodeConnection {
				select {
				case lost <- err:
				default:
				}
			}
		},
	})
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	joined, err := c.Join(ctx, opts.team, opts.name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Joined %s as %s (%d online), member id %s\n",
		color.Bold.Sprint(joined.Member.TeamName), joined.Member.DisplayName, joined.MemberCount, joined.Member.MemberID)

	select {
	case <-ctx.Done():
		_ = c.Leave(context.Background())
		return nil
	case err := <-lost:
		return err
	}
}

func ask(ctx context.Context, log *slog.Logger, config client.Config, opts options, content string, out io.Writer) error {
	if opts.to == "" {
		return fmt.Errorf("--to is required")
	}
	c, err := connect(ctx, log, config, opts, client.Observers{})
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Fprintf(out, "Asking %s, waiting up to %s...\n", color.Bold.Sprint(opts.to), opts.timeout)
	answer, err := c.Ask(ctx, opts.to, content, opts.format, opts.timeout)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", color.Green.Sprint("Answer from"), memberLabel(answer.From))
	fmt.Fprintln(out, answer.Content)
	return nil
}

func inbox(ctx context.Context, log *slog.Logger, config client.Config, opts options, out io.Writer) error {
	c, err := connect(ctx, log, config, opts, client.Observers{})
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.GetInbox(ctx, opts.all)
	if err != nil {
		return err
	}
	renderInbox(out, result)
	return nil
}

// reply answers then reads the inbox: the hub handles frames in order, so
// the inbox proves the reply was processed before the connection closes.
func reply(ctx context.Context, log *slog.Logger, config client.Config, opts options, content string, out io.Writer) error {
	if opts.question == "" {
		return fmt.Errorf("--question is required")
	}
	failures := make(chan error, 1)
	c, err := connect(ctx, log, config, opts, client.Observers{
		OnError: func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Reply(ctx, opts.question, content, opts.format); err != nil {
		return err
	}
	if _, err := c.GetInbox(ctx, false); err != nil {
		return err
	}
	select {
	case err := <-failures:
		return err
	default:
	}
	fmt.Fprintf(out, "%s %s\n", color.Green.Sprint("Replied to"), opts.question)
	return nil
}

func renderInbox(out io.Writer, inbox *protocol.Inbox) {
	fmt.Fprintf(out, "Inbox of %s: %d question(s), %d pending\n", inbox.TeamName, inbox.TotalCount, inbox.PendingCount)
	if len(inbox.Questions) == 0 {
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Question ID", "From", "Status", "Age", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(inbox.Questions, func(q protocol.InboxQuestion, _ int) []string {
		return []string{
			q.QuestionID,
			fmt.Sprintf("%s (%s)", q.From.DisplayName, q.From.TeamName),
			q.Status,
			(time.Duration(q.AgeMs) * time.Millisecond).Round(time.Second).String(),
			preview(q.Content),
		}
	}))
	table.Render()
}

func memberLabel(m protocol.MemberInfo) string {
	return fmt.Sprintf("%s@%s", m.DisplayName, m.TeamName)
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > 60 {
		return string(runes[:57]) + "..."
	}
	return text
}
