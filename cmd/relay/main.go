package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"team-relay/errors"
	"team-relay/infrastructure/grpc/client"
	"team-relay/internal"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
	exitTimeout = 3
)

const usage = `Usage: relay <command> [flags]

Commands:
  join    join a team and print what happens in it until interrupted
  ask     ask a team a question and wait for the answer
  inbox   list the questions addressed to a team
  reply   answer a question

Every command joins the team as a new member for its own duration and
leaves when done. Teammates see that member join and leave, and a reply
is recorded under it.
`

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		color.Error.Println(err)
	}
	os.Exit(code)
}

// options are the flags shared by every command.
type options struct {
	host        string
	port        int
	team        string
	name        string
	to          string
	question    string
	format      string
	timeout     time.Duration
	all         bool
	noReconnect bool
}

func parse(command string, args []string, config internal.ClientConfig) (options, []string, error) {
	opts := options{}
	flags := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flags.StringVar(&opts.host, "host", config.Host, "hub host")
	flags.IntVar(&opts.port, "port", config.Port, "hub port")
	flags.StringVarP(&opts.team, "team", "t", "", "team to join")
	flags.StringVarP(&opts.name, "name", "n", "", "display name")
	flags.StringVar(&opts.format, "format", "plain", "content format (plain or markdown)")
	switch command {
	case "ask":
		flags.StringVar(&opts.to, "to", "", "team to ask")
		flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "how long to wait for an answer")
	case "inbox":
		flags.BoolVarP(&opts.all, "all", "a", false, "include answered questions")
	case "reply":
		flags.StringVarP(&opts.question, "question", "q", "", "id of the question to answer")
	case "join":
		flags.BoolVar(&opts.noReconnect, "no-reconnect", false, "exit when the connection is lost")
	}
	if err := flags.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.team == "" || opts.name == "" {
		return options{}, nil, fmt.Errorf("--team and --name are required")
	}
	return opts, flags.Args(), nil
}

func run(args []string, out io.Writer) (int, error) {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return exitConfig, nil
	}
	config, err := internal.LoadClientConfig()
	if err != nil {
		return exitConfig, err
	}
	command := args[0]
	opts, rest, err := parse(command, args[1:], config)
	if err != nil {
		return exitConfig, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logs.GetLoggerFromString(config.LogLevel)

	clientConfig := client.DefaultConfig(fmt.Sprintf("%s:%d", opts.host, opts.port))
	clientConfig.Reconnect = command == "join" && !opts.noReconnect

	var cmdErr error
	switch command {
	case "join":
		cmdErr = join(ctx, logger, clientConfig, opts, out)
	case "ask":
		cmdErr = ask(ctx, logger, clientConfig, opts, strings.Join(rest, " "), out)
	case "inbox":
		cmdErr = inbox(ctx, logger, clientConfig, opts, out)
	case "reply":
		cmdErr = reply(ctx, logger, clientConfig, opts, strings.Join(rest, " "), out)
	default:
		fmt.Fprint(out, usage)
		return exitConfig, fmt.Errorf("unknown command %q", command)
	}
	if cmdErr == nil {
		return exitOK, nil
	}
	var answerTimeout *client.AnswerTimeoutError
	if stderrors.As(cmdErr, &answerTimeout) || errors.CodeOf(cmdErr) == errors.CodeTimeout {
		return exitTimeout, cmdErr
	}
	return exitRuntime, cmdErr
}
