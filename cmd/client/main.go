package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andy6609/linechat/internal/client"
)

var (
	addr    string
	name    string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chat-client",
	Short: "Terminal client for the line-based chat relay",
	Long: `Connects to a chat server and forwards each line typed on stdin as a
command (IDEN <name>, LIST, STAT, HAIL <text>, MESG <user> <text>, QUIT).
Closing stdin sends QUIT.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c, err := client.Dial(ctx, addr, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Identify(name); err != nil {
			return err
		}

		go forwardInput(cmd.InOrStdin(), c, logger)

		return c.Run(ctx, printer(cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "localhost:5000", "chat server address")
	rootCmd.Flags().StringVar(&name, "name", "", "username to register with on connect")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func forwardInput(in io.Reader, c *client.Client, logger *slog.Logger) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := c.SendRaw(sc.Text()); err != nil {
			logger.Debug("send failed", "error", err)
			return
		}
	}
	_ = c.Quit()
}

func printer(w io.Writer) client.Handler {
	return func(ev client.Event) {
		m := ev.Message
		switch ev.Kind {
		case client.EventBroadcast:
			fmt.Fprintf(w, "[%s] %s\n", m.Source, m.Text)
		case client.EventPrivate:
			fmt.Fprintf(w, "[pm %s] %s\n", m.Source, m.Text)
		case client.EventSuccess:
			fmt.Fprintf(w, "%s: %s\n", m.Type, m.Text)
		case client.EventFailure:
			fmt.Fprintf(w, "%s error: %s\n", m.Type, m.Text)
		default:
			fmt.Fprintf(w, "? %s\n", ev.Raw)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
