package chat

import (
	"bufio"
	"log/slog"
	"net"
	"time"
)

// startOutboundWriter drains out onto conn, one line per message, until stop
// is closed; it then writes whatever is still queued and exits. It is the
// only goroutine writing to conn. After a failed write the connection is
// closed so the session's reader stops, and later lines are discarded but
// still consumed, so senders blocked on out always make progress. The
// returned channel is closed when the writer exits.
func startOutboundWriter(conn net.Conn, out <-chan string, stop <-chan struct{}, timeout time.Duration, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w := bufio.NewWriter(conn)
		failed := false
		write := func(msg string) {
			if failed {
				return
			}
			if timeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(timeout))
			}
			_, err := w.WriteString(msg + "\n")
			if err == nil {
				err = w.Flush()
			}
			if err != nil {
				logger.Warn("write failed", "error", err)
				failed = true
				_ = conn.Close()
			}
		}

		for {
			select {
			case msg := <-out:
				write(msg)
			case <-stop:
				for {
					select {
					case msg := <-out:
						write(msg)
					default:
						return
					}
				}
			}
		}
	}()
	return done
}
