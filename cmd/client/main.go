package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/omochice/line-chat/internal/client"
	"github.com/omochice/line-chat/internal/config"
	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: ./config.yaml if present)")
	host := flag.String("host", "", "Server host, overrides client.host")
	port := flag.Int("port", 0, "Server port, overrides client.port")
	transport := flag.String("transport", "", "Transport: tcp or ws, overrides client.transport")
	username := flag.String("username", "", "Log in with this name after connecting, overrides client.username")
	logLevel := flag.String("log-level", "warn", "Log level for diagnostics written alongside the chat")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Client.Host = *host
	}
	if *port != 0 {
		cfg.Client.Port = *port
	}
	if *transport != "" {
		cfg.Client.Transport = *transport
	}
	if *username != "" {
		cfg.Client.Username = *username
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*logLevel, "line-chat-client")

	if err := run(cfg.Client, log); err != nil {
		log.Error("client error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.ClientConfig, log logger.Logger) error {
	dialer := client.TCPDialer(cfg.ConnectTimeout)
	if cfg.Transport == config.TransportWebSocket {
		dialer = client.WebSocketDialer(cfg.WSPath, cfg.ConnectTimeout)
	}

	editor := newLineEditor(os.Stdin)
	defer editor.close()

	c := client.New(client.WithLogger(log), client.WithDialer(dialer))
	out := &printer{out: editor.output()}
	c.AddListener(out)

	r := &repl{client: c, cfg: cfg, out: out}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddress != "" {
		g.Go(func() error {
			return metrics.ListenAndServe(ctx, cfg.MetricsAddress, log)
		})
	}

	g.Go(func() error {
		defer cancel()
		defer c.Disconnect()
		return loop(r, editor)
	})

	return g.Wait()
}

func loop(r *repl, editor *lineEditor) error {
	r.connect("")
	r.out.printf("type /help for commands")

	for {
		line, err := editor.getLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if r.execute(line) {
			return nil
		}
	}
}
