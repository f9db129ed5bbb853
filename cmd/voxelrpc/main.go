package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/voxellabs/voxel-presence/client"
	"github.com/voxellabs/voxel-presence/internal/logging"
	"github.com/voxellabs/voxel-presence/presence"
)

const helpText = `commands:
  menu                     show the main menu status
  sp [world]               join a singleplayer world
  join <address> [name]    join a server (realm addresses are detected)
  realm [name]             join a realm
  disconnect               leave the current world or server
  clear                    clear the status
  state                    print the connection state
  quit                     clear, close and exit`

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	clientID := flag.String("client-id", "", "override the application id")
	logLevel := flag.String("log-level", "", "override the log level")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *clientID != "" {
		cfg.Presence.ClientID = *clientID
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	closer, err := logging.Init(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("voxelrpc exited")
		os.Exit(1)
	}
}

func run(cfg appConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rpc := client.NewClient(cfg.Presence.ClientID, client.WithLogger(logging.Component("rpc")))
	ctrl := presence.New(cfg.Presence, presence.WithPublisher(rpc))
	ctrl.Start()
	defer ctrl.Shutdown()

	rl, err := readline.New("voxelrpc> ")
	if err != nil {
		return fmt.Errorf("start console: %w", err)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		_ = rl.Close()
	}()

	fmt.Fprintln(rl.Stdout(), helpText)
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if quit := dispatch(ctrl, rpc, rl.Stdout(), line); quit {
			return nil
		}
	}
}

// dispatch maps one console line to a host event.
func dispatch(ctrl *presence.Controller, rpc *client.Client, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	rest := func(i int) string {
		if len(fields) <= i {
			return ""
		}
		return strings.Join(fields[i:], " ")
	}

	switch strings.ToLower(fields[0]) {
	case "menu":
		ctrl.ShowMainMenu()
	case "sp":
		ctrl.OnJoin(presence.Join{Singleplayer: true, World: rest(1)})
	case "join":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: join <address> [name]")
			return false
		}
		ctrl.OnJoin(presence.Join{Address: fields[1], ServerName: rest(2)})
	case "realm":
		ctrl.ShowRealms(rest(1))
	case "disconnect":
		ctrl.OnDisconnect()
	case "clear":
		ctrl.Clear()
	case "state":
		fmt.Fprintln(out, rpc.State())
	case "help":
		fmt.Fprintln(out, helpText)
	case "quit", "exit":
		return true
	default:
		fmt.Fprintf(out, "unknown command %q, try help\n", fields[0])
	}
	return false
}
