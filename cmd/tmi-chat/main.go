// Command tmi-chat tails Twitch chat channels in the terminal.
//
// Usage:
//
//	tmi-chat [-config path] [-debug] [channel ...]
//
// Channels given on the command line are joined in addition to the ones
// from the config file. With no token configured it connects anonymously.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/tmi-go/tmi"
	"github.com/tmi-go/tmi/tmidebug"
)

func main() {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to the config file")
		debug      = flag.Bool("debug", false, "copy raw connection traffic to stderr")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tmi-chat:", err)
		os.Exit(1)
	}
	cfg.channels = append(cfg.channels, flag.Args()...)
	if len(cfg.channels) == 0 {
		fmt.Fprintln(os.Stderr, "tmi-chat: no channels to join; pass them as arguments or set channels in the config")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.logLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := tmi.NewClient()
	client.Token = tmi.NewToken(cfg.token)
	client.InitialChannels = cfg.channels
	client.Logger = logger
	if *debug {
		client.DialFn = debugDial(client)
	}

	registerPrinters(client)

	if err := client.Connect(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "tmi-chat:", err)
		os.Exit(1)
	}
}

// debugDial wraps the client's default transport so all traffic is copied
// to stderr.
func debugDial(client *tmi.Client) tmi.DialFn {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		conn, err := tmi.Dial(ctx, tmi.DefaultServerAddr)
		if err != nil {
			return nil, err
		}
		return tmidebug.WriteTo(os.Stderr, conn, "--> ", "<-- "), nil
	}
}

func registerPrinters(client *tmi.Client) {
	stamp := func() string {
		return time.Now().Format("15:04:05")
	}
	client.OnMessage(func(ev tmi.MessageEvent) {
		name := ev.User.DisplayName
		if name == "" {
			name = ev.User.Name
		}
		if ev.Message.IsAction {
			fmt.Printf("%s #%s * %s %s\n", stamp(), ev.Channel.Name(), name, ev.Message.Text)
			return
		}
		fmt.Printf("%s #%s <%s> %s\n", stamp(), ev.Channel.Name(), name, ev.Message.Text)
	})
	client.OnAnnouncement(func(ev tmi.AnnouncementEvent) {
		fmt.Printf("%s #%s [announcement] %s\n", stamp(), ev.Channel.Name(), ev.Message.Text)
	})
	client.OnSub(func(ev tmi.SubEvent) {
		fmt.Printf("%s #%s [sub] %s\n", stamp(), ev.Channel.Name(), ev.Message.System)
	})
	client.OnResub(func(ev tmi.ResubEvent) {
		fmt.Printf("%s #%s [resub] %s\n", stamp(), ev.Channel.Name(), ev.Message.System)
	})
	client.OnSubGift(func(ev tmi.SubGiftEvent) {
		fmt.Printf("%s #%s [gift] %s\n", stamp(), ev.Channel.Name(), ev.Message.System)
	})
	client.OnRaid(func(ev tmi.RaidEvent) {
		fmt.Printf("%s #%s [raid] %s raiding with %d viewers\n", stamp(), ev.Channel.Name(), ev.User.DisplayName, ev.ViewerCount)
	})
	client.OnBan(func(ev tmi.BanEvent) {
		fmt.Printf("%s #%s [ban] %s\n", stamp(), ev.Channel.Name(), ev.UserName)
	})
	client.OnTimeout(func(ev tmi.TimeoutEvent) {
		fmt.Printf("%s #%s [timeout] %s for %s\n", stamp(), ev.Channel.Name(), ev.UserName, ev.Duration)
	})
	client.OnChatCleared(func(ev tmi.ChatClearedEvent) {
		fmt.Printf("%s #%s [chat cleared]\n", stamp(), ev.Channel.Name())
	})
	client.OnDeleteMessage(func(ev tmi.DeleteMessageEvent) {
		fmt.Printf("%s #%s [deleted] <%s> %s\n", stamp(), ev.Channel.Name(), ev.User, ev.Text)
	})
}

type config struct {
	token    string
	channels []string
	logLevel slog.Level
}

// loadConfig reads the ini config. A missing file is not an error; every
// setting has a usable default.
//
//	[auth]
//	token = abcdefgh12345678
//
//	[chat]
//	channels = sodapoppin, pajlada
//
//	[log]
//	level = info
func loadConfig(path string) (config, error) {
	cfg := config{logLevel: slog.LevelInfo}
	if path == "" {
		return cfg, nil
	}
	f, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.token = f.Section("auth").Key("token").String()
	for _, name := range f.Section("chat").Key("channels").Strings(",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.channels = append(cfg.channels, name)
		}
	}
	if lvl := f.Section("log").Key("level").String(); lvl != "" {
		if err := cfg.logLevel.UnmarshalText([]byte(lvl)); err != nil {
			return cfg, fmt.Errorf("config %s: bad log level %q", path, lvl)
		}
	}
	return cfg, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tmi-chat", "config.ini")
}
