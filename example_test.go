package tmi_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/tmi-go/tmi"
)

// This example connects anonymously and prints chat messages until interrupted.
func Example() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := tmi.NewClient()
	client.InitialChannels = []string{"sodapoppin"}
	client.OnMessage(func(ev tmi.MessageEvent) {
		fmt.Printf("[%s] %s: %s\n", ev.Channel.Name(), ev.User.DisplayName, ev.Message.Text)
	})

	if err := client.Connect(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

// This example runs a bot that replies to a command in chat.
func ExampleClient_Say() {
	ctx := context.Background()

	client := tmi.NewClient()
	client.Token = tmi.NewToken(os.Getenv("TWITCH_TOKEN"))
	client.InitialChannels = []string{"somechannel"}
	client.OnMessage(func(ev tmi.MessageEvent) {
		if ev.Message.Text != "!ping" {
			return
		}
		// replies block until acknowledged, so they get their own goroutine
		go func() {
			if _, err := ev.Reply(ctx, "pong"); err != nil {
				log.Println("reply failed:", err)
			}
		}()
	})

	if err := client.Connect(ctx); err != nil {
		log.Fatal(err)
	}
}

// This example watches a channel's moderation settings.
func ExampleClient_OnRoomState() {
	client := tmi.NewClient()
	client.InitialChannels = []string{"somechannel"}
	client.OnRoomState(func(ev tmi.RoomStateEvent) {
		if ev.IsInitial {
			fmt.Printf("joined %s: %+v\n", ev.Channel.Name(), ev.State)
		}
	})
	client.OnSlowMode(func(ev tmi.DurationModeEvent) {
		if ev.IsEnabled {
			fmt.Printf("slow mode on: %ds\n", ev.Value)
		} else {
			fmt.Println("slow mode off")
		}
	})

	if err := client.Connect(context.Background()); err != nil {
		log.Fatal(err)
	}
}
