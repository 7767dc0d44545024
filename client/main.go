package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"
	"github.com/wfunc/teenpatti-player/dealer"
	"github.com/wfunc/teenpatti-player/network"
)

type WatchCmd struct {
	Host      string        `default:"localhost:8001" help:"Player agent host:port."`
	Heartbeat time.Duration `default:"10s" help:"Heartbeat interval."`
}

// Run prints every event pushed by the player agent until interrupted.
func (w *WatchCmd) Run() error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: w.Host, Path: "/player/events"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return err
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.DecodePacket(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			if packet.MsgID == network.MsgTypeHeartbeat {
				continue
			}
			log.Printf("<- %s: %s", network.MsgName(packet.MsgID), string(packet.Data))
		}
	}()

	heartbeat, err := network.EncodePacket(network.MsgTypeHeartbeat, nil)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-ticker.C:
			if err := c.WriteMessage(websocket.BinaryMessage, heartbeat); err != nil {
				return err
			}
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return nil
		}
	}
}

type DealerCmd struct {
	URL     string        `default:"http://127.0.0.1:8000" help:"Dealer base URL."`
	Timeout time.Duration `default:"2s" help:"Per-request timeout."`
}

// Run probes each dealer endpoint the agent depends on.
func (d *DealerCmd) Run() error {
	client := dealer.NewClient(d.URL, dealer.Options{Timeout: d.Timeout})
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		return err
	}
	log.Printf("ping: ok")

	if balance, err := client.InitialBalance(ctx); err != nil {
		log.Printf("initial_balance: %v", err)
	} else {
		log.Printf("initial_balance: %d", balance)
	}

	if cards, err := client.ShowCards(ctx); err != nil {
		log.Printf("show_cards: %v", err)
	} else {
		log.Printf("show_cards: %v", cards)
	}

	if pot, err := client.ShowPot(ctx); err != nil {
		log.Printf("show_pot: %v", err)
	} else {
		log.Printf("show_pot: %d", pot)
	}
	return nil
}

var cli struct {
	Watch  WatchCmd  `cmd:"" help:"Stream player agent events."`
	Dealer DealerCmd `cmd:"" help:"Probe the dealer service."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("teenpatti-client"),
		kong.Description("Debug client for the Teen Patti player agent"),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
