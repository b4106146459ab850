// Command poller embeds the remote controller and prints what connected
// controllers send. It polls the handle the way a game loop would.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wricardo/remote-controller/controller"
	"github.com/wricardo/remote-controller/controller/service"
	"github.com/wricardo/remote-controller/controller/state"
)

func main() {
	addr := flag.String("addr", controller.DefaultAddr, "address to listen on")
	interval := flag.Duration("interval", 20*time.Millisecond, "poll interval")
	flag.Parse()

	server, err := controller.Start(controller.Options{
		Addr:     *addr,
		AreaSize: state.NewAreaSize(1, 2),
		Catalog: state.Catalog{
			state.NewAction("save", "Save game"),
			state.NewAction("load", "Load game"),
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Open http://%s/ on a phone or browser, Ctrl-C to stop", server.Addr())
	poll(ctx, server.Handle(), *interval, log.Default())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// poll prints changes to the gamepad and touch and every action until ctx
// is cancelled or the handle is closed.
func poll(ctx context.Context, handle *service.Handle, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		lastGamepad state.GamepadCommand
		lastTouch   state.CanvasTouch
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if gamepad := handle.LatestGamepad(); gamepad != lastGamepad {
			logger.Printf("gamepad: left=(%.2f, %.2f) right=(%.2f, %.2f)",
				gamepad.LeftX, gamepad.LeftY, gamepad.RightX, gamepad.RightY)
			lastGamepad = gamepad
		}

		if touch, ok := handle.LatestTouch(); ok && touch != lastTouch {
			logger.Printf("touch: down=(%.2f, %.2f) up=(%.2f, %.2f)",
				touch.DownX, touch.DownY, touch.UpX, touch.UpY)
			lastTouch = touch
		}

		for {
			id, ok, err := handle.PollAction()
			if err != nil {
				logger.Printf("controller disconnected: %v", err)
				return
			}
			if !ok {
				break
			}
			logger.Printf("action: %s", id)
		}
	}
}
