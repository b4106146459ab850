// Command driver is a scripted stand-in for a phone. It connects to a
// running remote controller server, sweeps both sticks in circles, swipes
// across the canvas and presses every catalog action, which is handy when
// developing an embedder without a device at hand.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wricardo/remote-controller/controller/state"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "remote controller server URL")
	duration := flag.Duration("duration", 5*time.Second, "how long to sweep the sticks")
	rate := flag.Duration("rate", 50*time.Millisecond, "interval between gamepad frames")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := NewClient(*baseURL)
	if err := run(ctx, client, *duration, *rate, log.Default()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, client *Client, duration, rate time.Duration, logger *log.Logger) error {
	size, err := client.AreaSize()
	if err != nil {
		return err
	}
	actions, err := client.Actions()
	if err != nil {
		return err
	}
	logger.Printf("Server area %gx%g with %d actions", size.Width, size.Height, len(actions))

	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	if err := sweep(ctx, client, duration, rate); err != nil {
		return err
	}
	// Release the sticks
	if err := client.SendGamepad(state.GamepadCommand{}); err != nil {
		return err
	}

	swipe := state.CanvasTouch{Width: 100, Height: 100, DownX: 10, DownY: 50, UpX: 90, UpY: 50}
	if err := client.Touch(swipe); err != nil {
		return err
	}
	logger.Println("Sent swipe left to right")

	for _, action := range actions {
		if err := client.SubmitAction(action.ID); err != nil {
			return err
		}
		logger.Printf("Pressed %s", action.ID)
	}
	return nil
}

// sweep moves the left stick clockwise and the right stick counter-clockwise
// until duration elapses or ctx is cancelled.
func sweep(ctx context.Context, client *Client, duration, rate time.Duration) error {
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	start := time.Now()
	for time.Since(start) < duration {
		angle := 2 * math.Pi * time.Since(start).Seconds()
		cmd := state.GamepadCommand{
			LeftX:  float32(math.Cos(angle)),
			LeftY:  float32(math.Sin(angle)),
			RightX: float32(math.Cos(-angle)),
			RightY: float32(math.Sin(-angle)),
		}
		if err := client.SendGamepad(cmd); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
