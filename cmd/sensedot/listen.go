package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"go.bug.st/serial"

	"github.com/sensedot/sensedot/pkg/emboss"
)

const listenPrompt = "Ingrese la palabra a traducir en Braille:\n"

type ListenCommand struct {
	CarriageOptions

	Port string `long:"port" required:"true" description:"Serial port to read words from"`
	Baud int    `long:"baud" default:"115200" description:"Baud rate of the input port"`
}

// serveWords reads one word per line from in, embosses it and reports on out.
// It returns when in is exhausted or ctx is cancelled.
func serveWords(ctx context.Context, ctrl *emboss.Controller, in io.Reader, out io.Writer, upper bool) error {
	if _, err := io.WriteString(out, listenPrompt); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		if upper {
			word = strings.ToUpper(word)
		}

		fmt.Fprintf(out, "Traduciendo y troquelando: %s\n", word)
		if err := ctrl.Run(ctx, word); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "Listo: %s\n", word)
		io.WriteString(out, listenPrompt)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read words: %w", err)
	}
	return ctx.Err()
}

func (c *ListenCommand) Execute(args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	car, err := c.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := car.finish(c.Home); err != nil {
			log.Printf("Warning: %v", err)
		}
	}()

	ctrl, err := emboss.NewController(emboss.Config{
		Actuator: car,
		Layout:   cfg.Layout,
		Settle:   cfg.Timing.SettleDelay,
	})
	if err != nil {
		return err
	}

	port, err := serial.Open(c.Port, &serial.Mode{BaudRate: c.Baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", c.Port, err)
	}

	// Closing the port unblocks the reader on interrupt
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	go func() {
		for msg := range ctrl.Logs() {
			log.Println(msg)
		}
	}()

	log.Printf("Listening for words on %s at %d baud (carriage: %s)", c.Port, c.Baud, car.name)
	err = serveWords(ctx, ctrl, port, port, c.Upper)
	if errors.Is(err, context.Canceled) {
		log.Println("Stopped.")
		return nil
	}
	return err
}
