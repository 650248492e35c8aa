package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Setup   SetupCommand   `command:"setup" description:"Scan for the carriage servos and calibrate them"`
	Emboss  EmbossCommand  `command:"emboss" description:"Emboss words in Braille"`
	Listen  ListenCommand  `command:"listen" description:"Emboss every line received on a serial port"`
	Plan    PlanCommand    `command:"plan" description:"Print the motion commands for words"`
	Preview PreviewCommand `command:"preview" description:"Show words as Braille cells"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "SenseDot - Braille embosser control CLI"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
