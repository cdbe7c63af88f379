package main

/*-------------------------------------------------------------------
 *
 * Purpose:	Command line front end for the Olivia soft modem:
 *		loads configuration, wires up the Controller, and
 *		either runs an interactive keyboard-to-air session or
 *		sends a single message and exits.
 *
 *--------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kd9xyz/oliviamodem/config"
	"github.com/kd9xyz/oliviamodem/modem"
)

func main() {
	var configFile = pflag.StringP("config-file", "c", "", "YAML configuration file. Unset options keep their defaults.")
	var sampleRate = pflag.IntP("sample-rate", "r", 0, "Audio sample rate, per sec. 0 keeps config/default.")
	var symbols = pflag.IntP("symbols", "s", 0, "Number of MFSK tones, a power of two. 0 keeps config/default.")
	var bandwidth = pflag.IntP("bandwidth", "b", 0, "Occupied bandwidth in Hz. 0 keeps config/default.")
	var centreFreq = pflag.IntP("centre-freq", "f", 0, "Centre audio frequency in Hz. 0 keeps config/default.")
	var inputDevice = pflag.StringP("input-device", "i", "", "PortAudio input device name.")
	var outputDevice = pflag.StringP("output-device", "o", "", "PortAudio output device name.")
	var pttBackend = pflag.String("ptt-backend", "", "PTT backend: none, gpio, or hamlib.")
	var message = pflag.StringP("send", "m", "", "Send this message and exit, rather than running interactively.")
	var verbose = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "oliviamodem - an Olivia MFSK soft modem for HF digital messaging.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: oliviamodem [options]\n\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()

	if *configFile != "" {
		loaded, err := loadConfig(*configFile)
		if err != nil {
			logger.Fatal("load config", "file", *configFile, "err", err)
		}

		cfg = loaded
	}

	applyOverrides(&cfg, sampleRate, symbols, bandwidth, centreFreq, inputDevice, outputDevice, pttBackend)

	c, err := modem.New(cfg, logger, func(e modem.Event) {
		switch e.Kind {
		case modem.EventStateChanged:
			logger.Info("state", "now", e.State)
		case modem.EventMessageReceived:
			fmt.Printf("< %s\n", e.Message)
		}
	})
	if err != nil {
		logger.Fatal("construct modem", "err", err)
	}

	if err := c.Start(); err != nil {
		logger.Fatal("start modem", "err", err)
	}

	defer func() {
		if err := c.Stop(); err != nil {
			logger.Error("stop modem", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	if *message != "" {
		if err := c.Send(*message); err != nil {
			logger.Fatal("send", "err", err)
		}

		return
	}

	done := make(chan struct{})
	go runInteractive(c, logger, done)

	select {
	case <-sig:
		logger.Info("shutting down")
	case <-done:
	}
}

func loadConfig(path string) (config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

func applyOverrides(cfg *config.Config, sampleRate, symbols, bandwidth, centreFreq *int, inputDevice, outputDevice, pttBackend *string) {
	if *sampleRate != 0 {
		cfg.SampleRate = *sampleRate
	}

	if *symbols != 0 {
		cfg.Symbols = *symbols
	}

	if *bandwidth != 0 {
		cfg.Bandwidth = *bandwidth
	}

	if *centreFreq != 0 {
		cfg.CentreFreq = *centreFreq
	}

	if *inputDevice != "" {
		cfg.InputDevice = *inputDevice
	}

	if *outputDevice != "" {
		cfg.OutputDevice = *outputDevice
	}

	if *pttBackend != "" {
		cfg.PTTBackend = *pttBackend
	}
}

/*-------------------------------------------------------------------
 *
 * Name:	runInteractive
 *
 * Purpose:	Keyboard-to-air mode: put the terminal into raw mode so
 *		keystrokes are read one at a time, echo each locally
 *		(handling backspace), and transmit the typed line on
 *		Enter. Received messages
 *		are printed by the onEvent callback in main, not here.
 *
 *--------------------------------------------------------------------*/

func runInteractive(c *modem.Controller, logger *log.Logger, done chan<- struct{}) {
	defer close(done)

	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		logger.Warn("raw keyboard mode unavailable, falling back to line input", "err", err)
		runLineInput(c, logger)

		return
	}
	defer tty.Close()

	fmt.Println("Type a message, Enter to send, Ctrl-D to quit.")

	buf := make([]byte, 1)
	var line []byte

	for {
		n, err := tty.Read(buf)
		if err != nil || n == 0 {
			return
		}

		switch buf[0] {
		case '\r', '\n':
			fmt.Print("\r\n")

			if len(line) > 0 {
				if err := c.Send(string(line)); err != nil {
					logger.Error("send", "err", err)
				}

				line = line[:0]
			}
		case 4: // Ctrl-D
			return
		case 127, 8: // backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}
		default:
			line = append(line, buf[0])
			os.Stdout.Write(buf)
		}
	}
}

// runLineInput is the non-interactive-terminal fallback: ordinary
// buffered stdin, one message per line.
func runLineInput(c *modem.Controller, logger *log.Logger) {
	fmt.Println("Type a message and press Enter to send. Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			if err := c.Send(line); err != nil {
				logger.Error("send", "err", err)
			}
		}
	}
}
