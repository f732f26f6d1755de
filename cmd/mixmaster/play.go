package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	mixmaster "github.com/tphakala/go-audio-mixmaster"
	"github.com/tphakala/go-audio-mixmaster/internal/speaker"
	"go.uber.org/zap"
)

type playCmd struct {
	ChainFlags `embed:""`

	DeviceRate int           `name:"device-rate" default:"48000" env:"MIXMASTER_DEVICE_RATE" help:"Output device sample rate; assets are converted to it"`
	Latency    time.Duration `default:"100ms" env:"MIXMASTER_LATENCY" help:"Speaker buffer length"`
	ExportDir  string        `name:"export-dir" default:"." type:"existingdir" env:"MIXMASTER_EXPORT_DIR" help:"Where export writes files"`
	Input      string        `arg:"" help:"WAV file path or http(s) URL"`
}

func (c *playCmd) Run(logger *zap.Logger) error {
	params, err := c.params()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	device := speaker.New(c.Latency, logger)
	m := mixmaster.NewMonitor(device,
		mixmaster.WithLogger(logger),
		mixmaster.WithSessionRate(c.DeviceRate),
		mixmaster.WithInitialParams(params),
		mixmaster.WithStateListener(func(s mixmaster.State) {
			fmt.Printf("[%s]\n", s)
		}),
	)
	defer func() { _ = m.Close() }()

	if err := m.Load(ctx, c.Input); err != nil {
		return err
	}

	session := &session{
		monitor: m,
		exporter: &mixmaster.Exporter{
			// Local sessions have no export quota.
			Gate:   mixmaster.AdminOverride{},
			Saver:  mixmaster.DirSaver{Dir: c.ExportDir, Logger: logger},
			Logger: logger,
		},
		out: os.Stdout,
	}
	fmt.Println(helpText)
	return session.run(ctx, os.Stdin)
}

const helpText = `Commands: play, stop, gain <0..2>, low|mid|high <dB>, params, export <title>, quit`

// session reads monitor commands line by line.
type session struct {
	monitor  *mixmaster.Monitor
	exporter *mixmaster.Exporter
	out      io.Writer
}

var errQuit = errors.New("quit")

// run executes commands from r until quit, EOF or ctx is done. Command
// errors are reported and do not end the session.
func (s *session) run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := s.execute(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				_, _ = fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
	}
}

// execute runs one command line.
func (s *session) execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "play":
		return s.monitor.Play()
	case "stop":
		s.monitor.Stop()
		return nil
	case "gain", "low", "mid", "high":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <value>", cmd)
		}
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		return s.set(cmd, v)
	case "params":
		_, _ = fmt.Fprintln(s.out, s.monitor.Params())
		return nil
	case "export":
		if len(args) == 0 {
			return errors.New("usage: export <title>")
		}
		name, err := s.exporter.ExportSnapshot(ctx, s.monitor, strings.Join(args, " "))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(s.out, "saved %s\n", name)
		return nil
	case "help":
		_, _ = fmt.Fprintln(s.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (s *session) set(name string, v float64) error {
	switch name {
	case "gain":
		return s.monitor.SetGain(v)
	case "low":
		return s.monitor.SetLowEQ(v)
	case "mid":
		return s.monitor.SetMidEQ(v)
	default:
		return s.monitor.SetHighEQ(v)
	}
}
