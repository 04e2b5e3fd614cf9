package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/jrwynneiii/iqbridge/config"
	"github.com/jrwynneiii/iqbridge/control"
	"github.com/jrwynneiii/iqbridge/packet"
	"github.com/jrwynneiii/iqbridge/radio"
	"github.com/jrwynneiii/iqbridge/stream"
	"github.com/jrwynneiii/iqbridge/tui"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	flags := kong.Parse(&cli,
		kong.Name("iqbridge"),
		kong.Description("Streams I/Q samples from the FPGA receive FIFO to a UDP listener."),
		kong.UsageOnError())
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("Starting iqbridge")

	path := cli.Config
	if path == "" {
		path = config.FindPath()
	}
	conf, err := config.Load(path)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fileLog := setupLogging(conf.Log)
	if fileLog != nil {
		defer fileLog.Close()
	}
	log.Debug("Effective configuration:\n" + spew.Sdump(conf))

	switch flags.Command() {
	case "stream <dest>":
		err = runStream(conf, fileLog)
	case "probe":
		err = runProbe(conf)
	case "listen":
		err = runListen(conf)
	default:
		log.Info("Command not recognized")
	}
	if err != nil {
		log.Error(err)
		if fileLog != nil {
			fileLog.Close()
		}
		os.Exit(1)
	}
}

// setupLogging applies the configured level and, if log.file is set, tees
// output into a rotating file. The returned logger is nil without a file.
func setupLogging(conf config.LogConf) *lumberjack.Logger {
	if !cli.Verbose {
		level, err := log.ParseLevel(conf.Level)
		if err != nil {
			log.Warnf("Unknown log level %q, using info", conf.Level)
			level = log.InfoLevel
		}
		log.SetLevel(level)
	}
	log.SetReportTimestamp(true)
	if conf.File == "" {
		return nil
	}
	lj := &lumberjack.Logger{
		Filename:   conf.File,
		MaxSize:    conf.MaxSizeMB,
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAgeDays,
		Compress:   conf.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	log.Infof("Logging to %s", conf.File)
	return lj
}

func openDevice(conf config.DeviceConf, simulate bool) (radio.Device, error) {
	if simulate || conf.Simulate {
		log.Info("Using simulated radio", "sample_rate", conf.SimSampleRate, "fifo_depth", conf.SimFifoDepth)
		return radio.NewSimulator(conf.ClockHz, conf.SimSampleRate, conf.SimFifoDepth), nil
	}
	base, err := conf.BaseAddr()
	if err != nil {
		return nil, err
	}
	dev, err := radio.OpenMem(conf.Path, base, conf.MapBytes)
	if err != nil {
		return nil, fmt.Errorf("could not map radio registers: %w", err)
	}
	log.Infof("Mapped %#x bytes of %s at %#x", conf.MapBytes, conf.Path, base)
	return dev, nil
}

func pickHz(flag, conf *float64) (float64, bool) {
	switch {
	case flag != nil:
		return *flag, true
	case conf != nil:
		return *conf, true
	}
	return 0, false
}

func runStream(conf config.Conf, fileLog *lumberjack.Logger) error {
	addr, err := netip.ParseAddr(cli.Stream.Dest)
	if err == nil {
		addr = addr.Unmap()
	}
	if err != nil || !addr.Is4() {
		return fmt.Errorf("bad destination IP %q", cli.Stream.Dest)
	}
	order, err := packet.ParseOrder(conf.Stream.ByteOrder)
	if err != nil {
		return err
	}

	dev, err := openDevice(conf.Device, cli.Stream.Simulate)
	if err != nil {
		return err
	}
	r := radio.New(dev, conf.Device.ClockHz)
	defer r.Close()

	sink, err := stream.NewUDPSink(conf.Stream.SocketBuffer)
	if err != nil {
		return fmt.Errorf("could not open UDP socket: %w", err)
	}
	defer sink.Close()

	initial := stream.TuningState{
		Dest:      netip.AddrPortFrom(addr, uint16(conf.Stream.Port)),
		Streaming: cli.Stream.Start || conf.Stream.Start,
	}
	if hz, ok := pickHz(cli.Stream.Fake, conf.Radio.FakeHz); ok {
		initial.FakeHz = hz
		initial.FakePinc = r.SetFake(hz)
	}
	if hz, ok := pickHz(cli.Stream.Tune, conf.Radio.TuneHz); ok {
		initial.TuneHz = hz
		initial.TunePinc = r.SetTune(hz)
	}
	r.Run(conf.Device.ClearTimer)
	if conf.Device.ResetOnExit {
		defer r.Reset()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pk := packet.New(conf.Stream.SamplesPerPacket, order)
	if !cli.Stream.Tui {
		src, err := control.NewFDSource(os.Stdin, nil)
		if err != nil {
			return fmt.Errorf("could not read commands from stdin: %w", err)
		}
		defer src.Close()
		loop := stream.New(r, sink, src, pk, conf.Stream, initial, log.Default())
		loop.Run(ctx)
		return nil
	}

	lines := make(chan string, 16)
	ui := tui.New(conf.Tui, lines, order, conf.Device.ClockHz, conf.Device.SimSampleRate)
	if fileLog != nil {
		log.SetOutput(io.MultiWriter(ui.LogWriter(), fileLog))
	} else {
		log.SetOutput(ui.LogWriter())
	}
	defer log.SetOutput(os.Stderr)
	loop := stream.New(r, sink, control.NewChanSource(lines), pk, conf.Stream, initial, log.Default())
	return ui.Run(ctx, loop)
}

func runProbe(conf config.Conf) error {
	dev, err := openDevice(conf.Device, cli.Probe.Simulate)
	if err != nil {
		return err
	}
	r := radio.New(dev, conf.Device.ClockHz)
	defer r.Close()

	count, ready := fifoLevel(r, conf.Stream.SamplesPerPacket)
	log.Info("FIFO fill level", "samples", count, "packets_ready", ready, "base", conf.Device.Base)
	return nil
}

// fifoLevel reads the count register once and reports how many whole
// packets of n samples it holds. No sample is popped.
func fifoLevel(r *radio.Radio, n int) (count, ready uint32) {
	count = r.FIFOCount()
	return count, count / uint32(n)
}

func runListen(conf config.Conf) error {
	order, err := packet.ParseOrder(conf.Stream.ByteOrder)
	if err != nil {
		return err
	}
	port := cli.Listen.Port
	if port == 0 {
		port = conf.Stream.Port
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	log.Info("Listening for sample packets", "port", port, "order", conf.Stream.ByteOrder)
	var tr packet.Tracker
	buf := make([]byte, 65536)
	for cli.Listen.Count == 0 || tr.Received < uint64(cli.Listen.Count) {
		n, from, err := conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			return err
		}
		pkt, err := packet.Parse(buf[:n], order)
		if err != nil {
			log.Warn("Malformed packet", "from", from, "bytes", n, "err", err)
			continue
		}
		if gap := tr.Observe(pkt.Sequence); gap != 0 {
			log.Warn("Sequence gap", "seq", pkt.Sequence, "lost", gap)
		}
		log.Debug("Packet", "from", from, "seq", pkt.Sequence, "samples", len(pkt.Samples))
	}
	log.Info("Listener done", "received", tr.Received, "lost", tr.Lost)
	return nil
}
