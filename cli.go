package main

var cli struct {
	Verbose bool   `help:"Prints debug output by default"`
	Config  string `help:"Path to an HCL config file" type:"path"`
	Stream  struct {
		Dest     string   `arg:"" help:"IPv4 address to send packets to"`
		Fake     *float64 `help:"Initial fake oscillator frequency in Hz"`
		Tune     *float64 `help:"Initial tuning oscillator frequency in Hz"`
		Start    bool     `help:"Start streaming without waiting for 's on'"`
		Simulate bool     `help:"Use the software radio instead of mapping the device"`
		Tui      bool     `help:"Run the terminal monitor and read commands from it instead of stdin"`
	} `cmd:"" help:"Bridge FIFO samples to UDP, reading control commands from stdin"`
	Probe struct {
		Simulate bool `help:"Probe the software radio instead of mapping the device"`
	} `cmd:"" help:"Map the radio registers and report the FIFO fill level"`
	Listen struct {
		Port  int `help:"UDP port to listen on (defaults to stream.port)"`
		Count int `short:"n" help:"Stop after this many packets, 0 runs until interrupted"`
	} `cmd:"" help:"Receive sample packets and report sequence gaps"`
}
