package tui

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/iqbridge/config"
	"github.com/jrwynneiii/iqbridge/packet"
	"github.com/jrwynneiii/iqbridge/spectrum"
	"github.com/jrwynneiii/iqbridge/stream"
	"github.com/navidys/tvxwidgets"
	"github.com/rivo/tview"
)

// UI is the terminal monitor. Lines typed into its command field go to the
// stream loop's control channel with the same grammar as stdin.
type UI struct {
	app     *tview.Application
	logOut  *tview.TextView
	input   *tview.InputField
	plot    *tvxwidgets.Plot
	drop    *tvxwidgets.UtilModeGauge
	wait    *tvxwidgets.UtilModeGauge
	page    *tview.Flex
	stats   *tview.Table
	v       *view
	conf    config.TuiConf
	lines   chan<- string
	order   binary.ByteOrder
	rateHz  float64
	lastRun time.Time
	lastCnt stream.Counters
}

// New builds the widgets. Call LogWriter before the stream loop is created
// so the loop's logger writes into the log pane.
func New(conf config.TuiConf, lines chan<- string, order binary.ByteOrder, clockHz, sampleRate float64) *UI {
	ui := &UI{
		app:    tview.NewApplication(),
		v:      &view{clockHz: clockHz},
		conf:   conf,
		lines:  lines,
		order:  order,
		rateHz: sampleRate,
	}

	ui.logOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)
	// No Draw here: log writers must never wait on the event loop. The
	// refresh ticker redraws.
	ui.logOut.SetChangedFunc(func() {
		ui.logOut.ScrollToEnd()
	})
	ui.logOut.SetBorder(true).SetTitle("Log Output")

	ui.stats = tview.NewTable().SetContent(&StatsTableData{v: ui.v})
	ui.stats.SetSelectable(false, false).SetBorder(true).SetTitle("Stream")
	tuningTable := tview.NewTable().SetContent(&TuningTableData{v: ui.v})
	tuningTable.SetSelectable(false, false).SetBorder(true).SetTitle("Tuning")

	ui.plot = tvxwidgets.NewPlot()
	ui.plot.SetLineColor([]tcell.Color{tcell.ColorLightSkyBlue})
	ui.plot.SetMarker(tvxwidgets.PlotMarkerBraille)
	ui.plot.SetBorder(true)
	ui.plot.SetTitle("Spectrum (dB)")

	ui.drop = tvxwidgets.NewUtilModeGauge()
	ui.drop.SetLabel("Dropped packets:   ")
	ui.drop.SetLabelColor(tcell.ColorLightSkyBlue)
	ui.drop.SetWarnPercentage(1)
	ui.drop.SetCritPercentage(5)
	ui.drop.SetEmptyColor(tcell.ColorBlack)
	ui.drop.SetBorder(false)

	ui.wait = tvxwidgets.NewUtilModeGauge()
	ui.wait.SetLabel("FIFO waits:        ")
	ui.wait.SetLabelColor(tcell.ColorLightSkyBlue)
	ui.wait.SetWarnPercentage(90)
	ui.wait.SetCritPercentage(99)
	ui.wait.SetEmptyColor(tcell.ColorBlack)
	ui.wait.SetBorder(false)

	gaugeBox := tview.NewFlex()
	gaugeBox.SetDirection(tview.FlexRow)
	gaugeBox.AddItem(ui.drop, 0, 1, false)
	gaugeBox.AddItem(ui.wait, 0, 1, false)
	gaugeBox.SetTitle("Health")
	gaugeBox.SetBorder(true)

	ui.input = tview.NewInputField().
		SetLabel("> ").
		SetPlaceholder("f <Hz> | t <Hz> | d <ip> | s on|off | q")
	ui.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		ui.send(ui.input.GetText())
		ui.input.SetText("")
	})
	ui.input.SetBorder(true).SetTitle("Command")

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(tuningTable, 0, 2, false)
	leftCol.AddItem(ui.stats, 0, 2, false)
	leftCol.AddItem(gaugeBox, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	if conf.EnableSpectrum {
		rightCol.AddItem(ui.plot, 0, 3, false)
	}
	if conf.EnableLogOutput {
		rightCol.AddItem(ui.logOut, 0, 2, false)
	}

	body := tview.NewFlex().SetDirection(tview.FlexColumn)
	body.AddItem(leftCol, 0, 2, false)
	body.AddItem(rightCol, 0, 5, false)

	ui.page = tview.NewFlex().SetDirection(tview.FlexRow)
	ui.page.AddItem(body, 0, 1, false)
	ui.page.AddItem(ui.input, 3, 0, true)
	return ui
}

// LogWriter is where log output should go while the UI owns the terminal.
func (ui *UI) LogWriter() io.Writer {
	if !ui.conf.EnableLogOutput {
		return io.Discard
	}
	return ui.logOut
}

func (ui *UI) send(line string) {
	select {
	case ui.lines <- line:
	default:
		log.Warn("Command queue full, dropping", "line", line)
	}
}

// Run drives loop on its own goroutine and the UI on this one. Leaving the UI
// sends a quit command; Run returns once the loop has stopped.
func (ui *UI) Run(ctx context.Context, loop *stream.Loop) error {
	ui.stats.SetTitle("Stream " + loop.Session.String())
	ui.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyCtrlC {
			ui.send("q")
			return nil
		}
		return ev
	})

	if ui.conf.EnableSpectrum {
		loop.Tap = make(chan []byte, 1)
	}
	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
		ui.app.Stop()
	}()

	refreshCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ui.refresh(refreshCtx, loop)

	err := ui.app.SetRoot(ui.page, true).EnableMouse(true).Run()
	select {
	case ui.lines <- "q":
	case <-loopDone:
	}
	<-loopDone
	return err
}

func (ui *UI) refresh(ctx context.Context, loop *stream.Loop) {
	every := time.Duration(ui.conf.RefreshMs) * time.Millisecond
	if every <= 0 {
		every = 500 * time.Millisecond
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		ui.update(loop)
	}
}

func (ui *UI) update(loop *stream.Loop) {
	now := time.Now()
	counters := loop.Stats.Snapshot()

	var bins []float64
	select {
	case payload := <-loop.Tap:
		if pkt, err := packet.Parse(payload, ui.order); err == nil {
			bins = spectrum.Compute(pkt.Samples)
		}
	default:
	}

	ui.v.Lock()
	if !ui.lastRun.IsZero() {
		ui.v.rate = float64(counters.Sent-ui.lastCnt.Sent) / now.Sub(ui.lastRun).Seconds()
	}
	ui.lastRun, ui.lastCnt = now, counters
	ui.v.counters = counters
	ui.v.tuning = loop.Tuning()
	ui.v.state = stream.Idle
	if ui.v.tuning.Streaming {
		ui.v.state = stream.Active
	}
	if len(bins) > 0 {
		_, ui.v.peakHz = spectrum.Peak(bins, ui.rateHz)
		ui.v.havePeak = true
	}
	ui.v.Unlock()

	attempts := counters.Sent + counters.Dropped
	iterations := attempts + counters.Underruns
	ui.app.QueueUpdateDraw(func() {
		if attempts > 0 {
			ui.drop.SetValue(100 * float64(counters.Dropped) / float64(attempts))
		}
		if iterations > 0 {
			ui.wait.SetValue(100 * float64(counters.Underruns) / float64(iterations))
		}
		if len(bins) > 0 {
			ui.plot.SetData([][]float64{bins})
		}
	})
}
