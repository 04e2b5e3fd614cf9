package tui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/jrwynneiii/iqbridge/radio"
	"github.com/jrwynneiii/iqbridge/stream"
	"github.com/rivo/tview"
)

// view is what the tables render. It is refreshed from the loop's published
// snapshots on the refresh goroutine and read on the draw goroutine.
type view struct {
	sync.RWMutex
	state    stream.State
	tuning   stream.TuningState
	counters stream.Counters
	rate     float64
	peakHz   float64
	havePeak bool
	clockHz  float64
}

type StatsTableData struct {
	tview.TableContentReadOnly
	v *view
}

type TuningTableData struct {
	tview.TableContentReadOnly
	v *view
}

func (s *StatsTableData) GetRowCount() int {
	return 6
}

func (s *StatsTableData) GetColumnCount() int {
	return 2
}

func (s *StatsTableData) GetCell(row, column int) *tview.TableCell {
	s.v.RLock()
	defer s.v.RUnlock()
	c := s.v.counters
	switch row {
	case 0:
		if column == 0 {
			return tview.NewTableCell("Packets sent:")
		}
		return tview.NewTableCell(fmt.Sprintf("[green]%d", c.Sent))
	case 1:
		if column == 0 {
			return tview.NewTableCell("Packets dropped:")
		}
		if c.Dropped == 0 {
			return tview.NewTableCell("0")
		}
		return tview.NewTableCell(fmt.Sprintf("[red]%d", c.Dropped))
	case 2:
		if column == 0 {
			return tview.NewTableCell("FIFO waits:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", c.Underruns))
	case 3:
		if column == 0 {
			return tview.NewTableCell("Last sequence:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", c.LastSeq))
	case 4:
		if column == 0 {
			return tview.NewTableCell("Packet rate:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.1f/s", s.v.rate))
	case 5:
		if column == 0 {
			return tview.NewTableCell("Commands applied/ignored:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d/%d", c.Applied, c.Ignored))
	}
	return tview.NewTableCell("ERROR")
}

func (t *TuningTableData) GetRowCount() int {
	return 5
}

func (t *TuningTableData) GetColumnCount() int {
	return 2
}

func (t *TuningTableData) GetCell(row, column int) *tview.TableCell {
	t.v.RLock()
	defer t.v.RUnlock()
	st := t.v.tuning
	switch row {
	case 0:
		if column == 0 {
			return tview.NewTableCell("State:")
		}
		color := tcell.ColorGreen
		if t.v.state != stream.Active {
			color = tcell.ColorYellow
		}
		return tview.NewTableCell(t.v.state.String()).SetTextColor(color)
	case 1:
		if column == 0 {
			return tview.NewTableCell("Destination:")
		}
		return tview.NewTableCell(st.Dest.String())
	case 2:
		if column == 0 {
			return tview.NewTableCell("Fake DDS:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.3f Hz [lightskyblue](0x%08x)", radio.HzFromPinc(st.FakePinc, t.v.clockHz), st.FakePinc))
	case 3:
		if column == 0 {
			return tview.NewTableCell("Tune DDS:")
		}
		return tview.NewTableCell(fmt.Sprintf("%.3f Hz [lightskyblue](0x%08x)", radio.HzFromPinc(st.TunePinc, t.v.clockHz), st.TunePinc))
	case 4:
		if column == 0 {
			return tview.NewTableCell("Spectrum peak:")
		}
		if !t.v.havePeak {
			return tview.NewTableCell("-")
		}
		return tview.NewTableCell(fmt.Sprintf("%+.1f Hz", t.v.peakHz))
	}
	return tview.NewTableCell("ERROR")
}
