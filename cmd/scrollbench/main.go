// Command scrollbench is a terminal demo of a scrollview: it renders a
// long column of numbered lines and drives the viewport from mousewheel
// and arrow-key input, so the kinetic/bounce/jump behavior can be felt
// interactively instead of only read from test assertions.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kinetex/scrollcore/condition"
	"github.com/kinetex/scrollcore/scrollview"
)

var (
	linesFlag  = flag.Int("lines", 2000, "number of content lines")
	smoothFlag = flag.Bool("smooth", true, "animate stepped mousewheel input and forced jumps")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nscrollbench crashed: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.EnableMouse()

	width, height := screen.Size()
	sv := scrollview.New(scrollview.Config{
		ContentWidth:   200,
		ContentHeight:  uint64(*linesFlag),
		ViewportWidth:  uint64(width),
		ViewportHeight: uint64(height),
		Bounce:         scrollview.BounceFlags{Top: true, Bottom: true, Left: true, Right: true},
	})
	sv.SetInputSource(condition.Mousewheel)
	if *smoothFlag {
		sv.SetOptions(scrollview.OptImpreciseScrollsSmoothly)
	}

	events := make(chan tcell.Event, 16)
	go screen.ChannelEvents(events, nil)

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	var lastReportedErr error

	for {
		select {
		case ev := <-events:
			switch e := ev.(type) {
			case *tcell.EventResize:
				w, h := e.Size()
				sv.SetGeometry(scrollview.Config{
					ContentWidth:   200,
					ContentHeight:  uint64(*linesFlag),
					ViewportWidth:  uint64(w),
					ViewportHeight: uint64(h),
					Bounce:         scrollview.BounceFlags{Top: true, Bottom: true, Left: true, Right: true},
				})
				screen.Sync()
			case *tcell.EventKey:
				switch e.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return
				case tcell.KeyDown:
					sv.AddScrollY(1)
					sv.AddScrollRelease()
				case tcell.KeyUp:
					sv.AddScrollY(-1)
					sv.AddScrollRelease()
				case tcell.KeyHome:
					sv.ForceJump(0, 0)
				case tcell.KeyEnd:
					sv.ForceJump(0, int64(*linesFlag))
				}
			case *tcell.EventMouse:
				switch e.Buttons() {
				case tcell.WheelDown:
					sv.AddScrollY(1)
					sv.AddScrollRelease()
				case tcell.WheelUp:
					sv.AddScrollY(-1)
					sv.AddScrollRelease()
				}
			}
		case <-ticker.C:
			render(screen, sv)
			if err := sv.LastError(); err != nil && err != lastReportedErr {
				fmt.Fprintf(os.Stderr, "scrollcore: %+v\n", err)
				lastReportedErr = err
			}
		}
	}
}

func render(screen tcell.Screen, sv *scrollview.Scrollview) {
	pan := sv.GetPan()
	if !pan.Panned {
		return
	}

	screen.Clear()
	width, height := screen.Size()
	top := sv.GetPosY()

	style := tcell.StyleDefault
	for row := 0; row < height; row++ {
		lineNo := top + int64(row) + 1
		text := strconv.FormatInt(lineNo, 10) + ": scrollcore line"
		for col, r := range text {
			if col >= width {
				break
			}
			screen.SetContent(col, row, r, nil, style)
		}
	}

	statusStyle := tcell.StyleDefault.Reverse(true)
	status := fmt.Sprintf(" phase=%s vy=%.0f ", sv.Phase(), pan.VelocityY)
	for col, r := range status {
		if col >= width {
			break
		}
		screen.SetContent(col, height-1, r, nil, statusStyle)
	}

	screen.Show()
}
