package chamber

import (
	"image/color"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/valve"
)

type fakeThermometer struct {
	value measure.Measurement
	reads int
}

func (f *fakeThermometer) Temperature() measure.Measurement {
	f.reads++
	return f.value
}

type fakeClimate struct {
	temperature measure.Measurement
	humidity    measure.Measurement
	reads       int
}

func (f *fakeClimate) Climate() (measure.Measurement, measure.Measurement) {
	f.reads++
	return f.temperature, f.humidity
}

type fakeValve struct {
	commands []valve.Command
}

func (f *fakeValve) SetValve(cmd valve.Command) {
	f.commands = append(f.commands, cmd)
}

func (f *fakeValve) last() valve.Command {
	if len(f.commands) == 0 {
		return valve.Closed
	}
	return f.commands[len(f.commands)-1]
}

type shown struct {
	color      color.RGBA
	brightness indicator.Brightness
}

type fakeLED struct {
	shows []shown
}

func (f *fakeLED) Show(c color.RGBA, b indicator.Brightness) {
	f.shows = append(f.shows, shown{color: c, brightness: b})
}

func (f *fakeLED) last() shown {
	return f.shows[len(f.shows)-1]
}

type fakeLink struct {
	in  []string
	out []string
}

func (f *fakeLink) Poll() (string, bool) {
	if len(f.in) == 0 {
		return "", false
	}
	line := f.in[0]
	f.in = f.in[1:]
	return line, true
}

func (f *fakeLink) WriteLine(line string) {
	f.out = append(f.out, line)
}

type fakeObserver struct {
	snapshots []Snapshot
}

func (f *fakeObserver) Observe(s Snapshot) {
	f.snapshots = append(f.snapshots, s)
}
