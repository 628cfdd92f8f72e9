// Package protocol implements the line-oriented serial command set.
//
// Commands are matched literally, in this order, first match wins:
//
//	id?                    identification string
//	th?                    humidity threshold, 0 decimals
//	th<number>             set threshold, clamped to [0, 100]
//	open when super humi?  polarity, "1" when opening above threshold
//	open when super humi   open valve when humidity > threshold
//	open when sub humi     open valve when humidity < threshold
//	?                      status line
//	anything else          status line
//
// Set commands produce no reply. Nothing ever produces an error reply.
package protocol

import (
	"strconv"
	"strings"
	"time"

	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/valve"
)

// Identification is the reply to "id?".
const Identification = "Arduino, Ambre chamber"

const (
	cmdIdentify      = "id?"
	cmdThreshold     = "th?"
	prefixThreshold  = "th"
	cmdPolarityQuery = "open when super humi?"
	cmdOpenAbove     = "open when super humi"
	cmdOpenBelow     = "open when sub humi"
	cmdStatus        = "?"
)

// Kind identifies a parsed command.
type Kind uint8

const (
	Unrecognized Kind = iota
	IdentifyQuery
	GetThreshold
	SetThreshold
	GetPolarity
	SetPolarity
	DumpStatus
)

func (k Kind) String() string {
	switch k {
	case IdentifyQuery:
		return "identify"
	case GetThreshold:
		return "get-threshold"
	case SetThreshold:
		return "set-threshold"
	case GetPolarity:
		return "get-polarity"
	case SetPolarity:
		return "set-polarity"
	case DumpStatus:
		return "dump-status"
	default:
		return "unrecognized"
	}
}

// Command is one parsed request. It is consumed right after parsing.
type Command struct {
	Kind Kind
	// Threshold is the requested threshold of SetThreshold, unclamped.
	Threshold float32
	// OpenWhenAbove is the requested polarity of SetPolarity.
	OpenWhenAbove bool
}

// Parse turns one trimmed line into a Command. It never fails: unknown input
// yields Unrecognized, which dispatches as DumpStatus.
func Parse(line string) Command {
	switch {
	case line == cmdIdentify:
		return Command{Kind: IdentifyQuery}
	case line == cmdThreshold:
		return Command{Kind: GetThreshold}
	case strings.HasPrefix(line, prefixThreshold):
		if x, ok := parseNumber(line[len(prefixThreshold):]); ok {
			return Command{Kind: SetThreshold, Threshold: x}
		}
	case line == cmdPolarityQuery:
		return Command{Kind: GetPolarity}
	case line == cmdOpenAbove:
		return Command{Kind: SetPolarity, OpenWhenAbove: true}
	case line == cmdOpenBelow:
		return Command{Kind: SetPolarity, OpenWhenAbove: false}
	case line == cmdStatus:
		return Command{Kind: DumpStatus}
	}
	return Command{Kind: Unrecognized}
}

// parseNumber accepts a plain decimal number. Words such as "inf" or "nan"
// that strconv would take are not numbers here.
func parseNumber(s string) (float32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
	default:
		return 0, false
	}
	x, err := strconv.ParseFloat(s, 32)
	if err != nil {
		// Out-of-range values still parse to ±Inf and get clamped later.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return 0, false
		}
	}
	return float32(x), true
}

// Status is the snapshot reported by the status line.
type Status struct {
	Uptime    time.Duration
	DS18Temp  measure.Measurement
	DHT22Temp measure.Measurement
	DHT22Humi measure.Measurement
	ValveOpen bool
}

// Line formats s as "ms\tds18\tdht_temp\tdht_humi\tvalve".
func (s Status) Line() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(s.Uptime.Milliseconds(), 10))
	b.WriteByte('\t')
	b.WriteString(s.DS18Temp.Format(1))
	b.WriteByte('\t')
	b.WriteString(s.DHT22Temp.Format(1))
	b.WriteByte('\t')
	b.WriteString(s.DHT22Humi.Format(1))
	b.WriteByte('\t')
	b.WriteString(flag(s.ValveOpen))
	return b.String()
}

// Dispatch applies cmd to cfg and returns the reply, if any. ok is false for
// commands that do not answer.
func Dispatch(cmd Command, cfg *valve.Config, status Status) (reply string, ok bool) {
	switch cmd.Kind {
	case IdentifyQuery:
		return Identification, true
	case GetThreshold:
		return measure.New(cfg.Threshold).Format(0), true
	case SetThreshold:
		cfg.SetThreshold(cmd.Threshold)
		return "", false
	case GetPolarity:
		return flag(cfg.OpenWhenAbove), true
	case SetPolarity:
		cfg.SetPolarity(cmd.OpenWhenAbove)
		return "", false
	default:
		return status.Line(), true
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
