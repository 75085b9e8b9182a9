// Package hostlink speaks the text line protocol of the host display
// controller over a serial port.
package hostlink

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/aldl.go/pkg/aldl"
)

// Line prefixes.
const (
	PrefixFuel    = "ALDL_FUEL:"
	PrefixECUData = "ECU_DATA:"
	PrefixECURaw  = "ECU_RAW:"

	LineReady     = "ESP32_ALDL:READY"
	LineHeartbeat = "ESP32_ALDL:HEARTBEAT"
)

// MaxPlausibleFuel is the largest lb/hr the host accepts.
const MaxPlausibleFuel = 50.0

// Kind is the type of a line.
type Kind int

// Kinds
const (
	KindUnknown Kind = iota
	KindFuel
	KindReady
	KindHeartbeat
	KindECUData
	KindECURaw
)

var (
	// ErrUnknownLine indicates the line has no known prefix.
	ErrUnknownLine = errors.New("unknown line")
	// ErrImplausibleFuel indicates a fuel value outside [0, MaxPlausibleFuel].
	ErrImplausibleFuel = errors.New("implausible fuel value")
)

// Line is a parsed protocol line.
type Line struct {
	Kind Kind
	// Fuel is the lb/hr value of a KindFuel line.
	Fuel float64
	// ECU holds the fields of a KindECUData line, CapturedAt is unset.
	ECU aldl.Message
	// Raw holds the bytes of a KindECURaw line.
	Raw []byte
}

// FormatFuel renders a sample line.
func FormatFuel(lbPerHour float64) string {
	return fmt.Sprintf("%s%.2f", PrefixFuel, lbPerHour)
}

// FormatECUData renders the decoded fields of a message.
func FormatECUData(m aldl.Message) string {
	return fmt.Sprintf("%sOD=%d,SHIFT=%d,CYL=%X,FUEL=%X,DIST=%X,SCALE=%X",
		PrefixECUData, b2i(m.Overdrive()), b2i(m.ShiftLight()),
		m.Cylinders, m.FuelCounter, m.DistanceCounter, m.FuelConstant)
}

// FormatECURaw renders message bytes as hex.
func FormatECURaw(data []byte) string {
	var b strings.Builder
	b.WriteString(PrefixECURaw)
	for _, v := range data {
		fmt.Fprintf(&b, "%02X ", v)
	}
	return b.String()
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ParseLine parses a line without its terminator.
func ParseLine(str string) (*Line, error) {
	str = strings.TrimSpace(str)
	switch {
	case strings.HasPrefix(str, PrefixFuel):
		v, err := strconv.ParseFloat(strings.TrimSpace(str[len(PrefixFuel):]), 64)
		if err != nil {
			return nil, fmt.Errorf("fuel value: %w", err)
		}
		if v < 0 || v > MaxPlausibleFuel {
			return nil, fmt.Errorf("%w: %v", ErrImplausibleFuel, v)
		}
		return &Line{Kind: KindFuel, Fuel: v}, nil
	case strings.HasPrefix(str, LineReady):
		return &Line{Kind: KindReady}, nil
	case strings.HasPrefix(str, LineHeartbeat):
		return &Line{Kind: KindHeartbeat}, nil
	case strings.HasPrefix(str, PrefixECUData):
		return parseECUData(str[len(PrefixECUData):])
	case strings.HasPrefix(str, PrefixECURaw):
		return parseECURaw(str[len(PrefixECURaw):])
	}
	return nil, ErrUnknownLine
}

func parseECUData(str string) (*Line, error) {
	line := &Line{Kind: KindECUData}
	for _, field := range strings.Split(str, ",") {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("ECU_DATA field %q", field)
		}
		base := 16
		if kv[0] == "OD" || kv[0] == "SHIFT" {
			base = 2
		}
		v, err := strconv.ParseUint(kv[1], base, 8)
		if err != nil {
			return nil, fmt.Errorf("ECU_DATA %s: %w", kv[0], err)
		}
		switch kv[0] {
		case "OD":
			if v != 0 {
				line.ECU.Status |= aldl.StatusOverdrive
			}
		case "SHIFT":
			if v != 0 {
				line.ECU.Status |= aldl.StatusShiftLight
			}
		case "CYL":
			line.ECU.Cylinders = byte(v)
		case "FUEL":
			line.ECU.FuelCounter = byte(v)
		case "DIST":
			line.ECU.DistanceCounter = byte(v)
		case "SCALE":
			line.ECU.FuelConstant = byte(v)
		}
	}
	return line, nil
}

func parseECURaw(str string) (*Line, error) {
	line := &Line{Kind: KindECURaw}
	for _, tok := range strings.Fields(str) {
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("ECU_RAW byte %q: %w", tok, err)
		}
		line.Raw = append(line.Raw, byte(v))
	}
	return line, nil
}
