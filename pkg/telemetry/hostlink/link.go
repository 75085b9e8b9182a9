package hostlink

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// Link writes protocol lines to the host and reads lines back.
type Link struct {
	// Raw enables ECU_RAW dumps after each ECU_DATA line.
	Raw bool

	port  io.ReadWriteCloser
	wlock sync.Mutex
}

// Open opens a serial port in 8N1 at baud.
func Open(name string, baud int) (*Link, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// New creates a Link over any stream.
func New(port io.ReadWriteCloser) *Link {
	return &Link{port: port}
}

// Close implements io.Closer.
func (l *Link) Close() error {
	return l.port.Close()
}

// WriteLine writes a line terminated by CRLF.
func (l *Link) WriteLine(line string) error {
	l.wlock.Lock()
	defer l.wlock.Unlock()
	_, err := io.WriteString(l.port, line+"\r\n")
	return err
}

// Publish forwards a telemetry message as protocol lines. Unknown
// messages are ignored.
func (l *Link) Publish(msg fx.Message) error {
	switch m := msg.(type) {
	case *msgs.FuelRate:
		return l.WriteLine(FormatFuel(m.LbPerHour))
	case *msgs.ECUData:
		decoded := m.Message()
		if err := l.WriteLine(FormatECUData(decoded)); err != nil {
			return err
		}
		if l.Raw {
			return l.WriteLine(FormatECURaw(decoded.Bytes()))
		}
	case *msgs.Heartbeat:
		return l.WriteLine(LineHeartbeat)
	}
	return nil
}

// Run implements Runnable. It announces readiness and logs whatever
// the host sends back until the context is canceled.
func (l *Link) Run(ctx context.Context) error {
	if err := l.WriteLine(LineReady); err != nil {
		return err
	}
	return l.ReadLines(ctx, func(line *Line, err error) {
		if err != nil {
			glog.V(2).Infof("host: %v", err)
			return
		}
		glog.V(2).Infof("host: line kind %d", line.Kind)
	})
}

// ReadLines parses incoming lines until EOF or cancellation. The port
// is closed when the context is canceled to unblock the reader.
func (l *Link) ReadLines(ctx context.Context, fn func(*Line, error)) error {
	return fx.RunWithContextCloser(ctx, l.port, func() error {
		scanner := bufio.NewScanner(l.port)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			fn(ParseLine(text))
		}
		return scanner.Err()
	})
}
