// Package comm connects the terminal core to the verifier link.
package comm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l1/comm/serial"
	"github.com/robotalks/gate.go/pkg/l1/comm/websocket"
)

// LineTerminator is appended to every transmitted line.
const LineTerminator = "\r\n"

// LineWriter implements terminal.Transmitter over a byte stream.
type LineWriter struct {
	Writer io.Writer

	lock sync.Mutex
}

// NewLineWriter creates a LineWriter.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{Writer: w}
}

// SendLine implements terminal.Transmitter. It blocks until the line is
// written out.
func (w *LineWriter) SendLine(text string) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	_, err := io.WriteString(w.Writer, text+LineTerminator)
	return err
}

// Pump feeds received bytes one at a time into the receive interrupt.
type Pump struct {
	Reader io.Reader
	// RX is the receive interrupt, normally terminal.Peripherals.
	RX io.Writer
}

// Run implements Runnable.
func (p *Pump) Run(ctx context.Context) error {
	reader := bufio.NewReader(p.Reader)
	var b [1]byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c, err := reader.ReadByte()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		b[0] = c
		if _, err := p.RX.Write(b[:]); err != nil {
			return fmt.Errorf("rx: %w", err)
		}
	}
}

// ErrLinkDown is returned by SendLine while the link is reconnecting.
var ErrLinkDown = errors.New("link down")

// DefaultRetryInterval is the delay before reopening a lost link.
const DefaultRetryInterval = time.Second

// DialFunc opens a byte stream by URL.
type DialFunc func(linkURL string) (io.ReadWriteCloser, error)

// Link is the verifier link. A lost connection is reopened by the receiver
// Runnable, the terminal keeps running meanwhile.
type Link struct {
	URL           string
	Dial          DialFunc
	RetryInterval time.Duration

	lock   sync.Mutex
	conn   io.ReadWriteCloser
	writer *LineWriter
}

// NewLink creates a Link on an opened connection. A nil conn is opened by
// the receiver Runnable.
func NewLink(linkURL string, conn io.ReadWriteCloser, dial DialFunc) *Link {
	l := &Link{URL: linkURL, Dial: dial, RetryInterval: DefaultRetryInterval}
	l.attach(conn)
	return l
}

// Open opens a link by URL:
//
//   serial:///dev/ttyUSB0?baud=9600
//   ws://host:port/path
func Open(linkURL string) (*Link, error) {
	conn, err := Dial(linkURL)
	if err != nil {
		return nil, err
	}
	glog.Infof("link %s opened", linkURL)
	return NewLink(linkURL, conn, Dial), nil
}

// Dial opens the byte stream selected by the URL scheme.
func Dial(linkURL string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(linkURL)
	if err != nil {
		return nil, fmt.Errorf("invalid link URL: %v", err)
	}
	switch u.Scheme {
	case "serial", "":
		conf := serial.NewConfig()
		conf.Device = u.Path
		if val := u.Query().Get("baud"); val != "" {
			if conf.Baud, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("invalid baud %q: %v", val, err)
			}
		}
		port, err := conf.Open()
		if err != nil {
			return nil, err
		}
		return port, nil
	case "ws", "wss":
		conn, err := websocket.Dial(linkURL)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unknown link URL scheme: %q", u.Scheme)
}

// SendLine implements terminal.Transmitter.
func (l *Link) SendLine(text string) error {
	l.lock.Lock()
	w := l.writer
	l.lock.Unlock()
	if w == nil {
		return ErrLinkDown
	}
	return w.SendLine(text)
}

// Receiver creates the Runnable pumping received bytes into rx. It only
// returns when ctx is done.
func (l *Link) Receiver(rx io.Writer) fx.Runnable {
	return fx.NamedRun("link-rx", runnableFunc(func(ctx context.Context) error {
		return l.receive(ctx, rx)
	}))
}

func (l *Link) receive(ctx context.Context, rx io.Writer) error {
	for {
		conn := l.current()
		if conn == nil {
			var err error
			if conn, err = l.reopen(); err != nil {
				glog.Warningf("link %s reopen: %v", l.URL, err)
				if err := l.backoff(ctx); err != nil {
					return err
				}
				continue
			}
		}
		pump := &Pump{Reader: conn, RX: rx}
		err := fx.RunWithContextCloser(ctx, conn, func() error {
			return pump.Run(ctx)
		})
		l.detach(conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Warningf("link %s lost: %v", l.URL, err)
		if err := l.backoff(ctx); err != nil {
			return err
		}
	}
}

func (l *Link) reopen() (io.ReadWriteCloser, error) {
	if l.Dial == nil {
		return nil, fmt.Errorf("no dialer for %s", l.URL)
	}
	conn, err := l.Dial(l.URL)
	if err != nil {
		return nil, err
	}
	glog.Infof("link %s reopened", l.URL)
	l.attach(conn)
	return conn, nil
}

func (l *Link) backoff(ctx context.Context) error {
	interval := l.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(interval):
		return nil
	}
}

func (l *Link) current() io.ReadWriteCloser {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.conn
}

func (l *Link) attach(conn io.ReadWriteCloser) {
	l.lock.Lock()
	l.conn, l.writer = conn, nil
	if conn != nil {
		l.writer = NewLineWriter(conn)
	}
	l.lock.Unlock()
}

func (l *Link) detach(conn io.ReadWriteCloser) {
	l.lock.Lock()
	if l.conn == conn {
		l.conn, l.writer = nil, nil
	}
	l.lock.Unlock()
}

// Close closes the current connection.
func (l *Link) Close() error {
	l.lock.Lock()
	conn := l.conn
	l.conn, l.writer = nil, nil
	l.lock.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}

type runnableFunc func(context.Context) error

func (f runnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}
