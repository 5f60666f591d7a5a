package protocol

import (
	"context"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/framework"
)

// LineMsg is posted to the loop for every line received.
type LineMsg struct {
	Line string
}

// Reader reads lines from the control channel and posts them to the
// loop as LineMsg.
type Reader struct {
	Reader io.Reader
	Framer Framer
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{Reader: r}
}

// Name implements framework.Named.
func (r *Reader) Name() string {
	return "protocol-reader"
}

// Run implements framework.Runnable. It returns nil at the end of the
// stream.
func (r *Reader) Run(ctx context.Context) error {
	loop := framework.LoopCtlFrom(ctx)
	dataCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.readLoop(subCtx, dataCh, errCh)
	for {
		select {
		case data := <-dataCh:
			lines := r.Framer.Feed(data)
			for _, line := range lines {
				if glog.V(2) {
					glog.Infof("protocol: recv %q", line)
				}
				loop.PostMessage(&LineMsg{Line: line})
			}
			if len(lines) > 0 {
				loop.TriggerNext()
			}
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Reader) readLoop(ctx context.Context, dataCh chan []byte, errCh chan error) {
	buf := make([]byte, 256)
	for {
		n, err := r.Reader.Read(buf)
		if n > 0 {
			select {
			case dataCh <- append([]byte(nil), buf[:n]...):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
