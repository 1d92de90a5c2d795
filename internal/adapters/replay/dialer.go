// Package replay feeds a recorded bridge capture to the sensor link in place
// of a live TCP connection.
package replay

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"os"
	"sync"
	"time"

	"github.com/hpcloud/tail"
)

// Dialer opens a capture file of bridge records, one JSON object per line.
// Each Dial starts from the beginning of the file.
type Dialer struct {
	// Path is the capture file.
	Path string

	// Follow keeps the stream open and delivers lines appended later.
	// Without it the stream ends at end of file.
	Follow bool

	// Interval paces records. Zero delivers them as fast as they are read.
	Interval time.Duration
}

// Dial implements sensor.Dialer.
func (d Dialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	if _, err := os.Stat(d.Path); err != nil {
		return nil, err
	}
	t, err := tail.TailFile(d.Path, tail.Config{
		Follow:    d.Follow,
		ReOpen:    d.Follow,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	s := &stream{t: t, pr: pr, done: make(chan struct{})}
	go s.pump(pw, d.Interval)
	return s, nil
}

// stream exposes tailed lines as a byte stream. Writes are discarded.
type stream struct {
	t    *tail.Tail
	pr   *io.PipeReader
	done chan struct{}
	once sync.Once
}

func (s *stream) pump(pw *io.PipeWriter, interval time.Duration) {
	var err error
	defer func() { pw.CloseWithError(err) }()

	for {
		select {
		case <-s.done:
			return
		case line, ok := <-s.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				err = line.Err
				return
			}
			if _, werr := io.WriteString(pw, line.Text+"\r"); werr != nil {
				return
			}
		}
		if interval > 0 {
			select {
			case <-s.done:
				return
			case <-time.After(interval):
			}
		}
	}
}

func (s *stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

func (s *stream) Write(p []byte) (int, error) {
	return len(p), nil
}

func (s *stream) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.pr.Close()
		if serr := s.t.Stop(); serr != nil && !errors.Is(serr, io.EOF) {
			err = serr
		}
	})
	return err
}
