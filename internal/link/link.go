// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 majektom

// Package link runs the INTEGRA frame protocol over a byte stream.
//
// A Link owns one long-lived integra.Decoder fed from the transport, so a
// frame split over several reads is reassembled and junk between frames is
// skipped. Completed frames are decoded and published on Frames; Request
// pairs an outbound command with the answer it provokes.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/majektom/satel-integra-integration-protocol/internal/capture"
	"github.com/majektom/satel-integra-integration-protocol/internal/logging"
	"github.com/majektom/satel-integra-integration-protocol/internal/metrics"
	"github.com/majektom/satel-integra-integration-protocol/internal/monitor"
	"github.com/majektom/satel-integra-integration-protocol/pkg/integra"
)

var (
	// ErrClosed is returned once the transport reached end of stream
	ErrClosed = errors.New("link closed")
	// ErrTimeout is returned when no matching answer arrived before the
	// request context expired
	ErrTimeout = errors.New("timeout waiting for answer")
)

const (
	readBufferSize   = 256
	frameQueueSize   = 64
	requestQueueSize = 16
)

// Frame is one frame delimited by the decoder.
type Frame struct {
	Time    time.Time
	Payload []byte         // unescaped payload including the checksum
	Answer  integra.Answer // nil when the payload did not decode
}

// Option configures a Link
type Option func(*Link)

// WithLogger sets the logger, zap.NewNop by default
func WithLogger(logger *zap.Logger) Option {
	return func(l *Link) { l.logger = logger }
}

// WithMetrics enables Prometheus counters
func WithMetrics(m *metrics.LinkMetrics) Option {
	return func(l *Link) { l.metrics = m }
}

// WithRecorder copies all raw traffic into a capture
func WithRecorder(w *capture.Writer) Option {
	return func(l *Link) { l.recorder = w }
}

// WithRateLimit spaces outbound commands at least interval apart.
// The panel drops commands that arrive too quickly.
func WithRateLimit(interval time.Duration) Option {
	return func(l *Link) {
		if interval > 0 {
			l.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

// WithIdleReset drops a partially received frame when the line has been
// quiet for d. Zero disables the reset.
func WithIdleReset(d time.Duration) Option {
	return func(l *Link) { l.idleReset = d }
}

// Link runs the frame protocol over rw.
type Link struct {
	rw        io.ReadWriter
	logger    *zap.Logger
	metrics   *metrics.LinkMetrics
	recorder  *capture.Writer
	limiter   *rate.Limiter
	idleReset time.Duration

	decoder *integra.Decoder
	frames  chan Frame

	writeMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]chan Frame
	nextID int

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a link over rw. Call Run to start receiving.
func New(rw io.ReadWriter, opts ...Option) *Link {
	l := &Link{
		rw:      rw,
		logger:  zap.NewNop(),
		decoder: integra.NewDecoder(),
		frames:  make(chan Frame, frameQueueSize),
		subs:    make(map[int]chan Frame),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Frames delivers every frame received while Run is active. The channel is
// closed when Run returns. Frames are dropped when the consumer falls behind.
func (l *Link) Frames() <-chan Frame {
	return l.frames
}

// Done is closed when Run returns
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Run reads from the transport until it fails or ctx is cancelled.
// It returns ErrClosed at end of stream and ctx.Err() on cancellation.
// A Read blocked in the transport is only released by closing it.
func (l *Link) Run(ctx context.Context) error {
	defer l.doneOnce.Do(func() {
		close(l.done)
		close(l.frames)
	})

	type chunk struct {
		data []byte
		err  error
	}
	chunks := make(chan chunk)

	go func() {
		for {
			buf := make([]byte, readBufferSize)
			n, err := l.rw.Read(buf)
			select {
			case chunks <- chunk{data: buf[:n], err: err}:
			case <-l.done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var idle <-chan time.Time
	var timer *time.Timer
	if l.idleReset > 0 {
		timer = time.NewTimer(l.idleReset)
		defer timer.Stop()
		idle = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-idle:
			if l.decoder.InFrame() {
				l.logger.Debug("Dropping partial frame after idle line",
					zap.Duration("idle", l.idleReset),
					zap.Stringer("state", l.decoder.State()),
				)
				l.decoder.Reset()
				if l.metrics != nil {
					l.metrics.DecoderResets.Inc()
				}
			}
			timer.Reset(l.idleReset)

		case c := <-chunks:
			if len(c.data) > 0 {
				l.receive(c.data)
				if timer != nil {
					timer.Reset(l.idleReset)
				}
			}
			if c.err != nil {
				if errors.Is(c.err, io.EOF) {
					return ErrClosed
				}
				return fmt.Errorf("read: %w", c.err)
			}
		}
	}
}

// receive feeds raw bytes into the decoder and publishes completed frames
func (l *Link) receive(data []byte) {
	logging.LogRawBytes(l.logger, "RX", data)
	if l.metrics != nil {
		l.metrics.BytesReceived.Add(float64(len(data)))
	}
	if l.recorder != nil {
		if err := l.recorder.Write(capture.In, data); err != nil {
			l.logger.Warn("Capture write failed", zap.Error(err))
		}
	}

	for _, b := range data {
		if l.decoder.AddByte(b) != integra.FrameReady {
			continue
		}
		payload := l.decoder.Frame()
		f := Frame{Time: time.Now(), Payload: payload, Answer: integra.DecodePayload(payload)}
		l.observe(f)
		l.publish(f)
	}
}

func (l *Link) observe(f Frame) {
	if f.Answer == nil {
		cause := monitor.Classify(f.Payload)
		l.logger.Debug("Frame rejected",
			zap.Stringer("cause", cause),
			zap.String("payload", integra.FormatHex(f.Payload)),
		)
		if l.metrics != nil {
			l.metrics.Frames.Inc()
			l.metrics.Rejected.WithLabelValues(cause.String()).Inc()
		}
		return
	}

	l.logger.Debug("Answer received", logging.CommandField(f.Answer.Command()))
	if l.metrics != nil {
		l.metrics.Frames.Inc()
		l.metrics.ObserveAnswer(f.Answer)
	}
}

func (l *Link) publish(f Frame) {
	select {
	case l.frames <- f:
	default:
		l.logger.Warn("Frame queue full, dropping frame")
	}

	l.subMu.Lock()
	for _, ch := range l.subs {
		select {
		case ch <- f:
		default:
		}
	}
	l.subMu.Unlock()
}

func (l *Link) subscribe() (int, <-chan Frame) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	id := l.nextID
	l.nextID++
	ch := make(chan Frame, requestQueueSize)
	l.subs[id] = ch
	return id, ch
}

func (l *Link) unsubscribe(id int) {
	l.subMu.Lock()
	delete(l.subs, id)
	l.subMu.Unlock()
}

// Send writes an encoded frame, waiting for the rate limiter first
func (l *Link) Send(ctx context.Context, frame []byte) error {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	select {
	case <-l.done:
		return ErrClosed
	default:
	}

	logging.LogRawBytes(l.logger, "TX", frame)
	// Recorded before the write so the capture keeps request/answer order
	if l.recorder != nil {
		if err := l.recorder.Write(capture.Out, frame); err != nil {
			l.logger.Warn("Capture write failed", zap.Error(err))
		}
	}

	if _, err := l.rw.Write(frame); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if l.metrics != nil {
		if c, ok := frameCommand(frame); ok {
			l.metrics.ObserveCommand(c, len(frame))
		} else {
			l.metrics.BytesSent.Add(float64(len(frame)))
		}
	}
	return nil
}

// Request sends frame and waits for the first decoded answer whose command
// is expect, or a COMMAND_RESULT. Frames that do not decode are skipped.
// Returns ErrTimeout when ctx reaches its deadline first.
func (l *Link) Request(ctx context.Context, frame []byte, expect integra.Command) (integra.Answer, error) {
	id, answers := l.subscribe()
	defer l.unsubscribe(id)

	if err := l.Send(ctx, frame); err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				if l.metrics != nil {
					l.metrics.Timeouts.Inc()
				}
				return nil, ErrTimeout
			}
			return nil, ctx.Err()

		case <-l.done:
			return nil, ErrClosed

		case f := <-answers:
			if f.Answer == nil {
				continue
			}
			c := f.Answer.Command()
			if c == expect || c == integra.CmdCommandResult {
				return f.Answer, nil
			}
		}
	}
}

// frameCommand extracts the command byte of an encoded frame
func frameCommand(frame []byte) (integra.Command, bool) {
	if len(frame) < 3 || frame[0] != integra.StartByte || frame[1] != integra.StartByte {
		return 0, false
	}
	return integra.Command(frame[2]), true
}
