// Package pipeline implements the packet processing pipeline engine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"firestige.xyz/vjtap/internal/core"
	"firestige.xyz/vjtap/internal/link"
	"firestige.xyz/vjtap/internal/log"
	"firestige.xyz/vjtap/internal/vj"
)

// Source produces captured frames. Capture returns when the source is
// exhausted or ctx is cancelled; it does not close out.
type Source interface {
	Capture(ctx context.Context, out chan<- core.RawPacket) error
}

// Sink consumes decoded packets, including failed ones (OutputPacket.Err set).
type Sink interface {
	Name() string
	Report(ctx context.Context, pkt *core.OutputPacket) error
	Flush(ctx context.Context) error
}

// Filter selects which decoded packets reach the sinks.
type Filter interface {
	Match(pkt *core.OutputPacket) bool
}

// Pipeline replays one capture through the header decompressor.
// Frames are decoded by a single goroutine, in capture order.
type Pipeline struct {
	source     Source
	dispatcher *link.Dispatcher
	session    *vj.Session
	sinks      []Sink
	filter     Filter
	metrics    *Metrics
	logger     log.Logger

	// Runtime state
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	captureErr error
	flushOnce  sync.Once

	// Channel for backpressure control
	rawPacketChan chan core.RawPacket
}

// Config contains pipeline configuration.
type Config struct {
	Source     Source
	Dispatcher *link.Dispatcher
	Session    *vj.Session
	Sinks      []Sink
	Filter     Filter // Optional
	BufferSize int    // Raw packet channel buffer size
}

// New creates a new pipeline.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Source == nil || cfg.Dispatcher == nil || cfg.Session == nil {
		return nil, fmt.Errorf("%w: pipeline needs a source, a dispatcher and a session", core.ErrConfigInvalid)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024 // Default buffer size
	}

	return &Pipeline{
		source:        cfg.Source,
		dispatcher:    cfg.Dispatcher,
		session:       cfg.Session,
		sinks:         cfg.Sinks,
		filter:        cfg.Filter,
		metrics:       NewMetrics(cfg.Session.ID()),
		logger:        log.GetLogger().WithField("session", cfg.Session.ID()),
		rawPacketChan: make(chan core.RawPacket, cfg.BufferSize),
	}, nil
}

// Start resets the session and starts the capture and processing goroutines.
func (p *Pipeline) Start(ctx context.Context) error {
	if p.ctx != nil {
		return errors.New("pipeline already started")
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.session.ResetAll()

	p.logger.WithField("link_type", p.dispatcher.LinkType().String()).Info("pipeline starting")

	// Start capture goroutine
	p.wg.Add(1)
	go p.captureLoop()

	// Start processing goroutine
	p.wg.Add(1)
	go p.processLoop()

	return nil
}

// Wait blocks until the source is exhausted or the pipeline is stopped, then
// flushes the sinks. It returns the capture error, if any.
func (p *Pipeline) Wait() error {
	p.wg.Wait()
	p.flush()
	return p.captureErr
}

// Stop stops the pipeline gracefully.
func (p *Pipeline) Stop() error {
	p.logger.Info("pipeline stopping")

	// Cancel context to signal goroutines to stop
	if p.cancel != nil {
		p.cancel()
	}
	return p.Wait()
}

// Run starts the pipeline and waits for it to finish.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	return p.Wait()
}

func (p *Pipeline) flush() {
	p.flushOnce.Do(func() {
		for _, sink := range p.sinks {
			if err := sink.Flush(context.Background()); err != nil {
				p.logger.WithError(err).WithField("sink", sink.Name()).Error("sink flush failed")
			}
		}
		st := p.Stats()
		p.logger.WithFields(map[string]interface{}{
			"received":     st.Received,
			"decompressed": st.Decompressed,
			"baselines":    st.Baselines,
			"errors":       st.DecodeErrors + st.DispatchErrors,
		}).Info("pipeline stopped")
	})
}

// captureLoop reads packets from the source and sends them to the processing channel.
func (p *Pipeline) captureLoop() {
	defer p.wg.Done()

	if err := p.source.Capture(p.ctx, p.rawPacketChan); err != nil {
		if p.ctx.Err() == nil {
			// Context not cancelled, this is a real error
			p.logger.WithError(err).Error("capture failed")
			p.captureErr = err
		}
	}

	// Close channel when capture ends
	close(p.rawPacketChan)
}

// processLoop is the main processing loop.
func (p *Pipeline) processLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return

		case raw, ok := <-p.rawPacketChan:
			if !ok {
				// Channel closed, source exhausted
				return
			}

			p.metrics.Received.Add(1)

			// Failures are reported to the sinks and never stop the run
			if err := p.processPacket(raw); err != nil {
				p.logger.WithError(err).WithField("index", raw.Index).Debug("packet processing failed")
			}
		}
	}
}

// processPacket runs one frame through dispatch, decompression and the sinks.
func (p *Pipeline) processPacket(raw core.RawPacket) error {
	frame, err := p.dispatcher.Dispatch(raw)
	output := core.OutputPacket{
		Timestamp: raw.Timestamp,
		Index:     raw.Index,
		Direction: frame.Direction,
		Variant:   frame.Variant,
		Labels: core.Labels{
			core.LabelVJDirection: frame.Direction.String(),
		},
	}

	if err != nil {
		p.metrics.DispatchErrors.Add(1)
		p.metrics.recordError(err)
		output.Err = fmt.Errorf("dispatch failed: %w", err)
		output.Labels[core.LabelVJErrorKind] = core.ErrorKind(err)
		p.report(&output)
		return output.Err
	}
	output.Labels[core.LabelVJVariant] = frame.Variant.String()

	data, err := p.session.Decompress(frame.Direction, frame.Variant, frame.Payload)
	if err != nil {
		p.metrics.DecodeErrors.Add(1)
		p.metrics.recordError(err)
		if errors.Is(err, core.ErrStillDesynchronized) {
			p.metrics.Tossed.Add(1)
		}
		output.Err = err
		output.Labels[core.LabelVJErrorKind] = core.ErrorKind(err)
		p.report(&output)
		return err
	}

	switch frame.Variant {
	case core.VariantIPv4:
		p.metrics.Passthrough.Add(1)
	case core.VariantUncompressed:
		p.metrics.Baselines.Add(1)
	case core.VariantCompressed:
		p.metrics.Decompressed.Add(1)
	}
	if frame.Variant != core.VariantIPv4 {
		if slot, ok := p.session.Table(frame.Direction).LastSlot(); ok {
			output.Labels[core.LabelVJSlot] = strconv.Itoa(slot)
		}
	}

	output.Data = data
	interpret(&output)
	if p.filter != nil && !p.filter.Match(&output) {
		p.metrics.Filtered.Add(1)
		return nil
	}
	p.report(&output)
	return nil
}

func (p *Pipeline) report(output *core.OutputPacket) {
	for _, sink := range p.sinks {
		if err := sink.Report(p.ctx, output); err != nil {
			p.metrics.ReportErrors.Add(1)
			p.logger.WithError(err).WithField("sink", sink.Name()).Error("sink failed")
			continue
		}
	}
	p.metrics.Reported.Add(1)
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}
