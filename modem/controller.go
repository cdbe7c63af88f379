// Package modem is the Controller: the single owner of both audio
// streams, the transmit queue, and the transmit/receive pipelines. It
// is the only part of this repository host applications talk to.
package modem

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kd9xyz/oliviamodem/audioio"
	"github.com/kd9xyz/oliviamodem/config"
	"github.com/kd9xyz/oliviamodem/params"
	"github.com/kd9xyz/oliviamodem/ptt"
	"github.com/kd9xyz/oliviamodem/rxpipeline"
	"github.com/kd9xyz/oliviamodem/txpipeline"
	"github.com/kd9xyz/oliviamodem/txqueue"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Lifecycle owner for the Olivia modem: construction
 *		fixes all parameters, Start opens the audio streams
 *		and spawns the receive task, Send enqueues a
 *		transmission, Stop tears everything down.
 *
 *--------------------------------------------------------------*/

type Controller struct {
	cfg    config.Config
	params params.Params
	logger *log.Logger

	onEvent func(Event)

	queue *txqueue.Queue
	tx    *txpipeline.Pipeline
	rx    *rxpipeline.Pipeline

	keyer   ptt.Keyer
	closers []func() error

	audioIn  *audioio.Input
	audioOut *audioio.Output
	cancel   context.CancelFunc

	state int32 // atomic State

	mu            sync.Mutex
	lastMessage   string
	lastMessageAt time.Time
}

// New constructs a Controller from cfg, validating it and wiring the
// configured PTT backend. The controller starts Inactive; call Start
// to open audio streams.
func New(cfg config.Config, logger *log.Logger, onEvent func(Event)) (*Controller, error) {
	p, err := cfg.ToParams()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:     cfg,
		params:  p,
		logger:  logger,
		onEvent: onEvent,
		queue:   txqueue.New(),
	}

	keyer, closeKeyer, err := buildKeyer(cfg)
	if err != nil {
		return nil, err
	}

	c.keyer = keyer
	if closeKeyer != nil {
		c.closers = append(c.closers, closeKeyer)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	c.tx = txpipeline.New(p, c.queue, rng, c.keyer, logger, cfg.TimestampFormat)
	c.rx = rxpipeline.New(p, logger, c.handleMessage)

	atomic.StoreInt32(&c.state, int32(StateInactive))

	return c, nil
}

func buildKeyer(cfg config.Config) (ptt.Keyer, func() error, error) {
	switch cfg.PTTBackend {
	case "", "none":
		return ptt.NoopKeyer{}, nil, nil
	case "gpio":
		k, err := ptt.NewGPIOKeyer(cfg.PTTGPIOChip, cfg.PTTGPIOLine)
		if err != nil {
			return nil, nil, err
		}

		return k, k.Close, nil
	case "hamlib":
		k, err := ptt.NewHamlibKeyer(cfg.PTTHamlibModel, cfg.PTTHamlibDevice)
		if err != nil {
			return nil, nil, err
		}

		return k, k.Close, nil
	default:
		return nil, nil, fmt.Errorf("modem: unsupported ptt backend %q", cfg.PTTBackend)
	}
}

// Start opens both audio streams and spawns the receive task,
// transitioning Inactive -> Idle.
func (c *Controller) Start() error {
	in, err := audioio.OpenInput(c.cfg.InputDevice, float64(c.params.SampleRate), c.params.Wlen)
	if err != nil {
		c.setState(StateInactive)
		return fmt.Errorf("modem: open input stream: %w", err)
	}

	out, err := audioio.OpenOutput(c.cfg.OutputDevice, float64(c.params.SampleRate), 64*c.params.Wlen, c.queue.TryPop, c.handleTxState)
	if err != nil {
		_ = in.Close()
		c.setState(StateInactive)
		return fmt.Errorf("modem: open output stream: %w", err)
	}

	c.audioIn = in
	c.audioOut = out

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go c.runReceiveTask(ctx, in)

	if c.logger != nil {
		c.logger.Info("started", "centre_freq", c.params.CentreFreq, "symbols", c.params.Symbols, "bandwidth", c.params.Bandwidth)
	}

	c.setState(StateIdle)

	return nil
}

func (c *Controller) runReceiveTask(ctx context.Context, in *audioio.Input) {
	if err := c.rx.Run(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
		if c.logger != nil {
			c.logger.Error("receive task stopped", "err", err)
		}

		c.setState(StateInactive)
	}
}

// Stop signals the receive task to exit, closes both audio streams,
// releases the PTT backend, and drains the transmit queue. In-flight
// output callbacks finish naturally with silence.
func (c *Controller) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}

	var firstErr error

	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.audioIn != nil {
		record(c.audioIn.Close())
	}

	if c.audioOut != nil {
		record(c.audioOut.Close())
	}

	for _, closeFn := range c.closers {
		record(closeFn())
	}

	c.queue.Drain()
	c.setState(StateInactive)

	return firstErr
}

// Send enqueues the full transmit waveform for message. It returns
// immediately; additional calls concatenate onto the transmit queue.
func (c *Controller) Send(message string) error {
	return c.tx.Send(message)
}

// State reports the modem's current lifecycle state.
func (c *Controller) State() State {
	return State(atomic.LoadInt32(&c.state))
}

// Status returns an on-demand diagnostic snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:         c.State(),
		QueueDepth:    c.queue.Len(),
		LastMessage:   c.lastMessage,
		LastMessageAt: c.lastMessageAt,
	}
}

func (c *Controller) setState(s State) {
	old := State(atomic.SwapInt32(&c.state, int32(s)))
	if old == s {
		return
	}

	if c.onEvent != nil {
		c.onEvent(Event{Kind: EventStateChanged, State: s})
	}
}

// handleTxState is the output callback's state hook: called with true
// whenever a block was dequeued, false when the queue was empty.
func (c *Controller) handleTxState(transmitting bool) {
	if transmitting {
		c.setState(StateTransmitting)
		return
	}

	if c.State() == StateTransmitting {
		c.setState(StateIdle)
	}
}

func (c *Controller) handleMessage(msg string) {
	c.mu.Lock()
	c.lastMessage = msg
	c.lastMessageAt = time.Now()
	c.mu.Unlock()

	if c.onEvent != nil {
		c.onEvent(Event{Kind: EventMessageReceived, Message: msg})
	}
}
