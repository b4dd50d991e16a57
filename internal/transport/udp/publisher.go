// SPDX-License-Identifier: MIT
package udp

import (
	"fmt"
	"sync"
	"time"
)

// MagnitudeSource provides the latest magnitude spectrum.
type MagnitudeSource interface {
	MagnitudesInto(dst []float64) error
	FFTSize() int
}

// PacketSender transmits one encoded packet. *UDPSender implements it.
type PacketSender interface {
	Send(packet []byte) error
}

// UDPPublisher periodically fetches FFT magnitudes, packs them into the
// binary packet format and sends them with a PacketSender. It runs in a
// separate goroutine managed by Start and Stop.
type UDPPublisher struct {
	sender   PacketSender
	source   MagnitudeSource
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32

	// Pre-allocated so buildAndSendPacket does not allocate.
	magBuffer    []float64
	f32Buffer    []float32
	packetBuffer []byte
}

// NewUDPPublisher creates and initializes a new UDPPublisher.
// If the provided interval is invalid (<= 0), it defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender PacketSender, source MagnitudeSource) (*UDPPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("UDPPublisher: magnitude source cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		logger.Warnf("invalid publish interval, defaulting to %s", interval)
	}

	bins := source.FFTSize()/2 + 1
	if bins > MaxMagnitudes {
		return nil, fmt.Errorf("UDPPublisher: %d bins exceed packet limit %d", bins, MaxMagnitudes)
	}
	logger.Infof("publisher: interval %s, %d bins", interval, bins)

	return &UDPPublisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		magBuffer:    make([]float64, bins),
		f32Buffer:    make([]float32, bins),
		packetBuffer: make([]byte, 0, PacketSize(bins)),
	}, nil
}

// Start begins the periodic publishing process. Subsequent calls are
// no-ops while running.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		logger.Warnf("publisher: Start called but already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it to
// exit. It is safe to call Stop multiple times.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	logger.Infof("publisher stopped after %d packets", p.sequenceNum)
	return nil
}

// buildAndSendPacket fetches, converts, packs and sends one spectrum.
func (p *UDPPublisher) buildAndSendPacket() {
	if err := p.source.MagnitudesInto(p.magBuffer); err != nil {
		logger.Errorf("publisher: getting magnitudes: %v", err)
		return
	}
	for i, v := range p.magBuffer {
		p.f32Buffer[i] = float32(v)
	}

	p.sequenceNum++
	p.packetBuffer = AppendPacket(p.packetBuffer[:0], p.sequenceNum, time.Now().UnixNano(), p.f32Buffer)

	if err := p.sender.Send(p.packetBuffer); err != nil {
		logger.Debugf("publisher: packet %d: %v", p.sequenceNum, err)
		return
	}
	logger.Debugf("publisher: sent packet %d (%d bytes)", p.sequenceNum, len(p.packetBuffer))
}

// Close gracefully stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
