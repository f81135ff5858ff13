// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package testkit

import (
	"sync"

	"github.com/ManuGH/playctl/internal/session/ports"
)

// Graph is a stream graph that records every source it creates.
type Graph struct {
	mu      sync.Mutex
	sources []*Source
}

var _ ports.StreamGraph = (*Graph)(nil)

func NewGraph() *Graph { return &Graph{} }

func (g *Graph) CreateSource() ports.StreamSource {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := &Source{}
	g.sources = append(g.sources, s)
	return s
}

// Sources returns every source created so far, in creation order.
func (g *Graph) Sources() []*Source {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Source, len(g.sources))
	copy(out, g.sources)
	return out
}

// Source is a stream source that tracks its explicit blocker count.
type Source struct {
	mu        sync.Mutex
	blockers  int
	destroyed bool
	timeUS    int64
}

var _ ports.StreamSource = (*Source)(nil)

func (s *Source) ChangeExplicitBlockerCount(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockers += delta
}

func (s *Source) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *Source) CurrentTimeUS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeUS
}

// Blockers returns the net explicit blocker count.
func (s *Source) Blockers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockers
}

// Destroyed reports whether Destroy was called.
func (s *Source) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Sink is a stream sink that tracks blocking, ports and finish state.
type Sink struct {
	mu         sync.Mutex
	blockers   int
	autofinish bool
	finished   bool
	destroyed  bool
	ports      []*Port
}

var _ ports.StreamSink = (*Sink)(nil)

// NewSink returns a sink carrying one explicit block, the convention for a
// sink that is not yet connected to a source.
func NewSink() *Sink { return &Sink{blockers: 1} }

func (k *Sink) AllocateInputPort(_ ports.StreamSource) ports.SinkPort {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := &Port{sink: k}
	k.ports = append(k.ports, p)
	return p
}

func (k *Sink) ChangeExplicitBlockerCount(delta int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.blockers += delta
}

func (k *Sink) SetAutofinish(v bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.autofinish = v
}

func (k *Sink) Finish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.finished = true
}

func (k *Sink) Destroyed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.destroyed
}

// MarkDestroyed simulates external teardown of the sink.
func (k *Sink) MarkDestroyed() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.destroyed = true
}

// Blockers returns the net explicit blocker count.
func (k *Sink) Blockers() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.blockers
}

// Finished reports whether Finish was called.
func (k *Sink) Finished() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.finished
}

// LivePorts returns the number of allocated, undestroyed ports.
func (k *Sink) LivePorts() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, p := range k.ports {
		if !p.IsDestroyed() {
			n++
		}
	}
	return n
}

// Port is an allocated sink input port.
type Port struct {
	mu        sync.Mutex
	sink      *Sink
	destroyed bool
}

var _ ports.SinkPort = (*Port)(nil)

func (p *Port) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyed = true
}

// IsDestroyed reports whether Destroy was called.
func (p *Port) IsDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}
