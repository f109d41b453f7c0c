package render

import (
	"sync/atomic"

	"github.com/Faultbox/blockterrain/internal/blocks"
)

// Headless is an in-memory backend. Its primitives become ready after a
// fixed number of updates and otherwise just hold their descriptor.
type Headless struct {
	ReadyAfter int

	created   atomic.Int64
	destroyed atomic.Int64
}

// NewHeadless creates a backend whose primitives are ready after the given
// number of Update calls.
func NewHeadless(readyAfter int) *Headless {
	return &Headless{ReadyAfter: max(readyAfter, 0)}
}

// CreatePrimitive implements Backend.
func (h *Headless) CreatePrimitive(p blocks.Primitive) Primitive {
	h.created.Add(1)
	return &headlessPrimitive{owner: h, desc: p}
}

// Created returns how many primitives have been created.
func (h *Headless) Created() int { return int(h.created.Load()) }

// Destroyed returns how many primitives have been destroyed.
func (h *Headless) Destroyed() int { return int(h.destroyed.Load()) }

// Live returns how many created primitives are not yet destroyed.
func (h *Headless) Live() int { return h.Created() - h.Destroyed() }

type headlessPrimitive struct {
	owner     *Headless
	desc      blocks.Primitive
	updates   int
	destroyed bool
}

// Descriptor exposes what the primitive was created from.
func (p *headlessPrimitive) Descriptor() blocks.Primitive { return p.desc }

func (p *headlessPrimitive) Update(_ *FrameState, commands *[]Command) {
	if p.destroyed {
		return
	}
	p.updates++
	if commands != nil && p.Ready() {
		*commands = append(*commands, Command{
			Primitive: p.desc.Name,
			Instances: len(p.desc.Instances),
			Material:  p.desc.Material,
		})
	}
}

func (p *headlessPrimitive) Ready() bool {
	return !p.destroyed && p.updates >= p.owner.ReadyAfter
}

func (p *headlessPrimitive) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.owner.destroyed.Add(1)
}

func (p *headlessPrimitive) IsDestroyed() bool { return p.destroyed }

// Describer is implemented by primitives that can report their descriptor.
type Describer interface {
	Descriptor() blocks.Primitive
}
