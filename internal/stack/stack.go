// Package stack reads the named-buffer list as a clipping stack.
//
// The stack owns no storage. Clippings are added by copy operations on the
// buffer list and consumed (read, then deleted) by paste operations.
package stack

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/TanaroSch/copynaut/internal/rules"
)

// ErrEmpty is returned when there is nothing to paste.
var ErrEmpty = errors.New("no named buffers")

// Mode selects which end of the buffer list is read first.
type Mode int

const (
	// LIFO reads index 0: the last item copied is the first pasted.
	LIFO Mode = iota
	// FIFO reads the last index: the first item copied is the first pasted.
	FIFO
)

// ParseMode accepts the config file spellings of a mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "last-in-first-out", "lifo":
		return LIFO, nil
	case "first-in-first-out", "fifo":
		return FIFO, nil
	}
	return 0, fmt.Errorf("unknown clipping stack mode %q", s)
}

func (m Mode) String() string {
	if m == FIFO {
		return "first-in-first-out"
	}
	return "last-in-first-out"
}

// Pick returns the buffer name mode reads next.
func Pick(names []string, mode Mode) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	if mode == FIFO {
		return names[len(names)-1], true
	}
	return names[0], true
}

// whereTag matches [[WxH+X,Y]] positional tags written by the {where} field.
var whereTag = regexp.MustCompile(`\[\[([0-9]+)x([0-9]+)\+([0-9]+),([0-9]+)\]\]`)

// ParseWhereTag extracts the placement encoded in name. The offsets are only
// returned if the tag's image size equals size; the last tag wins.
func ParseWhereTag(name string, size image.Point) (image.Point, bool) {
	all := whereTag.FindAllStringSubmatch(name, -1)
	if len(all) == 0 {
		return image.Point{}, false
	}
	m := all[len(all)-1]
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return image.Point{}, false
		}
		v[i] = n
	}
	if v[0] != size.X || v[1] != size.Y {
		return image.Point{}, false
	}
	return image.Pt(v[2], v[3]), true
}

// BufferList is the host's named-buffer list, head first.
type BufferList interface {
	Names() ([]string, error)
	Delete(name string) error
}

// Pasted describes the next clipping to paste.
type Pasted struct {
	// Buffer is the raw buffer name, used to read and delete the buffer.
	Buffer string
	// LayerName is Buffer after the clipping name edits.
	LayerName string
	// Offset is the placement from a matching positional tag.
	Offset    image.Point
	HasOffset bool
}

// Manager reads clippings from a buffer list.
type Manager struct {
	list   BufferList
	mode   Mode
	edits  []rules.Named
	logger hclog.Logger
}

// NewManager creates a manager; edits are applied in key order.
func NewManager(list BufferList, mode Mode, edits []rules.Named, logger hclog.Logger) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{
		list:   list,
		mode:   mode,
		edits:  rules.Sorted(edits),
		logger: logger,
	}
}

// Next peeks at the clipping the configured mode reads next, for pasting
// into an image of the given size. It does not remove it.
func (m *Manager) Next(size image.Point) (Pasted, error) {
	names, err := m.list.Names()
	if err != nil {
		return Pasted{}, fmt.Errorf("listing buffers: %w", err)
	}
	name, ok := Pick(names, m.mode)
	if !ok {
		return Pasted{}, ErrEmpty
	}
	layer, err := rules.Apply(name, m.edits)
	if err != nil {
		return Pasted{}, fmt.Errorf("clipping name edits: %w", err)
	}
	p := Pasted{Buffer: name, LayerName: layer}
	p.Offset, p.HasOffset = ParseWhereTag(name, size)
	m.logger.Debug("next clipping", "buffer", name, "layer", layer, "mode", m.mode.String(), "offset", p.HasOffset)
	return p, nil
}

// All returns every clipping in the order repeated Next and Consume calls
// would paste them.
func (m *Manager) All(size image.Point) ([]Pasted, error) {
	names, err := m.list.Names()
	if err != nil {
		return nil, fmt.Errorf("listing buffers: %w", err)
	}
	out := make([]Pasted, 0, len(names))
	for i := range names {
		name := names[i]
		if m.mode == FIFO {
			name = names[len(names)-1-i]
		}
		layer, err := rules.Apply(name, m.edits)
		if err != nil {
			return nil, fmt.Errorf("clipping name edits: %w", err)
		}
		p := Pasted{Buffer: name, LayerName: layer}
		p.Offset, p.HasOffset = ParseWhereTag(name, size)
		out = append(out, p)
	}
	return out, nil
}

// Consume deletes a pasted buffer. Reading again afterwards yields the next
// clipping, not the same one.
func (m *Manager) Consume(p Pasted) error {
	if err := m.list.Delete(p.Buffer); err != nil {
		return fmt.Errorf("deleting buffer %q: %w", p.Buffer, err)
	}
	return nil
}

// Len returns the number of clippings on the stack.
func (m *Manager) Len() (int, error) {
	names, err := m.list.Names()
	return len(names), err
}
