package app

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/TanaroSch/copynaut/internal/config"
	"github.com/TanaroSch/copynaut/internal/export"
	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/stack"
	"github.com/TanaroSch/copynaut/internal/template"
)

// Which selects a name template.
type Which int

const (
	StackName Which = iota
	ExportName
)

// ExpandName expands the stack or export name template for doc. Export
// names also go through the export name edits; stack names are edited when
// they are pasted.
func (a *Application) ExpandName(doc *Document, which Which) (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	return expandName(cfg, doc.Source, which)
}

func expandName(cfg *config.Config, src template.Source, which Which) (string, error) {
	if which == StackName {
		return template.Expand(src, cfg.Stack.NameTemplate), nil
	}
	name := template.Expand(src, cfg.Export.NameTemplate)
	return rules.Apply(name, cfg.Export.NameEdits)
}

// Copy stores the selected pixels of doc as a new clipping named by the
// stack template. With toClipboard the name is also copied as text.
func (a *Application) Copy(doc *Document, toClipboard bool) (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	name, err := expandName(cfg, doc.Source, StackName)
	if err != nil {
		return "", a.fail("Copy Failed", err)
	}
	name, err = a.buffers.Add(name, doc.Clipping())
	if err != nil {
		return "", a.fail("Copy Failed", err)
	}
	a.logger.Info("copied clipping", "buffer", name, "selection", doc.Selection.String())
	if toClipboard && a.clipboard != nil {
		if err := a.clipboard.WriteAll(name); err != nil {
			a.notifier.Warn("Clipboard", err.Error())
		}
	}
	return name, nil
}

// PasteResult describes one pasted clipping.
type PasteResult struct {
	Buffer    string
	LayerName string
	At        image.Point
	Err       error
}

// Paste takes the next clipping off the stack and composites it into the
// image file at target, at its recorded offset or else the origin.
func (a *Application) Paste(target string) (PasteResult, error) {
	cfg, err := a.config()
	if err != nil {
		return PasteResult{}, err
	}
	canvas, err := loadCanvas(target)
	if err != nil {
		return PasteResult{}, a.fail("Paste Failed", err)
	}
	m := stack.NewManager(a.buffers, cfg.Stack.Mode, cfg.Stack.NameEdits, a.logger)
	p, err := m.Next(canvas.Bounds().Size())
	if err != nil {
		if errors.Is(err, stack.ErrEmpty) {
			a.notifier.Info("Nothing to Paste", "The clipping stack is empty.")
			return PasteResult{}, err
		}
		return PasteResult{}, a.fail("Paste Failed", err)
	}
	res := a.pasteOne(canvas, p)
	if res.Err != nil {
		return res, a.fail("Paste Failed", res.Err)
	}
	if err := export.Replace(target, canvas, encodeOptions(cfg, res.LayerName)); err != nil {
		return res, a.fail("Paste Failed", err)
	}
	if err := m.Consume(p); err != nil {
		return res, a.fail("Paste Failed", err)
	}
	a.notifier.Info("Clipping Pasted", fmt.Sprintf("Pasted %q at %d,%d.", res.LayerName, res.At.X, res.At.Y))
	return res, nil
}

// PasteAll pastes every clipping on the stack in stack order. A clipping
// that cannot be pasted stays on the stack and the rest continue.
func (a *Application) PasteAll(target string) ([]PasteResult, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	canvas, err := loadCanvas(target)
	if err != nil {
		return nil, a.fail("Paste Failed", err)
	}
	m := stack.NewManager(a.buffers, cfg.Stack.Mode, cfg.Stack.NameEdits, a.logger)
	all, err := m.All(canvas.Bounds().Size())
	if err != nil {
		return nil, a.fail("Paste Failed", err)
	}
	if len(all) == 0 {
		a.notifier.Info("Nothing to Paste", "The clipping stack is empty.")
		return nil, stack.ErrEmpty
	}

	results := make([]PasteResult, 0, len(all))
	var pasted []stack.Pasted
	failed := 0
	for _, p := range all {
		res := a.pasteOne(canvas, p)
		results = append(results, res)
		if res.Err != nil {
			failed++
			a.logger.Warn("could not paste clipping", "buffer", p.Buffer, "error", res.Err)
			continue
		}
		pasted = append(pasted, p)
	}

	if len(pasted) > 0 {
		if err := export.Replace(target, canvas, encodeOptions(cfg, "")); err != nil {
			return results, a.fail("Paste Failed", err)
		}
		for _, p := range pasted {
			if err := m.Consume(p); err != nil {
				return results, a.fail("Paste Failed", err)
			}
		}
	}

	msg := fmt.Sprintf("Pasted %d of %d clippings.", len(pasted), len(all))
	if failed > 0 {
		a.notifier.Warn("Clippings Pasted", msg+" Failed clippings stay on the stack.")
		return results, fmt.Errorf("%d of %d clippings could not be pasted", failed, len(all))
	}
	a.notifier.Info("Clippings Pasted", msg)
	return results, nil
}

func (a *Application) pasteOne(canvas draw.Image, p stack.Pasted) PasteResult {
	res := PasteResult{Buffer: p.Buffer, LayerName: p.LayerName}
	img, err := a.buffers.Image(p.Buffer)
	if err != nil {
		res.Err = err
		return res
	}
	if p.HasOffset {
		res.At = p.Offset
	}
	b := canvas.Bounds()
	dst := image.Rectangle{Min: b.Min.Add(res.At), Max: b.Min.Add(res.At).Add(img.Bounds().Size())}
	draw.Draw(canvas, dst, img, img.Bounds().Min, draw.Over)
	a.logger.Debug("pasted clipping", "buffer", p.Buffer, "layer", p.LayerName, "at", res.At)
	return res
}

func loadCanvas(path string) (draw.Image, error) {
	img, _, err := export.Load(path)
	if err != nil {
		return nil, err
	}
	if _, err := export.FormatFor(path); err != nil {
		return nil, err
	}
	canvas := image.NewNRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)
	return canvas, nil
}

func encodeOptions(cfg *config.Config, layer string) export.Options {
	return export.Options{
		WebPQuality: cfg.Export.WebPQuality,
		JPEGQuality: cfg.Export.JPEGQuality,
		LayerName:   layer,
	}
}

// BufferInfo is one entry of the clipping stack listing.
type BufferInfo struct {
	Buffer    string
	LayerName string
}

// Buffers lists the clipping stack in paste order.
func (a *Application) Buffers() ([]BufferInfo, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	m := stack.NewManager(a.buffers, cfg.Stack.Mode, cfg.Stack.NameEdits, a.logger)
	all, err := m.All(image.Point{})
	if err != nil {
		return nil, err
	}
	out := make([]BufferInfo, len(all))
	for i, p := range all {
		out[i] = BufferInfo{Buffer: p.Buffer, LayerName: p.LayerName}
	}
	return out, nil
}
