package app

import (
	"errors"

	"github.com/TanaroSch/copynaut/internal/export"
	"github.com/TanaroSch/copynaut/internal/exportpath"
	"github.com/TanaroSch/copynaut/internal/rules"
	"github.com/TanaroSch/copynaut/internal/template"
)

// ErrUnsaved is returned when exporting from a document without a filename.
var ErrUnsaved = errors.New("image must be saved on disk before exporting clippings")

// Export writes the selected pixels of doc next to its source file, named
//
//	<export dir>/<source basename>-<export name>-<suffix><ext>
//
// The suffix is itself expanded as a template. It returns the written path.
func (a *Application) Export(doc *Document, suffix string) (string, error) {
	cfg, err := a.config()
	if err != nil {
		return "", err
	}
	if doc.Source.Filename == "" {
		return "", a.fail("Export Failed", ErrUnsaved)
	}

	dest, err := expandName(cfg, doc.Source, ExportName)
	if err != nil {
		return "", a.fail("Export Failed", err)
	}
	if suffix != "" {
		suffix, err = rules.Apply(template.Expand(doc.Source, suffix), cfg.Export.NameEdits)
		if err != nil {
			return "", a.fail("Export Failed", err)
		}
	}

	path, err := exportpath.Resolve(exportpath.Request{
		SourceFilename: doc.Source.Filename,
		Directory:      cfg.Export.Directory,
		DestName:       dest,
		Suffix:         suffix,
		Digits:         cfg.Export.NumberDigits,
	})
	if err != nil {
		return "", a.fail("Export Failed", err)
	}
	if err := exportpath.CheckFree(path); err != nil {
		return path, a.fail("Export Skipped", err)
	}

	err = export.Save(path, doc.Clipping(), encodeOptions(cfg, doc.Source.Drawable.Name))
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return path, a.fail("Export Skipped", err)
		}
		return path, a.fail("Export Failed", err)
	}
	a.logger.Info("exported clipping", "path", path)
	a.notifier.Info("Clipping Exported", path)
	return path, nil
}
