// Package store persists notebooks as YAML files and watches open files for
// external modification.
package store

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"nerdbook/internal/logging"
	"nerdbook/internal/notebook"
)

type fileNotebook struct {
	Metadata fileMetadata `yaml:"metadata"`
	Cells    []fileCell   `yaml:"cells"`
}

type fileMetadata struct {
	TrackExecutionOrder bool              `yaml:"track_execution_order"`
	Custom              map[string]string `yaml:"custom,omitempty"`
}

type fileCell struct {
	Kind     string `yaml:"kind"`
	Source   string `yaml:"source"`
	Editable *bool  `yaml:"editable,omitempty"`
	Runnable *bool  `yaml:"runnable,omitempty"`
}

// Load reads a notebook file into a document.
func Load(path string) (*notebook.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notebook: %w", err)
	}

	var fn fileNotebook
	if err := yaml.Unmarshal(data, &fn); err != nil {
		return nil, fmt.Errorf("parse notebook %s: %w", path, err)
	}

	doc := notebook.NewDocument()
	doc.UpdateMetadata(func(md *notebook.DocumentMetadata) {
		md.TrackExecutionOrder = fn.Metadata.TrackExecutionOrder
		md.Custom = fn.Metadata.Custom
	})

	for i, fc := range fn.Cells {
		var kind notebook.CellKind
		switch fc.Kind {
		case "code":
			kind = notebook.CodeCell
		case "markup", "markdown":
			kind = notebook.MarkupCell
		default:
			return nil, fmt.Errorf("notebook %s: cell %d has unknown kind %q", path, i, fc.Kind)
		}

		cell := notebook.NewCell(kind, fc.Source)
		if fc.Editable != nil || fc.Runnable != nil {
			cell.UpdateMetadata(func(md *notebook.CellMetadata) {
				if fc.Editable != nil {
					md.Editable = *fc.Editable
				}
				if fc.Runnable != nil {
					md.Runnable = *fc.Runnable
				}
			})
		}
		doc.Append(cell)
	}

	return doc, nil
}

// Save writes the document to a notebook file. Execution state and outputs
// are transient and not persisted.
func Save(path string, doc *notebook.Document) error {
	md := doc.Metadata()
	fn := fileNotebook{
		Metadata: fileMetadata{
			TrackExecutionOrder: md.TrackExecutionOrder,
			Custom:              md.Custom,
		},
	}

	for _, cell := range doc.Cells() {
		fc := fileCell{
			Kind:   cell.Kind().String(),
			Source: cell.Source(),
		}
		cmd := cell.Metadata()
		if !cmd.Editable {
			f := false
			fc.Editable = &f
		}
		if cell.Kind() == notebook.CodeCell && !cmd.Runnable {
			f := false
			fc.Runnable = &f
		}
		fn.Cells = append(fn.Cells, fc)
	}

	data, err := yaml.Marshal(&fn)
	if err != nil {
		return fmt.Errorf("marshal notebook: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write notebook: %w", err)
	}
	return nil
}

// Watch invokes onChange whenever path is written by another process. The
// returned stop func releases the watcher; it is safe to call twice.
func Watch(path string, onChange func()) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	log := logging.Get(logging.CategoryStore)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
					log.Debug("notebook changed on disk", zap.String("path", ev.Name))
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	var once bool
	return func() {
		if once {
			return
		}
		once = true
		close(done)
		w.Close()
	}, nil
}
