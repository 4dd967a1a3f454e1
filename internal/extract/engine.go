package extract

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/dgallion1/quizgest/internal/parser"
	"github.com/dgallion1/quizgest/internal/quizdoc"
)

// DefaultMarkerClass is the HTML class that marks the correct option.
const DefaultMarkerClass = "correct-answer"

// ImageSink persists image bytes and returns the location recorded on the
// question. suggestedName is unique within one extraction.
type ImageSink interface {
	Save(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// SinkFunc adapts a function to ImageSink.
type SinkFunc func(ctx context.Context, data []byte, suggestedName string) (string, error)

func (f SinkFunc) Save(ctx context.Context, data []byte, suggestedName string) (string, error) {
	return f(ctx, data, suggestedName)
}

// Options tunes an Engine.
type Options struct {
	// MarkerClass is added to the answer classes detected from the document
	// stylesheet.
	MarkerClass string
	// Durations is the accepted duration set for ValidateMetadata.
	Durations []int
}

// Engine turns parsed documents into question records.
type Engine struct {
	sink ImageSink
	log  *slog.Logger
	opts Options
}

// New creates an Engine. A nil sink records each image under its suggested
// name without storing the bytes.
func New(sink ImageSink, log *slog.Logger, opts Options) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if opts.MarkerClass == "" {
		opts.MarkerClass = DefaultMarkerClass
	}
	if len(opts.Durations) == 0 {
		opts.Durations = DefaultDurations
	}
	return &Engine{sink: sink, log: log, opts: opts}
}

// Durations returns the accepted duration set.
func (e *Engine) Durations() []int {
	return e.opts.Durations
}

// Questions streams the records of doc in document order. Iteration stops
// at the first error; records already yielded stay valid.
func (e *Engine) Questions(ctx context.Context, doc *quizdoc.Document, meta Metadata) iter.Seq2[QuestionRecord, error] {
	return func(yield func(QuestionRecord, error) bool) {
		log := e.log.With("doc", doc.Name, "format", string(doc.Format))
		classes := e.answerClasses(doc)
		acc := NewAccumulator(doc.Format)
		used := make(map[string]bool)
		saved := 0

		for b := range doc.All() {
			if err := ctx.Err(); err != nil {
				yield(QuestionRecord{}, err)
				return
			}

			images, err := ResolveImages(doc, b)
			if err != nil {
				yield(QuestionRecord{}, err)
				return
			}

			kind := Classify(doc.Format, b, acc.Open())
			var answer *string
			if a, ok := DetectAnswer(doc.Format, b, classes); ok {
				answer = &a
			}
			if done := acc.Feed(kind, b.Text, answer); done != nil {
				if !yield(done.Record(meta), nil) {
					return
				}
			}

			for _, img := range images {
				switch {
				case used[img.ID]:
					log.Warn("image already attached, skipping", "ref", img.ID, "position", b.Position)
					continue
				case !acc.Open():
					log.Warn("image has no open question, dropping", "ref", img.ID, "position", b.Position)
					continue
				case acc.Current().Image != nil:
					log.Warn("question already has an image, skipping", "ref", img.ID, "position", b.Position)
					continue
				}

				saved++
				name := imageName(doc.Name, saved, img)
				location, err := e.save(ctx, img.Data, name)
				if err != nil {
					yield(QuestionRecord{}, fmt.Errorf("save image %s: %w", name, err))
					return
				}
				used[img.ID] = true
				acc.AttachImage(location)
				log.Debug("image attached", "ref", img.ID, "location", location)
			}
		}

		if done := acc.Finish(); done != nil {
			yield(done.Record(meta), nil)
		}
	}
}

// Extract collects every record of doc. On error no partial list is returned.
func (e *Engine) Extract(ctx context.Context, doc *quizdoc.Document, meta Metadata) ([]QuestionRecord, error) {
	records := []QuestionRecord{}
	for rec, err := range e.Questions(ctx, doc, meta) {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ExtractBytes validates meta, parses data with the reader selected by
// filename and extracts its records.
func (e *Engine) ExtractBytes(ctx context.Context, data []byte, filename string, meta Metadata) ([]QuestionRecord, error) {
	if err := ValidateMetadata(meta, e.opts.Durations); err != nil {
		return nil, err
	}
	doc, err := Parse(data, filename)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := e.Extract(ctx, doc, meta)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	e.log.Info("document extracted",
		"doc", doc.Name,
		"format", string(doc.Format),
		"blocks", len(doc.Blocks),
		"questions", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

// Parse selects a reader for filename (sniffing data when the name has no
// extension) and parses data into a Document.
func Parse(data []byte, filename string) (*quizdoc.Document, error) {
	r, err := parser.ForData(filename, data)
	if err != nil {
		return nil, err
	}
	doc, err := r.Read(data, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return doc, nil
}

func (e *Engine) save(ctx context.Context, data []byte, name string) (string, error) {
	if e.sink == nil {
		return name, nil
	}
	return e.sink.Save(ctx, data, name)
}

func (e *Engine) answerClasses(doc *quizdoc.Document) []string {
	classes := make([]string, 0, len(doc.AnswerClasses)+1)
	classes = append(classes, e.opts.MarkerClass)
	for _, c := range doc.AnswerClasses {
		if c != e.opts.MarkerClass {
			classes = append(classes, c)
		}
	}
	return classes
}
