package marking

import (
	"context"
	"os"
	"time"

	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result is the output of one finalize call.
type Result struct {
	PDF       []byte
	TotalMark float64
	Tally     Tally
	// Pages is the page count of PDF, results pages included.
	Pages int
	// Warnings lists the marks drawn with a fallback colour.
	Warnings []error
}

// Finalizer burns marks into submissions. It holds no per-call state and is
// safe for concurrent use on distinct submissions.
type Finalizer struct {
	cfg Config
	log logrus.FieldLogger
	now func() time.Time
}

type Option func(*Finalizer)

func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Finalizer) {
		f.log = log
	}
}

// WithClock sets the time stamped on annotations.
func WithClock(now func() time.Time) Option {
	return func(f *Finalizer) {
		f.now = now
	}
}

func New(cfg Config, opts ...Option) (*Finalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	f := &Finalizer{
		cfg: cfg,
		log: logrus.StandardLogger(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Finalizer) Config() Config {
	return f.cfg
}

// FinalizeFile reads the submission PDF at path and finalizes it. The file
// itself is never written.
func (f *Finalizer) FinalizeFile(ctx context.Context, path string, submission pdfutils.SubmissionInfo) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadFailure(err)
	}

	return f.Finalize(ctx, data, submission)
}

// Finalize runs the marking pipeline over a PDF: page rotation, annotation
// objects, vector marks and the results page, in that order. No output is
// returned unless every stage succeeds.
func (f *Finalizer) Finalize(ctx context.Context, pdf []byte, submission pdfutils.SubmissionInfo) (*Result, error) {
	marks := submission.Marks

	if err := marks.Validate(); err != nil {
		return nil, err
	}

	doc, err := loadDocument(pdf)
	if err != nil {
		return nil, err
	}

	if err := checkPageRange(marks, len(doc.pages)); err != nil {
		return nil, err
	}

	w := &warnings{log: f.log}

	// Scored numbers are counted while annotating, general marks while
	// drawing. The two are merged for the results page.
	var sections, general, t Tally

	stages := []struct {
		name string
		run  func() error
	}{
		{"rotate", func() error {
			rotatePages(doc, submission.PageSettings, f.log)
			return nil
		}},
		{"annotate", func() (err error) {
			sections, err = f.addAnnotations(doc, marks, w)
			return err
		}},
		{"draw", func() (err error) {
			general, err = f.addPdfMarks(doc, marks, w)
			return err
		}},
		{"summary", func() error {
			t = sections.Merge(general)
			return f.addSummary(doc, t)
		}},
	}

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := f.log.WithField("stage", stage.name)

		if err := stage.run(); err != nil {
			log.WithError(err).Error("stage failed")
			return nil, errors.Wrap(err, stage.name)
		}

		if f.cfg.StageCheckpoints && i < len(stages)-1 {
			if doc, err = doc.checkpoint(); err != nil {
				log.WithError(err).Error("checkpoint failed")
				return nil, errors.Wrap(err, stage.name)
			}
		}

		log.Debug("stage done")
	}

	out, err := doc.serialize()
	if err != nil {
		return nil, err
	}

	if f.cfg.ValidateOutput {
		if err := ValidateOutput(out, doc.pageCount()); err != nil {
			return nil, err
		}
	}

	f.log.WithFields(logrus.Fields{
		"totalMark":    t.TotalMark,
		"generalMarks": t.GeneralMarks,
		"sections":     len(t.SectionMarks),
		"pages":        doc.pageCount(),
	}).Info("finalized submission")

	return &Result{
		PDF:       out,
		TotalMark: t.TotalMark,
		Tally:     t,
		Pages:     doc.pageCount(),
		Warnings:  w.list,
	}, nil
}

func checkPageRange(marks pdfutils.MarkPages, numPages int) error {
	for pageIndex := numPages; pageIndex < len(marks); pageIndex++ {
		if len(marks[pageIndex]) > 0 {
			return &MarkError{
				Page:  pageIndex,
				Index: 0,
				Err:   errors.Wrapf(ErrMalformedMark, "document has %d pages", numPages),
			}
		}
	}

	return nil
}

// warnings collects the recoverable problems of one finalize call.
type warnings struct {
	log  logrus.FieldLogger
	list []error
}

func (w *warnings) add(pageIndex, index int, err error) {
	w.log.WithFields(logrus.Fields{
		"page": pageIndex,
		"mark": index,
	}).WithError(err).Warn("using fallback colour")

	w.list = append(w.list, &MarkError{Page: pageIndex, Index: index, Err: err})
}
