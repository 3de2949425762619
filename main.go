package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mgmeyers/pdfmarks/batch"
	"github.com/mgmeyers/pdfmarks/marking"
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/pkg/errors"
)

type Globals struct {
	Config   kong.ConfigFlag `help:"Load flag defaults from a JSON file" type:"path"`
	Settings string          `help:"JSON file overriding mark geometry, colours and scores" type:"existingfile"`
	LogLevel string          `default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogJSON  bool            `help:"Log as JSON"`

	Ctx context.Context `kong:"-"`
}

var cli struct {
	Globals

	Finalize FinalizeCmd `cmd:"" help:"Burn marks into a submission and append the results page"`
	Totals   TotalsCmd   `cmd:"" help:"Compute the totals of a submission without a PDF"`
	Inspect  InspectCmd  `cmd:"" help:"List the mark annotations and total of a finalized PDF"`
	Preview  PreviewCmd  `cmd:"" help:"Render the pages of a PDF to images"`
	Batch    BatchCmd    `cmd:"" help:"Finalize every submission listed in a manifest"`
}

type FinalizeCmd struct {
	Submission  string `short:"s" required:"" type:"existingfile" help:"Submission JSON with marks and page settings"`
	Validate    bool   `help:"Check the output with pdfcpu"`
	Checkpoints bool   `help:"Save and reload the document between stages"`

	Input  string `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
	Output string `arg:"" name:"output" help:"Path of the finalized PDF" type:"path"`
}

type finalizeOutput struct {
	Output       string   `json:"output"`
	TotalMark    float64  `json:"totalMark"`
	GeneralMarks float64  `json:"generalMarks"`
	SectionMarks []string `json:"sectionMarks"`
	Pages        int      `json:"pages"`
	Warnings     []string `json:"warnings,omitempty"`
}

func (c *FinalizeCmd) Run(g *Globals) error {
	if filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		return errors.Wrap(batch.ErrDuplicateOutput, "output would overwrite input")
	}

	cfg, err := g.markingConfig()
	if err != nil {
		return err
	}

	cfg.ValidateOutput = cfg.ValidateOutput || c.Validate
	cfg.StageCheckpoints = cfg.StageCheckpoints || c.Checkpoints

	f, err := marking.New(cfg, marking.WithLogger(g.logger()))
	if err != nil {
		return err
	}

	submission, err := batch.LoadSubmission(c.Submission)
	if err != nil {
		return err
	}

	res, err := f.FinalizeFile(g.Ctx, c.Input, submission)
	if err != nil {
		return err
	}

	if err := batch.WriteFileAtomic(c.Output, res.PDF); err != nil {
		return err
	}

	out := finalizeOutput{
		Output:       c.Output,
		TotalMark:    res.TotalMark,
		GeneralMarks: res.Tally.GeneralMarks,
		SectionMarks: res.Tally.SectionMarks,
		Pages:        res.Pages,
	}

	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}

	logOutput(out)

	return nil
}

type TotalsCmd struct {
	Submission string `short:"s" required:"" type:"existingfile" help:"Submission JSON with marks"`
}

func (c *TotalsCmd) Run(g *Globals) error {
	cfg, err := g.markingConfig()
	if err != nil {
		return err
	}

	submission, err := batch.LoadSubmission(c.Submission)
	if err != nil {
		return err
	}

	tally, err := marking.ComputeTally(submission.Marks, cfg)
	if err != nil {
		return err
	}

	logOutput(tally)

	return nil
}

type InspectCmd struct {
	Input string `arg:"" name:"input" help:"Path to a finalized PDF" type:"existingfile"`
}

type inspectOutput struct {
	Annotations []*pdfutils.Annotation `json:"annotations"`
	Total       *float64               `json:"total,omitempty"`
}

func (c *InspectCmd) Run(g *Globals) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return err
	}

	annots, err := pdfutils.ReadMarkAnnotations(bytes.NewReader(data))
	if err != nil {
		return err
	}

	out := inspectOutput{Annotations: annots}

	if total, err := pdfutils.ReadSummaryTotal(bytes.NewReader(data)); err == nil {
		out.Total = &total
	} else {
		g.logger().WithError(err).Debug("no results page")
	}

	logOutput(out)

	return nil
}

type PreviewCmd struct {
	ImageOutputPath string  `short:"o" required:"" type:"path" help:"Output path of rendered images"`
	ImageBaseName   string  `short:"n" help:"Base name of saved images. Defaults to the input file name"`
	ImageFormat     string  `short:"f" enum:"jpg,png" default:"png" help:"Image format. Supports png and jpg"`
	ImageDPI        int     `short:"d" default:"120" help:"Image DPI"`
	ImageQuality    int     `short:"q" default:"90" help:"Image quality. Only applies to jpg images"`
	Pages           []int   `short:"p" help:"1-based pages to render. Defaults to every page"`
	CropToMarks     bool    `help:"Write one image per mark annotation instead of whole pages"`
	MarkPadding     float64 `default:"8" help:"Padding around cropped marks, in UI pixels"`

	Input string `arg:"" name:"input" help:"Path to input PDF" type:"existingfile"`
}

func (c *PreviewCmd) Run(g *Globals) error {
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return err
	}

	baseName := c.ImageBaseName
	if baseName == "" {
		baseName = strings.TrimSuffix(filepath.Base(c.Input), filepath.Ext(c.Input))
	}

	args := pdfutils.RenderArgs{
		OutputPath:  c.ImageOutputPath,
		BaseName:    baseName,
		Format:      c.ImageFormat,
		DPI:         float64(c.ImageDPI),
		Quality:     c.ImageQuality,
		Pages:       c.Pages,
		CropToMarks: c.CropToMarks,
		MarkPadding: c.MarkPadding,
	}

	if c.CropToMarks {
		annots, err := pdfutils.ReadMarkAnnotations(bytes.NewReader(data))
		if err != nil {
			return err
		}
		args.MarkRegions = pdfutils.MarkRegions(annots)
	}

	written, err := pdfutils.RenderPages(data, args)
	if err != nil {
		return err
	}

	g.logger().WithField("images", len(written)).Debug("rendered preview")
	logOutput(written)

	return nil
}

type BatchCmd struct {
	Jobs     int  `short:"j" default:"4" help:"Submissions finalized at once"`
	FailFast bool `help:"Stop at the first failed submission"`

	Manifest string `arg:"" name:"manifest" help:"JSON array of {input, submission, output} jobs" type:"existingfile"`
}

type batchOutput struct {
	batch.JobResult
	Error string `json:"error,omitempty"`
}

func (c *BatchCmd) Run(g *Globals) error {
	cfg, err := g.markingConfig()
	if err != nil {
		return err
	}

	log := g.logger()

	f, err := marking.New(cfg, marking.WithLogger(log))
	if err != nil {
		return err
	}

	jobs, err := batch.LoadManifest(c.Manifest)
	if err != nil {
		return err
	}

	runner := &batch.Runner{
		Finalizer:   f,
		Concurrency: c.Jobs,
		FailFast:    c.FailFast,
		Log:         log,
	}

	results, runErr := runner.Run(g.Ctx, jobs)

	out := make([]batchOutput, 0, len(results))
	for _, res := range results {
		o := batchOutput{JobResult: res}
		if res.Err != nil {
			o.Error = res.Err.Error()
		}
		out = append(out, o)
	}

	if results != nil {
		logOutput(out)
	}

	return runErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.Ctx = ctx

	kctx := kong.Parse(&cli,
		kong.Name("pdfmarks"),
		kong.Description("Finalize marked PDF submissions."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON),
	)

	err := kctx.Run(&cli.Globals)
	stop()
	endIfErr(err)
}
