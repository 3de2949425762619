package pdfutils

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/golang/geo/r2"
)

type RenderArgs struct {
	OutputPath  string
	BaseName    string
	Format      string
	DPI         float64
	Quality     int
	Pages       []int
	CropToMarks bool
	MarkPadding float64
	MarkRegions map[int][]r2.Rect
}

// RenderPages rasterizes the pages of a PDF and writes one image per page,
// or one image per mark region when CropToMarks is set. Page numbers in
// args.Pages are 1-based; empty means every page. It returns the written
// paths.
func RenderPages(pdf []byte, args RenderArgs) ([]string, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, err
	}

	defer doc.Close()

	if _, err := os.Stat(args.OutputPath); os.IsNotExist(err) {
		if err = os.MkdirAll(args.OutputPath, os.ModePerm); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	pages := args.Pages
	if len(pages) == 0 {
		for i := 1; i <= doc.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	written := []string{}

	for _, pageNum := range pages {
		if pageNum < 1 || pageNum > doc.NumPage() {
			return written, fmt.Errorf("page %d out of range", pageNum)
		}

		pageImg, err := doc.ImageDPI(pageNum-1, args.DPI)
		if err != nil {
			return written, err
		}

		var img image.Image = pageImg

		if !args.CropToMarks {
			imagePath := filepath.Join(args.OutputPath, fmt.Sprintf("%s-%d.%s", args.BaseName, pageNum, args.Format))
			if err := WriteImage(&img, imagePath, args.Format, args.Quality); err != nil {
				return written, err
			}
			written = append(written, imagePath)
			continue
		}

		// Mark regions are in UI pixels on the displayed page.
		scale := args.DPI / 96

		for _, region := range args.MarkRegions[pageNum] {
			crop := image.Rect(
				int(math.Round((region.X.Lo-args.MarkPadding)*scale)),
				int(math.Round((region.Y.Lo-args.MarkPadding)*scale)),
				int(math.Round((region.X.Hi+args.MarkPadding)*scale)),
				int(math.Round((region.Y.Hi+args.MarkPadding)*scale)),
			).Intersect(img.Bounds())

			if crop.Empty() {
				continue
			}

			cropped, err := CropImage(&img, crop)
			if err != nil {
				return written, err
			}

			imagePath := filepath.Join(
				args.OutputPath,
				fmt.Sprintf("%s-%d-x%d-y%d.%s", args.BaseName, pageNum, int(region.X.Lo), int(region.Y.Lo), args.Format),
			)

			if err := WriteImage(&cropped, imagePath, args.Format, args.Quality); err != nil {
				return written, err
			}
			written = append(written, imagePath)
		}
	}

	return written, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func CropImage(img *image.Image, crop image.Rectangle) (image.Image, error) {
	simg, ok := (*img).(subImager)
	if !ok {
		return nil, fmt.Errorf("image does not support cropping")
	}

	return simg.SubImage(crop), nil
}

func WriteImage(img *image.Image, name string, format string, quality int) error {
	if format == "jpg" {
		return writeJPGImage(img, name, quality)
	}

	return writePNGImage(img, name)
}

func writeJPGImage(img *image.Image, name string, quality int) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	defer fd.Close()
	return jpeg.Encode(fd, *img, &jpeg.Options{Quality: quality})
}

func writePNGImage(img *image.Image, name string) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	defer fd.Close()
	return png.Encode(fd, *img)
}
