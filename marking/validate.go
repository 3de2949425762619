package marking

import (
	"bytes"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

var disableConfigDir sync.Once

// ValidateOutput checks a finalized PDF with pdfcpu in relaxed mode and
// confirms it has the expected number of pages.
func ValidateOutput(pdf []byte, pages int) error {
	disableConfigDir.Do(pdfapi.DisableConfigDir)

	conf := pdfcpumodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfcpumodel.ValidationRelaxed

	if err := pdfapi.Validate(bytes.NewReader(pdf), conf); err != nil {
		return errors.Wrap(ErrOutputInvalid, err.Error())
	}

	n, err := pdfapi.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return errors.Wrap(ErrOutputInvalid, err.Error())
	}

	if n != pages {
		return errors.Wrapf(ErrOutputInvalid, "expected %d pages, found %d", pages, n)
	}

	return nil
}
