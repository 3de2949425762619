package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/sirupsen/logrus"
)

// EffectiveRotation resolves the rotation a page is drawn with. An override
// replaces the stored value outright. Without one, a stored value that is
// not a canonical quarter turn is rewritten to the canonical value showing
// the same orientation. A nil result means the page has no /Rotate entry.
func EffectiveRotation(stored *int64, override *int) *int64 {
	if override != nil {
		angle := pdfutils.NormalizeAngle(int64(*override))
		return &angle
	}

	if stored == nil {
		return nil
	}

	angle := pdfutils.NormalizeAngle(*stored)

	return &angle
}

// rotatePages applies page setting overrides to every page of the document
// before any mark is placed.
func rotatePages(doc *document, settings pdfutils.PageSettingsList, log logrus.FieldLogger) {
	for i, page := range doc.pages {
		var override *int
		if rotation, ok := settings.Rotation(i); ok {
			override = &rotation
		}

		rotate := EffectiveRotation(page.Rotate, override)
		if rotate == nil {
			continue
		}

		if page.Rotate == nil || *page.Rotate != *rotate {
			log.WithFields(logrus.Fields{
				"page":     i,
				"rotation": *rotate,
				"override": override != nil,
			}).Debug("set page rotation")
		}

		page.Rotate = rotate
	}
}
