package marking

import (
	"testing"

	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRotation(t *testing.T) {
	tests := []struct {
		name     string
		stored   *int64
		override *int
		want     *int64
	}{
		{"no rotation", nil, nil, nil},
		{"stored kept", rot(90), nil, rot(90)},
		{"override wins", rot(90), intp(180), rot(180)},
		{"override without stored", nil, intp(270), rot(270)},
		{"zero override unrotates", rot(270), intp(0), rot(0)},
		{"negative stored", rot(-90), nil, rot(270)},
		{"full turn stored", rot(450), nil, rot(90)},
		{"override normalized", nil, intp(-180), rot(180)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveRotation(tt.stored, tt.override)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestRotatePages(t *testing.T) {
	data := samplePDF(t,
		pageDef{width: 400, height: 600, rotate: rot(90)},
		pageDef{width: 400, height: 600, rotate: rot(-90)},
		pageDef{width: 400, height: 600},
		pageDef{width: 400, height: 600, rotate: rot(180)},
	)

	doc, err := loadDocument(data)
	require.NoError(t, err)

	settings := pdfutils.PageSettingsList{
		{Rotation: intp(180)},
		nil,
		{},
	}

	rotatePages(doc, settings, quietLogger())

	require.NotNil(t, doc.pages[0].Rotate)
	assert.EqualValues(t, 180, *doc.pages[0].Rotate)

	require.NotNil(t, doc.pages[1].Rotate)
	assert.EqualValues(t, 270, *doc.pages[1].Rotate)

	assert.Nil(t, doc.pages[2].Rotate)

	require.NotNil(t, doc.pages[3].Rotate)
	assert.EqualValues(t, 180, *doc.pages[3].Rotate)
}
