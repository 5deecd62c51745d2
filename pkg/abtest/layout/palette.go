package layout

import "github.com/ukaji3/abtest-summary-go/pkg/abtest/models"

// Palette holds the colors and font of a summary sheet.
type Palette struct {
	// Header fills the header row and colors its borders.
	Header models.Color
	// Accent fills the header cells of the value block.
	Accent models.Color
	// Positive, Negative and Neutral are conditional-rule fills.
	Positive models.Color
	Negative models.Color
	Neutral  models.Color
	// Stripe fills even data rows; White fills odd rows and base borders.
	Stripe models.Color
	White  models.Color
	// HeaderText colors header labels.
	HeaderText models.Color
	// FontFamily is applied to every cell.
	FontFamily string
}

// DefaultPalette returns the standard summary palette.
func DefaultPalette() Palette {
	return Palette{
		Header:     models.Color{Red: 0.984, Green: 0.737, Blue: 0.015},
		Accent:     models.Color{Red: 0.0, Green: 0.627, Blue: 0.51},
		Positive:   models.Color{Red: 0.718, Green: 0.882, Blue: 0.804},
		Negative:   models.Color{Red: 0.957, Green: 0.78, Blue: 0.765},
		Neutral:    models.Color{Red: 0.988, Green: 0.910, Blue: 0.698},
		Stripe:     models.Color{Red: 0.95, Green: 0.95, Blue: 0.95},
		White:      models.Color{Red: 1, Green: 1, Blue: 1},
		HeaderText: models.Color{Red: 1, Green: 1, Blue: 1},
		FontFamily: "Montserrat",
	}
}
