package ocr

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultMinChars is the primary-engine output length below which the
// secondary engine is consulted.
const DefaultMinChars = 50

// DualEngine runs Primary and falls back to Secondary when Primary fails or
// returns fewer than MinChars characters. The longer of the two texts wins.
type DualEngine struct {
	Primary   Engine
	Secondary Engine
	MinChars  int
}

func NewDualEngine(primary, secondary Engine) *DualEngine {
	return &DualEngine{Primary: primary, Secondary: secondary, MinChars: DefaultMinChars}
}

func (d *DualEngine) Name() string {
	return d.Primary.Name() + "+" + d.Secondary.Name()
}

func (d *DualEngine) Recognize(ctx context.Context, imagePath string) (Result, error) {
	primary, perr := d.Primary.Recognize(ctx, imagePath)
	if perr == nil && utf8.RuneCountInString(strings.TrimSpace(primary.Text)) >= d.MinChars {
		return primary, nil
	}

	secondary, serr := d.Secondary.Recognize(ctx, imagePath)
	switch {
	case perr != nil && serr != nil:
		return Result{}, errors.Join(perr, serr)
	case serr != nil:
		return primary, nil
	case perr != nil:
		return secondary, nil
	}

	if len(secondary.Text) > len(primary.Text) {
		return secondary, nil
	}
	return primary, nil
}
