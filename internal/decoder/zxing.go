package decoder

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ZXing decodes QR codes and the linear formats printed on asset labels
// (Code 128, Code 39, EAN-13). Readers are tried in that order and the first
// hit wins.
type ZXing struct {
	// TryHarder trades speed for accuracy on blurry or skewed frames.
	TryHarder bool
}

// NewZXing returns a decoder with TryHarder enabled.
func NewZXing() *ZXing {
	return &ZXing{TryHarder: true}
}

type reader struct {
	typ SymbolType
	new func() gozxing.Reader
}

var readers = []reader{
	{SymbolQR, func() gozxing.Reader { return qrcode.NewQRCodeReader() }},
	{SymbolBarcode, func() gozxing.Reader { return oned.NewCode128Reader() }},
	{SymbolBarcode, func() gozxing.Reader { return oned.NewCode39Reader() }},
	{SymbolBarcode, func() gozxing.Reader { return oned.NewEAN13Reader() }},
}

// Decode implements Decoder. Readers carry state, so each call builds its own.
func (z *ZXing) Decode(img image.Image) (Symbol, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Symbol{}, fmt.Errorf("binarizing frame: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{}
	if z.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	for _, r := range readers {
		res, err := r.new().Decode(bmp, hints)
		if err != nil {
			var rex gozxing.ReaderException
			if errors.As(err, &rex) {
				continue
			}
			return Symbol{}, fmt.Errorf("decoding frame: %w", err)
		}
		return Symbol{
			Type:   r.typ,
			Text:   res.GetText(),
			Format: res.GetBarcodeFormat().String(),
		}, nil
	}
	return Symbol{}, ErrNoSymbol
}
