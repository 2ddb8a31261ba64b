package scanner

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxingqr "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode is returned when a frame or image contains no readable QR code.
var ErrNoCode = errors.New("scanner: no QR code found")

// DecodeFrame extracts the text payload of the QR code in img, if any.
func DecodeFrame(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("scanner: bitmap: %w", err)
	}
	result, err := zxingqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNoCode
	}
	return result.GetText(), nil
}

// DecodeImageFile reads an encoded image (PNG or JPEG) and extracts its QR
// payload. This backs the file-upload escape hatch.
func DecodeImageFile(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("scanner: decode image: %w", err)
	}
	return DecodeFrame(img)
}
