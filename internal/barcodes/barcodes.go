// Package barcodes renders sample codes for the products in a catalog so a
// scanner can be pointed at something.
package barcodes

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length of generated images in pixels.
const DefaultSize = 256

// PNG encodes content as a QR code image of size x size pixels.
func PNG(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(size)); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return buf.Bytes(), nil
}

// Terminal renders content as a QR code using half-block characters, two
// modules per character row. Dark modules are drawn as spaces on a light
// background so the code scans from a dark terminal.
func Terminal(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	bits := qr.Bitmap()
	var b strings.Builder
	for y := 0; y < len(bits); y += 2 {
		for x := range bits[y] {
			top := bits[y][x]
			bottom := y+1 < len(bits) && bits[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune(' ')
			case top:
				b.WriteRune('▄')
			case bottom:
				b.WriteRune('▀')
			default:
				b.WriteRune('█')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FileName returns a file system safe name for a product's code image.
func FileName(p model.Product) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, p.Barcode)
	return name + ".png"
}

// WriteAll writes one PNG per product into dir and returns the paths
// written. Progress is drawn on progress; pass io.Discard to hide it.
func WriteAll(dir string, products []model.Product, size int, progress io.Writer) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(products),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Rendering codes...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(progress); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)

	paths := make([]string, 0, len(products))
	for _, p := range products {
		data, err := PNG(p.Barcode, size)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", p.Barcode, err)
		}

		path := filepath.Join(dir, FileName(p))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)

		slog.Debug("Wrote sample code", "barcode", p.Barcode, "path", path)
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	return paths, nil
}
