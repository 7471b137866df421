package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"strconv"
	"strings"

	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/metrics"
)

const (
	QRDefaultSize = 400
	QRMinSize     = 128
	QRMaxSize     = 1024

	// qrPrintSize is the resolution embedded in the print page; it is shown
	// at 300px.
	qrPrintSize = 600
)

var (
	qrDark  = color.RGBA{A: 0xff}
	qrLight = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// QROptions selects the rendering of a restaurant's QR code.
type QROptions struct {
	Size     int
	Theme    bool // use the restaurant's primary colour for the modules
	Download bool
}

// QRImage is a rendered PNG.
type QRImage struct {
	PNG      []byte
	Filename string // set for downloads
}

// QRService renders QR codes pointing at a restaurant's public menu. Nothing
// is stored: each request encodes the URL afresh.
type QRService struct {
	restaurants *RestaurantService
	baseURL     string
}

func NewQRService(db *gorm.DB, baseURL string) *QRService {
	return &QRService{
		restaurants: NewRestaurantService(db),
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// MenuURL is the public address encoded in the QR code.
func MenuURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/menu/" + slug
}

// ClampQRSize applies the default and bounds to a requested pixel size.
func ClampQRSize(size int) int {
	switch {
	case size <= 0:
		return QRDefaultSize
	case size < QRMinSize:
		return QRMinSize
	case size > QRMaxSize:
		return QRMaxSize
	}
	return size
}

// URL returns the public menu URL of an owned restaurant.
func (s *QRService) URL(ctx context.Context, userID, id string) (string, error) {
	rest, err := s.restaurants.Owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return MenuURL(s.baseURL, rest.Slug), nil
}

// PNG renders the QR code of an owned restaurant.
func (s *QRService) PNG(ctx context.Context, userID, id string, opts QROptions) (*QRImage, error) {
	rest, err := s.restaurants.Owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	dark := qrDark
	if opts.Theme {
		if c, ok := parseHexColor(rest.PrimaryColor); ok {
			dark = c
		}
	}

	png, err := encodeQR(MenuURL(s.baseURL, rest.Slug), ClampQRSize(opts.Size), dark)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	img := &QRImage{PNG: png}
	variant := "inline"
	if opts.Download {
		img.Filename = rest.Slug + "-qr.png"
		variant = "download"
	}
	metrics.QRRendered.WithLabelValues(variant).Inc()
	return img, nil
}

var printPage = template.Must(template.New("qr-print").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Name}} - QR Code</title>
    <style>
      body { display: flex; flex-direction: column; align-items: center; justify-content: center; min-height: 100vh; margin: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; }
      h1 { font-size: 24px; margin-bottom: 20px; }
      img { width: 300px; height: 300px; }
      p { margin-top: 20px; color: #666; font-size: 14px; }
    </style>
  </head>
  <body onload="window.print()">
    <h1>{{.Name}}</h1>
    <img src="{{.Image}}" alt="QR Code">
    <p>Scan the QR code to see our menu</p>
    <small>{{.URL}}</small>
  </body>
</html>
`))

// PrintPage renders a print-friendly HTML page with the restaurant name, the
// QR code as a data URI and a caption.
func (s *QRService) PrintPage(ctx context.Context, userID, id string) (string, error) {
	rest, err := s.restaurants.Owned(ctx, userID, id)
	if err != nil {
		return "", err
	}

	url := MenuURL(s.baseURL, rest.Slug)
	png, err := encodeQR(url, qrPrintSize, qrDark)
	if err != nil {
		return "", apperr.Internal(err)
	}

	var buf bytes.Buffer
	err = printPage.Execute(&buf, struct {
		Name  string
		URL   string
		Image template.URL
	}{
		Name:  rest.Name,
		URL:   url,
		Image: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	})
	if err != nil {
		return "", apperr.Internal(err)
	}

	metrics.QRRendered.WithLabelValues("print").Inc()
	return buf.String(), nil
}

func encodeQR(content string, size int, dark color.Color) ([]byte, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr: encode %q: %w", content, err)
	}
	q.ForegroundColor = dark
	q.BackgroundColor = qrLight
	return q.PNG(size)
}

// parseHexColor reads a #rrggbb colour.
func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
