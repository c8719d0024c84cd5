package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent   = errors.New("qrcode: content cannot be empty")
	ErrFailedToEncode = errors.New("qrcode: failed to generate QR code")
)

const (
	defaultSize   = 256
	dataURIPrefix = "data:image/png;base64,"
)

// Level is the error-correction level. Higher levels survive more damage
// at the cost of denser codes.
type Level = skipqrcode.RecoveryLevel

const (
	Low     Level = skipqrcode.Low
	Medium  Level = skipqrcode.Medium
	High    Level = skipqrcode.High
	Highest Level = skipqrcode.Highest
)

type Config struct {
	Size int `env:"QRCODE_SIZE" envDefault:"256"`
}

// Encoder renders square PNG images of a fixed size.
type Encoder struct {
	size  int
	level Level
}

type Option func(*Encoder)

func WithSize(px int) Option {
	return func(e *Encoder) {
		if px > 0 {
			e.size = px
		}
	}
}

func WithLevel(l Level) Option {
	return func(e *Encoder) {
		e.level = l
	}
}

func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{size: defaultSize, level: Medium}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PNG encodes content into PNG bytes.
func (e *Encoder) PNG(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	png, err := skipqrcode.Encode(content, e.level, e.size)
	if err != nil {
		return nil, errors.Join(ErrFailedToEncode, err)
	}
	return png, nil
}

// DataURI encodes content as an inline "data:image/png;base64,..." value
// that can be placed directly in an <img src>.
func (e *Encoder) DataURI(content string) (string, error) {
	png, err := e.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
