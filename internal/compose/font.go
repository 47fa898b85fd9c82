package compose

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// ErrUnknownFont is returned when a font is neither built in nor a readable file.
var ErrUnknownFont = errors.New("unknown font")

var builtinFonts = map[string][]byte{
	"gobold":       gobold.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"goregular":    goregular.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
}

var (
	fontMu    sync.Mutex
	fontCache = make(map[string]*opentype.Font)
)

// FontNames lists the built-in font names.
func FontNames() []string {
	names := make([]string, 0, len(builtinFonts))
	for n := range builtinFonts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadFont returns the parsed font for a built-in name or a TTF/OTF path.
// An empty name selects DefaultFont.
func LoadFont(name string) (*opentype.Font, error) {
	if name == "" {
		name = DefaultFont
	}

	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := fontCache[name]; ok {
		return f, nil
	}

	data, ok := builtinFonts[name]
	if !ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("compose.LoadFont %q: %w", name, ErrUnknownFont)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("compose.LoadFont %q: %w", name, err)
	}
	fontCache[name] = f
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
