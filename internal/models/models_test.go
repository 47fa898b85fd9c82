package models_test

import (
	"image"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/mememe/internal/models"
)

func TestNewMeme_HappyPath(t *testing.T) {
	c := qt.New(t)

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))

	before := time.Now().UTC().Add(-time.Second)
	m, err := models.NewMeme("HELLO", "WORLD", src, out)
	c.Assert(err, qt.IsNil)
	c.Assert(m.TopText, qt.Equals, "HELLO")
	c.Assert(m.BottomText, qt.Equals, "WORLD")
	c.Assert(m.Original, qt.Equals, image.Image(src))
	c.Assert(m.Composited, qt.Equals, image.Image(out))
	c.Assert(m.ID, qt.HasLen, 36)
	c.Assert(m.CreatedAt.After(before), qt.IsTrue)
	c.Assert(m.CreatedAt.Location(), qt.Equals, time.UTC)

	c.Run("empty captions are kept as-is", func(c *qt.C) {
		m, err := models.NewMeme("", "", src, out)
		c.Assert(err, qt.IsNil)
		c.Assert(m.TopText, qt.Equals, "")
		c.Assert(m.BottomText, qt.Equals, "")
	})

	c.Run("each meme gets a distinct ID", func(c *qt.C) {
		a, _ := models.NewMeme("a", "b", src, out)
		b, _ := models.NewMeme("a", "b", src, out)
		c.Assert(a.ID, qt.Not(qt.Equals), b.ID)
	})
}

func TestNewMeme_Errors(t *testing.T) {
	c := qt.New(t)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	c.Run("missing original", func(c *qt.C) {
		m, err := models.NewMeme("a", "b", nil, img)
		c.Assert(err, qt.ErrorIs, models.ErrNoSourceImage)
		c.Assert(m, qt.IsNil)
	})

	c.Run("missing composite", func(c *qt.C) {
		m, err := models.NewMeme("a", "b", img, nil)
		c.Assert(err, qt.ErrorIs, models.ErrNoComposite)
		c.Assert(m, qt.IsNil)
	})
}

func TestParseField(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		in      string
		want    models.Field
		wantErr bool
	}{
		{"top", models.FieldTop, false},
		{"TOP", models.FieldTop, false},
		{" bottom ", models.FieldBottom, false},
		{"middle", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		c.Run(tc.in, func(c *qt.C) {
			got, err := models.ParseField(tc.in)
			if tc.wantErr {
				c.Assert(err, qt.IsNotNil)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tc.want)
		})
	}
}

func TestField_Default(t *testing.T) {
	c := qt.New(t)
	c.Assert(models.FieldTop.Default(), qt.Equals, "TOP")
	c.Assert(models.FieldBottom.Default(), qt.Equals, "BOTTOM")
	c.Assert(models.FieldTop.String(), qt.Equals, "top")
	c.Assert(models.FieldBottom.String(), qt.Equals, "bottom")
}
