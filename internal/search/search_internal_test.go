package search

// White-box testing required: normalize and clamp are unexported and decide
// the scores and lengths MergeResults and Captions return, but the public API
// only exposes the final weighted ranking.

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/mememe/internal/models"
)

func TestNormalize(t *testing.T) {
	c := qt.New(t)

	c.Run("empty slice is a no-op", func(c *qt.C) {
		c.Assert(normalize(nil), qt.HasLen, 0)
	})

	c.Run("divides by the maximum", func(c *qt.C) {
		in := []models.Summary{{ID: "a", Score: 10}, {ID: "b", Score: 5}}
		got := normalize(in)
		c.Assert(got[0].Score, qt.Equals, 1.0)
		c.Assert(got[1].Score, qt.Equals, 0.5)
		c.Assert(in[0].Score, qt.Equals, 10.0)
	})

	c.Run("non-positive maximum leaves scores unchanged", func(c *qt.C) {
		got := normalize([]models.Summary{{ID: "a", Score: 0}})
		c.Assert(got[0].Score, qt.Equals, 0.0)
	})
}

func TestClamp(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		limit, n, want int
	}{
		{limit: 0, n: 5, want: 5},
		{limit: -1, n: 5, want: 5},
		{limit: 3, n: 5, want: 3},
		{limit: 10, n: 5, want: 5},
	}
	for _, tt := range tests {
		c.Assert(clamp(tt.limit, tt.n), qt.Equals, tt.want)
	}
}
