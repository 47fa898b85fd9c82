// Package markdown writes the gallery.md manifest that indexes shared memes.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest written into the share directory.
const FileName = "gallery.md"

// Title heads a new gallery.
const Title = "Shared memes"

// Entry describes one shared meme image.
type Entry struct {
	// File is the image's name relative to the gallery.
	File     string
	Top      string
	Bottom   string
	Width    int
	Height   int
	SharedAt time.Time
}

// Meta is the gallery's YAML front matter.
type Meta struct {
	Title   string    `yaml:"title"`
	Created time.Time `yaml:"created"`
	Updated time.Time `yaml:"updated"`
	Count   int       `yaml:"count"`
}

// RenderSection produces a single ### heading block for a shared image.
func RenderSection(e Entry) string {
	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(e.File)
	sb.WriteString("\n**Top:** ")
	sb.WriteString(caption(e.Top))
	sb.WriteString("\n**Bottom:** ")
	sb.WriteString(caption(e.Bottom))
	if e.Width > 0 && e.Height > 0 {
		sb.WriteString("\n**Size:** ")
		sb.WriteString(strconv.Itoa(e.Width))
		sb.WriteString("x")
		sb.WriteString(strconv.Itoa(e.Height))
	}
	if !e.SharedAt.IsZero() {
		sb.WriteString("\n**Shared:** ")
		sb.WriteString(e.SharedAt.UTC().Format(time.RFC3339))
	}
	sb.WriteString("\n\n![")
	sb.WriteString(e.File)
	sb.WriteString("](")
	sb.WriteString(e.File)
	sb.WriteString(")")
	return sb.String()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// caption renders s on the line it labels. Line breaks become spaces so a
// caption cannot start a heading or split its section.
func caption(s string) string {
	s = lineBreaks.Replace(s)
	if strings.TrimSpace(s) == "" {
		return "_(empty)_"
	}
	return s
}

// WriteGalleryEntry creates or appends to gallery.md inside dir. The directory
// must already exist.
func WriteGalleryEntry(dir string, e Entry) error {
	filePath := filepath.Join(dir, FileName)
	section := RenderSection(e)
	now := time.Now().UTC().Truncate(time.Second)

	var content string
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		content, err = createNewGalleryFile(section, now)
		if err != nil {
			return err
		}
	} else {
		existing, err := os.ReadFile(filePath) // #nosec G304 -- path is built from the configured share directory
		if err != nil {
			return fmt.Errorf("markdown.WriteGalleryEntry: %w", err)
		}
		content, err = appendToGalleryFile(string(existing), section, now)
		if err != nil {
			return err
		}
	}

	return os.WriteFile(filePath, []byte(content), 0o644) // #nosec G306 -- the gallery index holds no secrets
}

// ReadMeta returns the front matter of the gallery in dir.
func ReadMeta(dir string) (Meta, error) {
	b, err := os.ReadFile(filepath.Join(dir, FileName)) // #nosec G304 -- path is built from the configured share directory
	if err != nil {
		return Meta{}, fmt.Errorf("markdown.ReadMeta: %w", err)
	}
	fm, _ := splitFrontmatter(string(b))
	return parseFrontmatter(fm)
}

// ---------------------------------------------------------------------------
// File creation
// ---------------------------------------------------------------------------

func createNewGalleryFile(section string, now time.Time) (string, error) {
	fm, err := renderFrontmatter(Meta{Title: Title, Created: now, Updated: now, Count: 1})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fm)
	sb.WriteString("\n# ")
	sb.WriteString(Title)
	sb.WriteString("\n\n")
	sb.WriteString(section)
	sb.WriteString("\n")
	return sb.String(), nil
}

// ---------------------------------------------------------------------------
// File appending
// ---------------------------------------------------------------------------

func appendToGalleryFile(content, section string, now time.Time) (string, error) {
	frontmatter, body := splitFrontmatter(content)

	meta, err := parseFrontmatter(frontmatter)
	if err != nil {
		return "", err
	}
	if meta.Title == "" {
		meta.Title = Title
	}
	if meta.Created.IsZero() {
		meta.Created = now
	}
	meta.Updated = now
	meta.Count++

	fm, err := renderFrontmatter(meta)
	if err != nil {
		return "", err
	}
	return fm + strings.TrimRight(body, "\n") + "\n\n" + section + "\n", nil
}

// splitFrontmatter splits YAML front matter (without its --- fences) from the body.
// Returns ("", content) when no front matter is detected.
func splitFrontmatter(content string) (frontmatter, body string) {
	if !strings.HasPrefix(content, "---\n") {
		return "", content
	}
	parts := strings.SplitN(content, "---\n", 3)
	if len(parts) >= 3 {
		return parts[1], parts[2]
	}
	return "", content
}

func parseFrontmatter(frontmatter string) (Meta, error) {
	var m Meta
	if strings.TrimSpace(frontmatter) == "" {
		return m, nil
	}
	if err := yaml.Unmarshal([]byte(frontmatter), &m); err != nil {
		return Meta{}, fmt.Errorf("markdown: parse front matter: %w", err)
	}
	return m, nil
}

func renderFrontmatter(m Meta) (string, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("markdown: render front matter: %w", err)
	}
	return "---\n" + string(b) + "---\n", nil
}

