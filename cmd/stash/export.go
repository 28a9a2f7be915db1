// ABOUTME: Export command writing articles as markdown files with YAML frontmatter
// ABOUTME: Produces one file per article for backup or use in other tools

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// frontmatter is the metadata block at the top of each exported file.
type frontmatter struct {
	ID       int64     `yaml:"id"`
	Title    string    `yaml:"title,omitempty"`
	URL      string    `yaml:"url,omitempty"`
	Author   string    `yaml:"author,omitempty"`
	SiteName string    `yaml:"site_name,omitempty"`
	Tags     []string  `yaml:"tags,omitempty"`
	Favorite bool      `yaml:"favorite,omitempty"`
	Progress int       `yaml:"reading_progress,omitempty"`
	Saved    time.Time `yaml:"saved"`
}

var exportCmd = &cobra.Command{
	Use:   "export <directory>",
	Short: "Export articles as markdown files",
	Long: `Write every locally stored article to a directory as markdown
with YAML frontmatter. Existing files are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		articles, ok, err := articleStore.Load(cmd.Context(), cfg.UserID)
		if err != nil {
			return fmt.Errorf("failed to load articles: %w", err)
		}
		if !ok || len(articles) == 0 {
			fmt.Println("No local articles to export")
			return nil
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}

		for _, a := range articles {
			fm := frontmatter{
				ID:       a.ID,
				Tags:     a.TagList(),
				Favorite: a.IsFavorite,
				Progress: a.ReadingProgress,
				Saved:    a.CreatedAt,
			}
			if a.Title != nil {
				fm.Title = *a.Title
			}
			if a.URL != nil {
				fm.URL = *a.URL
			}
			if a.Author != nil {
				fm.Author = *a.Author
			}
			if a.SiteName != nil {
				fm.SiteName = *a.SiteName
			}

			meta, err := yaml.Marshal(&fm)
			if err != nil {
				return fmt.Errorf("failed to marshal frontmatter for article %d: %w", a.ID, err)
			}

			var body strings.Builder
			body.WriteString("---\n")
			body.Write(meta)
			body.WriteString("---\n\n")
			if a.Content != nil {
				body.WriteString(*a.Content)
				if !strings.HasSuffix(*a.Content, "\n") {
					body.WriteString("\n")
				}
			}

			path := filepath.Join(dir, exportFilename(a.ID, fm.Title))
			if err := os.WriteFile(path, []byte(body.String()), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}

		color.Green("Exported %d article(s) to %s", len(articles), dir)
		return nil
	},
}

// exportFilename builds a stable, filesystem-safe name like "42-some-title.md".
func exportFilename(id int64, title string) string {
	slug := slugify(title)
	if slug == "" {
		return fmt.Sprintf("%d.md", id)
	}
	return fmt.Sprintf("%d-%s.md", id, slug)
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	return slug
}
