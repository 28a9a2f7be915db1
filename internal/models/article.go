// ABOUTME: Article model representing a saved, extracted piece of web content
// ABOUTME: Provides tag set helpers, monotonic reading progress, and reading-time estimates

package models

import (
	"sort"
	"strings"
	"time"
)

// Average adult silent-reading speed, used for time estimates.
const wordsPerMinute = 238

// Article is a saved article as issued by the remote API and cached locally.
// ID is assigned remotely and immutable; all local storage is partitioned by UserID.
type Article struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"userId"`
	Title           *string    `json:"title"`
	Content         *string    `json:"content"`
	Excerpt         *string    `json:"excerpt"`
	Author          *string    `json:"author"`
	SiteName        *string    `json:"siteName"`
	URL             *string    `json:"url"`
	Tags            string     `json:"tags"`
	IsFavorite      bool       `json:"isFavorite"`
	ReadingProgress int        `json:"readingProgress"`
	WordCount       *int       `json:"wordCount,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TagList splits the comma-separated Tags field into a normalized slice.
// Empty and whitespace-only entries are dropped; order is not significant
// but the result is sorted so callers get a stable view.
func (a *Article) TagList() []string {
	if strings.TrimSpace(a.Tags) == "" {
		return nil
	}

	seen := make(map[string]bool)
	var tags []string
	for _, raw := range strings.Split(a.Tags, ",") {
		tag := strings.TrimSpace(raw)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SetTagList replaces Tags with a normalized comma-separated encoding of tags.
func (a *Article) SetTagList(tags []string) {
	tmp := Article{Tags: strings.Join(tags, ",")}
	a.Tags = strings.Join(tmp.TagList(), ",")
}

// HasTag reports whether the tag set contains tag (after normalization).
func (a *Article) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range a.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// AdvanceProgress moves ReadingProgress toward v, clamped to [0, 100].
// Progress never moves backward; returns true if the value changed.
func (a *Article) AdvanceProgress(v int) bool {
	if v > 100 {
		v = 100
	}
	if v <= a.ReadingProgress {
		return false
	}
	a.ReadingProgress = v
	return true
}

// IsRead reports whether the article has been read to completion.
func (a *Article) IsRead() bool {
	return a.ReadingProgress >= 100
}

// ReadingTime estimates how long the article takes to read, based on WordCount.
// Returns 0 when no word count is available.
func (a *Article) ReadingTime() time.Duration {
	if a.WordCount == nil || *a.WordCount <= 0 {
		return 0
	}
	return time.Duration(float64(*a.WordCount)/wordsPerMinute*60) * time.Second
}
