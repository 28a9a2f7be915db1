// ABOUTME: MCP tool definitions and handlers for article operations
// ABOUTME: Provides tools for listing, reading, saving, syncing, and tracking progress

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/stash/internal/models"
	syncengine "github.com/harper/stash/internal/sync"
)

// Type definitions for input/output structures

type ListArticlesInput struct {
	Tag           *string `json:"tag,omitempty"`
	FavoritesOnly *bool   `json:"favorites_only,omitempty"`
	UnreadOnly    *bool   `json:"unread_only,omitempty"`
	Limit         *int    `json:"limit,omitempty"`
}

type ArticleOutput struct {
	ID              int64     `json:"id"`
	Title           *string   `json:"title,omitempty"`
	URL             *string   `json:"url,omitempty"`
	SiteName        *string   `json:"site_name,omitempty"`
	Excerpt         *string   `json:"excerpt,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	IsFavorite      bool      `json:"is_favorite"`
	ReadingProgress int       `json:"reading_progress"`
	ReadingMinutes  int       `json:"reading_minutes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListArticlesOutput struct {
	Articles []ArticleOutput `json:"articles"`
	Count    int             `json:"count"`
}

type ReadArticleInput struct {
	ID int64 `json:"id"`
}

type ReadArticleOutput struct {
	ArticleOutput
	Content *string `json:"content,omitempty"`
}

type SaveArticleInput struct {
	URL  string  `json:"url"`
	Tags *string `json:"tags,omitempty"`
}

type SetProgressInput struct {
	ID       int64 `json:"id"`
	Progress int   `json:"progress"`
}

type SetProgressOutput struct {
	ID       int64 `json:"id"`
	Progress int   `json:"progress"`
}

type SyncArticlesInput struct {
	Images *bool `json:"images,omitempty"`
}

type SyncArticlesOutput struct {
	NewArticles int     `json:"new_articles"`
	Total       int     `json:"total"`
	Stale       bool    `json:"stale"`
	Error       *string `json:"error,omitempty"`
}

func (s *Server) registerTools() {
	s.registerListArticlesTool()
	s.registerReadArticleTool()
	s.registerSaveArticleTool()
	s.registerSetProgressTool()
	s.registerSyncArticlesTool()
}

func (s *Server) registerListArticlesTool() {
	tool := mcp.Tool{
		Name:        "list_articles",
		Description: "List saved articles from the local collection. Works offline: only locally synced data is read. Supports filtering by tag, favorites, and unread status (reading progress below 100). Returns article metadata without content; use read_article for full content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tag": map[string]interface{}{
					"type":        "string",
					"description": "Only articles carrying this tag. Example: 'golang'",
				},
				"favorites_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only favorited articles.",
				},
				"unread_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only articles not yet read to completion.",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of articles to return.",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleListArticles)
}

func (s *Server) registerReadArticleTool() {
	tool := mcp.Tool{
		Name:        "read_article",
		Description: "Retrieve the full stored content of one saved article by ID, along with its metadata. Content is rendering-ready markdown produced by the extraction pipeline.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "number",
					"description": "The article ID. Example: 42",
				},
			},
			Required: []string{"id"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleReadArticle)
}

func (s *Server) registerSaveArticleTool() {
	tool := mcp.Tool{
		Name:        "save_article",
		Description: "Save a new article by URL. The backend extracts readable content; the created record is written through to the remote API and added to the local collection. Optionally attach comma-separated tags.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "The page URL to save. Example: 'https://example.com/post'",
				},
				"tags": map[string]interface{}{
					"type":        "string",
					"description": "Optional comma-separated tags. Example: 'golang, distributed-systems'",
				},
			},
			Required: []string{"url"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSaveArticle)
}

func (s *Server) registerSetProgressTool() {
	tool := mcp.Tool{
		Name:        "set_reading_progress",
		Description: "Set the reading progress (0-100) of a saved article. Progress is monotonic: a value below the current one is ignored, never a regression. The update is written through to the remote API.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "number",
					"description": "The article ID.",
				},
				"progress": map[string]interface{}{
					"type":        "number",
					"description": "Progress percentage, 0-100.",
				},
			},
			Required: []string{"id", "progress"},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSetProgress)
}

func (s *Server) registerSyncArticlesTool() {
	tool := mcp.Tool{
		Name:        "sync_articles",
		Description: "Reconcile the local article collection with the remote API: fetch unseen articles, merge, and persist. Returns how many new articles arrived. When the remote is unreachable, reports the cached collection as stale instead of failing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"images": map[string]interface{}{
					"type":        "boolean",
					"description": "Also download and cache images of new articles. Default false.",
				},
			},
		},
	}
	s.mcpServer.AddTool(tool, s.handleSyncArticles)
}

func articleOutput(a *models.Article) ArticleOutput {
	out := ArticleOutput{
		ID:              a.ID,
		Title:           a.Title,
		URL:             a.URL,
		SiteName:        a.SiteName,
		Excerpt:         a.Excerpt,
		Tags:            a.TagList(),
		IsFavorite:      a.IsFavorite,
		ReadingProgress: a.ReadingProgress,
		CreatedAt:       a.CreatedAt,
	}
	if rt := a.ReadingTime(); rt > 0 {
		out.ReadingMinutes = int(rt.Round(time.Minute) / time.Minute)
	}
	return out
}

func (s *Server) handleListArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ListArticlesInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	articles, _, err := s.store.Load(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	output := ListArticlesOutput{Articles: []ArticleOutput{}}
	for _, a := range articles {
		if input.Tag != nil && !a.HasTag(*input.Tag) {
			continue
		}
		if input.FavoritesOnly != nil && *input.FavoritesOnly && !a.IsFavorite {
			continue
		}
		if input.UnreadOnly != nil && *input.UnreadOnly && a.IsRead() {
			continue
		}
		output.Articles = append(output.Articles, articleOutput(a))
		if input.Limit != nil && len(output.Articles) >= *input.Limit {
			break
		}
	}
	output.Count = len(output.Articles)

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleReadArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ReadArticleInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	articles, _, err := s.store.Load(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load articles: %w", err)
	}

	for _, a := range articles {
		if a.ID == input.ID {
			output := ReadArticleOutput{ArticleOutput: articleOutput(a), Content: a.Content}
			jsonBytes, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal output: %w", err)
			}
			return mcp.NewToolResultText(string(jsonBytes)), nil
		}
	}
	return nil, fmt.Errorf("article not found: %d", input.ID)
}

func (s *Server) handleSaveArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SaveArticleInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid article URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("article URL must use http or https scheme, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("article URL must have a host")
	}

	tags := ""
	if input.Tags != nil {
		tags = *input.Tags
	}
	created, err := s.mutator.Save(ctx, s.userID, input.URL, tags)
	if err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(articleOutput(created), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleSetProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SetProgressInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if input.Progress < 0 || input.Progress > 100 {
		return nil, fmt.Errorf("progress must be between 0 and 100, got: %d", input.Progress)
	}

	if err := s.mutator.SetProgress(ctx, s.userID, input.ID, input.Progress); err != nil {
		return nil, fmt.Errorf("failed to set progress: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(SetProgressOutput{ID: input.ID, Progress: input.Progress}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleSyncArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input SyncArticlesInput
	if err := req.BindArguments(&input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	var opts []syncengine.Option
	if input.Images != nil && *input.Images {
		opts = append(opts, syncengine.WithImages())
	}

	res, err := s.engine.Sync(ctx, s.userID, opts...)
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}

	output := SyncArticlesOutput{
		NewArticles: len(res.New),
		Total:       len(res.All),
		Stale:       res.Err != nil,
	}
	if res.Err != nil {
		msg := res.Err.Error()
		output.Error = &msg
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
