package publisher

import (
	"context"
	"net/http"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/config"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Publisher pushes one content payload to one platform. A failed publish is
// reported in the result, not as an error return, so the coordinator can
// record every attempt the same way. Implementations must honor the context
// deadline.
type Publisher interface {
	Publish(ctx context.Context, content models.ContentRecord, listing models.Listing) models.PublishResult
}

// Registry maps platform names to their publishers. Only platforms with
// configured credentials are present.
type Registry map[string]Publisher

func NewRegistry(cfg *config.Config) Registry {
	client := &http.Client{Timeout: cfg.PublishTimeout}
	registry := Registry{}
	for _, platform := range cfg.EnabledPlatforms() {
		switch platform {
		case models.PlatformInstagram:
			registry[platform] = NewInstagramPublisher(client, cfg.InstagramAPIBase, cfg.InstagramUsername, cfg.InstagramPassword)
		case models.PlatformYouTube:
			registry[platform] = NewYouTubePublisher(client, cfg.YouTubeAPIBase, cfg.YouTubeClientID, cfg.YouTubeClientSecret)
		case models.PlatformBlog:
			registry[platform] = NewWordPressPublisher(client, cfg.WordPressURL, cfg.WordPressUsername, cfg.WordPressPassword)
		}
	}
	return registry
}

func (r Registry) Platforms() []string {
	platforms := make([]string, 0, len(r))
	for platform := range r {
		platforms = append(platforms, platform)
	}
	return platforms
}
