package content

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type PlatformTemplates struct {
	Captions []string `yaml:"captions" json:"captions"`
	Hashtags []string `yaml:"hashtags" json:"hashtags"`
}

type TemplateCatalog struct {
	Platforms map[string]PlatformTemplates `yaml:"platforms" json:"platforms"`
}

// LoadTemplates reads the caption and hashtag catalog from disk. An empty
// path or a read failure falls back to the built-in catalog.
func LoadTemplates(path string) (TemplateCatalog, error) {
	if path == "" {
		return DefaultTemplates(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultTemplates(), err
	}

	var catalog TemplateCatalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return TemplateCatalog{}, err
	}
	if len(catalog.Platforms) == 0 {
		return TemplateCatalog{}, errors.New("no content templates configured")
	}
	return catalog, nil
}

func (c TemplateCatalog) ForPlatform(platform string) PlatformTemplates {
	if templates, ok := c.Platforms[platform]; ok {
		return templates
	}
	return DefaultTemplates().Platforms[platform]
}

func DefaultTemplates() TemplateCatalog {
	return TemplateCatalog{Platforms: map[string]PlatformTemplates{
		"instagram": {
			Captions: []string{
				"A hidden gem in %CITY% you have to see!",
				"The perfect stay for your %CITY% trip: %TITLE%",
				"Enjoy %CITY% from %PRICE% KRW a night!",
				"Room for %GUESTS% guests, ready for your next getaway",
				"Rated %RATING% by guests who stayed here",
			},
			Hashtags: []string{
				"#airbnb", "#koreatravel", "#staypick", "#travel", "#vacation",
				"#guesthouse", "#pension", "#travelgram", "#tripdiary", "#traveltips",
			},
		},
		"youtube": {
			Captions: []string{
				"Hidden gem found in %CITY%! Full review of %TITLE%",
				"Airbnb picks in %CITY% | %TITLE%",
				"A %CITY% stay for %PRICE% KRW a night",
				"Rated %RATING%! Is this the best stay in %CITY%?",
			},
			Hashtags: []string{
				"#airbnb", "#koreatravel", "#stayreview", "#travelvlog",
				"#travelguide", "#koreatrip", "#staytips",
			},
		},
		"blog": {
			Captions: []string{
				"%CITY% travel stay review: %TITLE%",
			},
			Hashtags: []string{
				"airbnb", "korea travel", "stay review", "travel tips",
				"travel guide", "sightseeing",
			},
		},
	}}
}
