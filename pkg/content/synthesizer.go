package content

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Synthesizer turns a listing into a platform-specific payload. The payload
// keys are what the corresponding publisher expects. Implementations must
// honor the context deadline.
type Synthesizer interface {
	Synthesize(ctx context.Context, platform string, listing models.Listing) (map[string]interface{}, error)
}

// TemplateSynthesizer fills catalog templates from listing fields. It is the
// default implementation; an LLM-backed one can replace it behind the same
// interface.
type TemplateSynthesizer struct {
	catalog TemplateCatalog
	rng     *rand.Rand
}

func NewTemplateSynthesizer(catalog TemplateCatalog) *TemplateSynthesizer {
	return &TemplateSynthesizer{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *TemplateSynthesizer) Synthesize(ctx context.Context, platform string, listing models.Listing) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	templates := s.catalog.ForPlatform(platform)
	switch platform {
	case models.PlatformInstagram:
		return s.instagramPayload(listing, templates), nil
	case models.PlatformYouTube:
		return s.youtubePayload(listing, templates), nil
	case models.PlatformBlog:
		return s.blogPayload(listing, templates), nil
	default:
		return nil, fmt.Errorf("no synthesizer for platform %q", platform)
	}
}

func (s *TemplateSynthesizer) instagramPayload(listing models.Listing, templates PlatformTemplates) map[string]interface{} {
	caption := s.fill(s.pick(templates.Captions), listing)
	hashtags := s.hashtags(listing, templates.Hashtags, 10)
	return map[string]interface{}{
		"caption":    caption + "\n\n" + hashtags,
		"hashtags":   hashtags,
		"story_text": fmt.Sprintf("%s\n%s\n%d KRW per night", listing.Title, listing.City, listing.PricePerNight),
		"image_url":  firstImage(listing),
	}
}

func (s *TemplateSynthesizer) youtubePayload(listing models.Listing, templates PlatformTemplates) map[string]interface{} {
	var amenities []string
	for _, amenity := range listing.Amenities {
		amenities = append(amenities, "- "+amenity)
	}
	description := fmt.Sprintf(
		"Today we visit a stay in %s.\n\nName: %s\nPrice: %d KRW per night\nRating: %.1f/5 (%d reviews)\nMax guests: %d\nBedrooms: %d\nBathrooms: %d\n\nAmenities:\n%s\n\n%s\n\nBook here: %s",
		listing.City, listing.Title, listing.PricePerNight, listing.Rating, listing.ReviewCount,
		listing.MaxGuests, listing.Bedrooms, listing.Bathrooms,
		strings.Join(amenities, "\n"), listing.Description, listing.BookingURL,
	)
	return map[string]interface{}{
		"title":       s.fill(s.pick(templates.Captions), listing),
		"description": description,
		"tags":        s.hashtags(listing, templates.Hashtags, 7),
		"video_url":   firstImage(listing),
	}
}

func (s *TemplateSynthesizer) blogPayload(listing models.Listing, templates PlatformTemplates) map[string]interface{} {
	title := s.fill(s.pick(templates.Captions), listing)
	var amenityItems strings.Builder
	for _, amenity := range listing.Amenities {
		amenityItems.WriteString("<li>" + amenity + "</li>")
	}
	body := fmt.Sprintf(
		"<h2>%s - a great pick for your %s trip</h2>"+
			"<p>%s</p>"+
			"<h3>Basics</h3><ul>"+
			"<li>Location: %s</li>"+
			"<li>Price: %d KRW per night</li>"+
			"<li>Rating: %.1f/5 (%d reviews)</li>"+
			"<li>Max guests: %d</li>"+
			"<li>Type: %s</li></ul>"+
			"<h3>Amenities</h3><ul>%s</ul>"+
			"<p>Book here: <a href=\"%s\">%s</a></p>",
		listing.Title, listing.City, listing.Description, listing.City,
		listing.PricePerNight, listing.Rating, listing.ReviewCount,
		listing.MaxGuests, listing.PropertyType, amenityItems.String(),
		listing.BookingURL, listing.Title,
	)
	excerpt := fmt.Sprintf("A stay in %s for %d KRW per night, rated %.1f by %d guests.",
		listing.City, listing.PricePerNight, listing.Rating, listing.ReviewCount)
	return map[string]interface{}{
		"title":            title,
		"content":          body,
		"excerpt":          excerpt,
		"tags":             strings.Join(templates.Hashtags, ", "),
		"meta_description": excerpt,
	}
}

func (s *TemplateSynthesizer) pick(options []string) string {
	if len(options) == 0 {
		return "%TITLE% in %CITY%"
	}
	return options[s.rng.Intn(len(options))]
}

func (s *TemplateSynthesizer) fill(template string, listing models.Listing) string {
	replacer := strings.NewReplacer(
		"%TITLE%", listing.Title,
		"%CITY%", listing.City,
		"%PRICE%", strconv.Itoa(listing.PricePerNight),
		"%GUESTS%", strconv.Itoa(listing.MaxGuests),
		"%RATING%", strconv.FormatFloat(listing.Rating, 'f', 1, 64),
	)
	return replacer.Replace(template)
}

func (s *TemplateSynthesizer) hashtags(listing models.Listing, base []string, max int) string {
	tags := append([]string{}, base...)
	if listing.City != "" {
		tags = append(tags, "#"+strings.ToLower(strings.ReplaceAll(listing.City, " ", "")))
	}
	if listing.PropertyType != "" {
		tags = append(tags, "#"+strings.ReplaceAll(listing.PropertyType, " ", ""))
	}
	if listing.PricePerNight > 0 && listing.PricePerNight < 100000 {
		tags = append(tags, "#budgetstay")
	} else if listing.PricePerNight > 150000 {
		tags = append(tags, "#luxurystay")
	}

	if len(tags) > max {
		indexes := s.rng.Perm(len(tags))[:max]
		picked := make([]string, 0, max)
		for _, idx := range indexes {
			picked = append(picked, tags[idx])
		}
		tags = picked
	}
	return strings.Join(tags, " ")
}

func firstImage(listing models.Listing) string {
	if len(listing.Images) > 0 {
		return listing.Images[0]
	}
	return ""
}
