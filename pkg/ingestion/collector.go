package ingestion

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Collector produces the current set of marketable listings. Implementations
// must honor the context deadline.
type Collector interface {
	Collect(ctx context.Context) ([]models.Listing, error)
}

var propertyTypes = []string{
	"apartment", "house", "condo", "pension", "guesthouse",
	"hotel", "resort", "villa", "townhouse", "loft",
}

var amenityPool = []string{
	"wifi", "kitchen", "washer", "air conditioning", "free parking",
	"tv", "workspace", "elevator", "balcony", "coffee maker",
}

// CatalogCollector fabricates listing data per catalog city. It stands in
// for the live Airbnb search integration; listing IDs are stable per city
// and slot so repeated runs refresh rather than duplicate.
type CatalogCollector struct {
	catalog CityCatalog
	perCity int
	rng     *rand.Rand
}

func NewCatalogCollector(catalog CityCatalog, perCity int) *CatalogCollector {
	if perCity <= 0 {
		perCity = 5
	}
	return &CatalogCollector{
		catalog: catalog,
		perCity: perCity,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCollector) Collect(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	now := time.Now().UTC()

	for _, city := range c.catalog.ByPriority(0) {
		select {
		case <-ctx.Done():
			return listings, ctx.Err()
		default:
		}
		for i := 0; i < c.perCity; i++ {
			listings = append(listings, c.buildListing(city, i, now))
		}
	}
	return listings, nil
}

func (c *CatalogCollector) buildListing(city City, slot int, now time.Time) models.Listing {
	id := fmt.Sprintf("%s-%03d", citySlug(city.Name), slot+1)
	propertyType := propertyTypes[c.rng.Intn(len(propertyTypes))]
	amenities := c.pickAmenities(3 + c.rng.Intn(4))

	return models.Listing{
		ID:            id,
		Title:         fmt.Sprintf("%s %s #%d", city.Name, propertyType, slot+1),
		Description:   fmt.Sprintf("A %s in %s, close to the main sights.", propertyType, city.Name),
		City:          city.Name,
		Latitude:      city.Lat + (c.rng.Float64()-0.5)*0.05,
		Longitude:     city.Lng + (c.rng.Float64()-0.5)*0.05,
		PricePerNight: 40000 + c.rng.Intn(160000),
		PropertyType:  propertyType,
		MaxGuests:     2 + c.rng.Intn(6),
		Bedrooms:      1 + c.rng.Intn(3),
		Bathrooms:     1 + c.rng.Intn(2),
		Amenities:     amenities,
		Rating:        3.5 + c.rng.Float64()*1.5,
		ReviewCount:   c.rng.Intn(300),
		HostName:      fmt.Sprintf("host-%s", id),
		HostRating:    4.0 + c.rng.Float64(),
		Images: []string{
			fmt.Sprintf("https://images.example.com/%s/main.jpg", id),
			fmt.Sprintf("https://images.example.com/%s/room.jpg", id),
		},
		BookingURL: fmt.Sprintf("https://airbnb.com/rooms/%s", id),
		ScrapedAt:  now,
	}
}

func (c *CatalogCollector) pickAmenities(n int) []string {
	indexes := c.rng.Perm(len(amenityPool))
	if n > len(indexes) {
		n = len(indexes)
	}
	amenities := make([]string, 0, n)
	for _, idx := range indexes[:n] {
		amenities = append(amenities, amenityPool[idx])
	}
	return amenities
}

func citySlug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
