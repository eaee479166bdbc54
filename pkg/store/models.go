package store

import (
	"encoding/json"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"gorm.io/datatypes"
)

type listingModel struct {
	ID            string         `gorm:"primaryKey;column:id"`
	Title         string         `gorm:"column:title"`
	Description   string         `gorm:"column:description"`
	City          string         `gorm:"column:city;index"`
	Latitude      float64        `gorm:"column:latitude"`
	Longitude     float64        `gorm:"column:longitude"`
	PricePerNight int            `gorm:"column:price_per_night"`
	PropertyType  string         `gorm:"column:property_type"`
	MaxGuests     int            `gorm:"column:max_guests"`
	Bedrooms      int            `gorm:"column:bedrooms"`
	Bathrooms     int            `gorm:"column:bathrooms"`
	Amenities     datatypes.JSON `gorm:"column:amenities"`
	Rating        float64        `gorm:"column:rating"`
	ReviewCount   int            `gorm:"column:review_count"`
	HostName      string         `gorm:"column:host_name"`
	HostRating    float64        `gorm:"column:host_rating"`
	Images        datatypes.JSON `gorm:"column:images"`
	BookingURL    string         `gorm:"column:booking_url"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	ScrapedAt     time.Time      `gorm:"column:scraped_at;index"`
	IsActive      bool           `gorm:"column:is_active;index"`
}

func (listingModel) TableName() string {
	return "listings"
}

type contentModel struct {
	ID           int64             `gorm:"primaryKey;autoIncrement;column:id"`
	ListingID    string            `gorm:"column:listing_id;index"`
	Platform     string            `gorm:"column:platform;index"`
	Payload      datatypes.JSONMap `gorm:"column:payload"`
	Status       string            `gorm:"column:status;index"`
	AttemptCount int               `gorm:"column:attempt_count"`
	CreatedAt    time.Time         `gorm:"column:created_at;index"`
	PostedAt     *time.Time        `gorm:"column:posted_at"`
}

func (contentModel) TableName() string {
	return "content_records"
}

type attemptModel struct {
	ID           int64             `gorm:"primaryKey;autoIncrement;column:id"`
	ContentID    int64             `gorm:"column:content_id;index"`
	ListingID    string            `gorm:"column:listing_id;index"`
	Platform     string            `gorm:"column:platform;index"`
	PostID       string            `gorm:"column:post_id"`
	PostURL      string            `gorm:"column:post_url"`
	Status       string            `gorm:"column:status;index"`
	ErrorMessage string            `gorm:"column:error_message"`
	PostedAt     time.Time         `gorm:"column:posted_at;index"`
	Analytics    datatypes.JSONMap `gorm:"column:analytics"`
}

func (attemptModel) TableName() string {
	return "posting_attempts"
}

type conversionModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement;column:id"`
	ListingID       string    `gorm:"column:listing_id;uniqueIndex:idx_conversions_listing_platform"`
	Platform        string    `gorm:"column:platform;uniqueIndex:idx_conversions_listing_platform"`
	TrackingURL     string    `gorm:"column:tracking_url"`
	ClickCount      int64     `gorm:"column:click_count"`
	ConversionCount int64     `gorm:"column:conversion_count"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	LastUpdated     time.Time `gorm:"column:last_updated"`
}

func (conversionModel) TableName() string {
	return "conversions"
}

func toListingModel(listing models.Listing) listingModel {
	amenities, _ := json.Marshal(listing.Amenities)
	images, _ := json.Marshal(listing.Images)
	return listingModel{
		ID:            listing.ID,
		Title:         listing.Title,
		Description:   listing.Description,
		City:          listing.City,
		Latitude:      listing.Latitude,
		Longitude:     listing.Longitude,
		PricePerNight: listing.PricePerNight,
		PropertyType:  listing.PropertyType,
		MaxGuests:     listing.MaxGuests,
		Bedrooms:      listing.Bedrooms,
		Bathrooms:     listing.Bathrooms,
		Amenities:     datatypes.JSON(amenities),
		Rating:        listing.Rating,
		ReviewCount:   listing.ReviewCount,
		HostName:      listing.HostName,
		HostRating:    listing.HostRating,
		Images:        datatypes.JSON(images),
		BookingURL:    listing.BookingURL,
		ScrapedAt:     listing.ScrapedAt,
		IsActive:      true,
	}
}

func mapListingModel(model listingModel) models.Listing {
	var amenities []string
	if len(model.Amenities) > 0 {
		_ = json.Unmarshal(model.Amenities, &amenities)
	}
	var images []string
	if len(model.Images) > 0 {
		_ = json.Unmarshal(model.Images, &images)
	}
	return models.Listing{
		ID:            model.ID,
		Title:         model.Title,
		Description:   model.Description,
		City:          model.City,
		Latitude:      model.Latitude,
		Longitude:     model.Longitude,
		PricePerNight: model.PricePerNight,
		PropertyType:  model.PropertyType,
		MaxGuests:     model.MaxGuests,
		Bedrooms:      model.Bedrooms,
		Bathrooms:     model.Bathrooms,
		Amenities:     amenities,
		Rating:        model.Rating,
		ReviewCount:   model.ReviewCount,
		HostName:      model.HostName,
		HostRating:    model.HostRating,
		Images:        images,
		BookingURL:    model.BookingURL,
		CreatedAt:     model.CreatedAt,
		ScrapedAt:     model.ScrapedAt,
		IsActive:      model.IsActive,
	}
}

func mapContentModel(model contentModel) models.ContentRecord {
	return models.ContentRecord{
		ID:           model.ID,
		ListingID:    model.ListingID,
		Platform:     model.Platform,
		Payload:      map[string]interface{}(model.Payload),
		Status:       model.Status,
		AttemptCount: model.AttemptCount,
		CreatedAt:    model.CreatedAt,
		PostedAt:     model.PostedAt,
	}
}

func mapAttemptModel(model attemptModel) models.PostingAttempt {
	return models.PostingAttempt{
		ID:           model.ID,
		ContentID:    model.ContentID,
		ListingID:    model.ListingID,
		Platform:     model.Platform,
		PostID:       model.PostID,
		PostURL:      model.PostURL,
		Status:       model.Status,
		ErrorMessage: model.ErrorMessage,
		PostedAt:     model.PostedAt,
		Analytics:    map[string]interface{}(model.Analytics),
	}
}

func mapConversionModel(model conversionModel) models.ConversionStat {
	return models.ConversionStat{
		ID:              model.ID,
		ListingID:       model.ListingID,
		Platform:        model.Platform,
		TrackingURL:     model.TrackingURL,
		ClickCount:      model.ClickCount,
		ConversionCount: model.ConversionCount,
		CreatedAt:       model.CreatedAt,
		LastUpdated:     model.LastUpdated,
	}
}
