package publisher

import (
	"fmt"
	"strings"
)

// BuildTrackingURL appends the campaign UTM parameters to a booking URL so
// clicks can be attributed to the platform that produced them.
func BuildTrackingURL(bookingURL, platform string) string {
	if bookingURL == "" {
		return ""
	}
	separator := "?"
	if strings.Contains(bookingURL, "?") {
		separator = "&"
	}
	return fmt.Sprintf("%s%sutm_source=%s&utm_medium=social&utm_campaign=airbnb_marketing",
		bookingURL, separator, platform)
}
