package ingestion

import (
	"context"
	"testing"
)

func TestCityCatalogPriorityOrder(t *testing.T) {
	catalog := DefaultCities()
	top := catalog.ByPriority(3)
	if len(top) != 3 {
		t.Fatalf("expected 3 cities, got %d", len(top))
	}
	if top[0].Name != "Seoul" || top[1].Name != "Busan" || top[2].Name != "Incheon" {
		t.Fatalf("unexpected priority order: %s, %s, %s", top[0].Name, top[1].Name, top[2].Name)
	}
}

func TestCatalogCollectorStableIDs(t *testing.T) {
	catalog := CityCatalog{Cities: []City{{Name: "Seoul", Lat: 37.5665, Lng: 126.978, Priority: 1}}}
	collector := NewCatalogCollector(catalog, 3)

	first, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(first))
	}

	second, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("listing IDs must be stable across runs: %s vs %s", first[i].ID, second[i].ID)
		}
	}
	for _, listing := range first {
		if listing.City != "Seoul" {
			t.Fatalf("unexpected city %q", listing.City)
		}
		if listing.BookingURL == "" || listing.Title == "" {
			t.Fatalf("incomplete listing: %+v", listing)
		}
	}
}

func TestCatalogCollectorHonorsCancellation(t *testing.T) {
	collector := NewCatalogCollector(DefaultCities(), 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collector.Collect(ctx)
	if err == nil {
		t.Fatal("expected context error from cancelled collect")
	}
}
