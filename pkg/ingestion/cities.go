package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// City is one collection target. Lower priority numbers are collected first.
type City struct {
	Name     string  `yaml:"name" json:"name"`
	Lat      float64 `yaml:"lat" json:"lat"`
	Lng      float64 `yaml:"lng" json:"lng"`
	Priority int     `yaml:"priority" json:"priority"`
}

type CityCatalog struct {
	Cities []City `yaml:"cities" json:"cities"`
}

// LoadCities reads the catalog from path, falling back to the built-in
// Korean city list when path is empty.
func LoadCities(path string) (CityCatalog, error) {
	if path == "" {
		return DefaultCities(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCities(), err
	}

	var catalog CityCatalog
	if err := yaml.Unmarshal(content, &catalog); err != nil {
		return CityCatalog{}, err
	}
	if len(catalog.Cities) == 0 {
		return CityCatalog{}, fmt.Errorf("city catalog empty")
	}
	return catalog, nil
}

// ByPriority returns up to limit cities, highest priority first.
func (c CityCatalog) ByPriority(limit int) []City {
	cities := make([]City, len(c.Cities))
	copy(cities, c.Cities)
	sort.Slice(cities, func(i, j int) bool {
		return cities[i].Priority < cities[j].Priority
	})
	if limit > 0 && limit < len(cities) {
		cities = cities[:limit]
	}
	return cities
}

func DefaultCities() CityCatalog {
	return CityCatalog{Cities: []City{
		{Name: "Seoul", Lat: 37.5665, Lng: 126.9780, Priority: 1},
		{Name: "Busan", Lat: 35.1796, Lng: 129.0756, Priority: 2},
		{Name: "Incheon", Lat: 37.4563, Lng: 126.7052, Priority: 3},
		{Name: "Daegu", Lat: 35.8714, Lng: 128.6014, Priority: 4},
		{Name: "Daejeon", Lat: 36.3504, Lng: 127.3845, Priority: 5},
		{Name: "Gwangju", Lat: 35.1595, Lng: 126.8526, Priority: 6},
		{Name: "Ulsan", Lat: 35.5384, Lng: 129.3114, Priority: 7},
		{Name: "Sejong", Lat: 36.4800, Lng: 127.2890, Priority: 8},
		{Name: "Jeju", Lat: 33.4996, Lng: 126.5312, Priority: 9},
		{Name: "Suwon", Lat: 37.2636, Lng: 127.0286, Priority: 10},
		{Name: "Goyang", Lat: 37.6584, Lng: 126.8320, Priority: 11},
		{Name: "Yongin", Lat: 37.2411, Lng: 127.1776, Priority: 12},
		{Name: "Seongnam", Lat: 37.4201, Lng: 127.1267, Priority: 13},
		{Name: "Bucheon", Lat: 37.5034, Lng: 126.7660, Priority: 14},
		{Name: "Hwaseong", Lat: 37.1995, Lng: 126.8314, Priority: 15},
	}}
}
