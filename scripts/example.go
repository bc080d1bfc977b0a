package main

import (
	"fmt"
	"log"

	"github.com/kass/capital-routes/pkg/arc"
	"github.com/kass/capital-routes/pkg/models"
	"github.com/kass/capital-routes/pkg/routes"
	"github.com/kass/capital-routes/pkg/style"
)

func main() {
	capitals := []models.Capital{
		{Name: "Helsinki", CountryName: "Finland", Longitude: "24.933333", Latitude: "60.166667"},
		{Name: "Tallinn", CountryName: "Estonia", Longitude: "24.716667", Latitude: "59.433333"},
		{Name: "Stockholm", CountryName: "Sweden", Longitude: "18.05", Latitude: "59.333333"},
		{Name: "Berlin", CountryName: "Germany", Longitude: "13.4", Latitude: "52.516667"},
		{Name: "Cairo", CountryName: "Egypt", Longitude: "31.25", Latitude: "30.05"},
		{Name: "Tokyo", CountryName: "Japan", Longitude: "139.75", Latitude: "35.683333"},
		{Name: "Washington", CountryName: "United States", Longitude: "-77.016667", Latitude: "38.883333"},
		{Name: "Canberra", CountryName: "Australia", Longitude: "149.133333", Latitude: "-35.266667"},
		{Name: "Atlantis", CountryName: "Nowhere", Longitude: "", Latitude: "12"},
	}

	dataset, err := routes.New(capitals, routes.WithOrigin("Helsinki"), routes.WithPointCount(100))
	if err != nil {
		log.Fatal(err)
	}

	// Example 1: routes from Helsinki, skipped records are reported next to them
	fmt.Println("=== Routes from Helsinki ===")
	coll, err := dataset.RoutesFromOrigin()
	if err != nil {
		fmt.Printf("skipped: %v\n", err)
	}
	for _, r := range coll.Routes {
		fmt.Printf("  %-40s %-13s %s width %.1f\n", r.Summary(), r.Category, r.Color, r.LineWidth)
	}

	// Example 2: switching the theme keeps geometry and distances
	fmt.Println("\n=== Light theme ===")
	dataset.Restyle(style.Light)
	for _, r := range coll.Routes[:3] {
		fmt.Printf("  %-12s %s\n", r.Destination, r.Color)
	}

	// Example 3: nearest capitals to a point in the Baltic sea
	fmt.Println("\n=== Nearest capitals to (59.5, 21.0) ===")
	point := models.Location{Lat: 59.5, Lon: 21.0}
	for _, c := range dataset.Index().Nearest(point, 3) {
		loc, _ := arc.CapitalLocation(c)
		fmt.Printf("  %-12s %6.0f km\n", c.Name, arc.Distance(point, loc))
	}

	// Example 4: capitals in a bounding box around northern Europe
	fmt.Println("\n=== Capitals in northern Europe (Bounding Box) ===")
	found, err := dataset.Index().WithinBox(models.BoundingBox{
		BottomLeft: models.Location{Lat: 50, Lon: 5},
		TopRight:   models.Location{Lat: 70, Lon: 35},
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, c := range found {
		fmt.Printf("  %s, %s\n", c.Name, c.CountryName)
	}

	// Example 5: GeoJSON with the short routes highlighted
	fc := coll.FeatureCollection(routes.WithHighlight(style.Short))
	data, err := fc.MarshalJSON()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nGeoJSON: %d features, %d bytes\n", len(fc.Features), len(data))

	fmt.Println("\n=== Legend ===")
	for _, e := range style.Legend(dataset.Theme()) {
		fmt.Printf("  %-13s %-16s %s\n", e.Category, e.Label(), e.Color)
	}
}
