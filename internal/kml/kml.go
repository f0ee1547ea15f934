// Package kml renders digest route segments as a KML document that opens in
// Google Earth and most map viewers.
package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"skylog/internal/digest"
	"skylog/internal/geo"
)

const namespace = "http://www.opengis.net/kml/2.2"

// KML is the root element.
type KML struct {
	XMLName   xml.Name `xml:"kml"`
	Namespace string   `xml:"xmlns,attr"`
	Document  Document `xml:"Document"`
}

// Document contains the document metadata and features.
type Document struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	Styles      []Style     `xml:"Style,omitempty"`
	Placemarks  []Placemark `xml:"Placemark"`
}

// Style defines the line appearance of route placemarks.
type Style struct {
	ID        string    `xml:"id,attr"`
	LineStyle LineStyle `xml:"LineStyle"`
}

// LineStyle colours are aabbggrr hex.
type LineStyle struct {
	Color string  `xml:"color"`
	Width float64 `xml:"width"`
}

// Placemark is one flight segment.
type Placemark struct {
	Name         string        `xml:"name"`
	Description  string        `xml:"description,omitempty"`
	StyleURL     string        `xml:"styleUrl,omitempty"`
	LineString   LineString    `xml:"LineString"`
	ExtendedData *ExtendedData `xml:"ExtendedData,omitempty"`
}

// LineString holds space separated lon,lat,alt tuples.
type LineString struct {
	Tessellate  int    `xml:"tessellate"`
	Coordinates string `xml:"coordinates"`
}

// ExtendedData holds custom data associated with a placemark.
type ExtendedData struct {
	Data []Data `xml:"Data"`
}

// Data is a single named value.
type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// Build creates a document with one LineString per segment.
func Build(name string, segments []digest.Segment, generated time.Time) KML {
	placemarks := make([]Placemark, 0, len(segments))
	for _, s := range segments {
		label := strings.TrimSpace(s.Callsign)
		if label == "" {
			label = s.Hex
		}
		data := []Data{{Name: "hex", Value: s.Hex}}
		if s.Callsign != "" {
			data = append(data, Data{Name: "chamada", Value: s.Callsign})
		}
		if s.Altitude != "" {
			data = append(data, Data{Name: "alt", Value: s.Altitude})
		}
		placemarks = append(placemarks, Placemark{
			Name:         label,
			Description:  fmt.Sprintf("%s\nFrom %s to %s", s.Hex, coord(s.From), coord(s.To)),
			StyleURL:     "#segmentStyle",
			LineString:   LineString{Tessellate: 1, Coordinates: coord(s.From) + " " + coord(s.To)},
			ExtendedData: &ExtendedData{Data: data},
		})
	}

	return KML{
		Namespace: namespace,
		Document: Document{
			Name:        name,
			Description: fmt.Sprintf("%d flight segments. Generated %s.", len(segments), generated.Format("2006-01-02 15:04:05")),
			Styles: []Style{
				{ID: "segmentStyle", LineStyle: LineStyle{Color: "ff00a5ff", Width: 2}},
			},
			Placemarks: placemarks,
		},
	}
}

// Encode writes doc as indented XML with the standard header.
func Encode(w io.Writer, doc KML) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return eris.Wrap(err, "kml: write header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "kml: encode")
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return eris.Wrap(err, "kml: write")
	}
	return nil
}

// coord formats p as KML's lon,lat,alt.
func coord(p geo.Point) string {
	return strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64) + ",0"
}
