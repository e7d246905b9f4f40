// Package opds implements OPDS Catalog 1.2 feed types and XML serialization,
// with the Page Streaming Extension (OPDS-PSE) used by comic readers to fetch
// album pages one at a time.
//
// Specifications: https://specs.opds.io/opds-1.2,
// https://github.com/anansi-project/opds-pse
package opds

import (
	"encoding/xml"
	"time"
)

const (
	// Namespaces
	NSAtom = "http://www.w3.org/2005/Atom"
	NSPSE  = "http://vaemendis.net/opds-pse/ns"

	// OPDS relation types
	RelCover             = "http://opds-spec.org/image"
	RelThumbnail         = "http://opds-spec.org/image/thumbnail"
	RelStream            = "http://vaemendis.net/opds-pse/stream"
	RelCatalogNavigation = "subsection"
	RelSelf              = "self"
	RelStart             = "start"
	RelUp                = "up"

	// MIME types
	MIMENavigationFeed  = "application/atom+xml;profile=opds-catalog;kind=navigation"
	MIMEAcquisitionFeed = "application/atom+xml;profile=opds-catalog;kind=acquisition"

	// PageNumberTemplate is the URI template variable a PSE client replaces
	// with a zero-based page number.
	PageNumberTemplate = "{pageNumber}"
)

// Feed represents an OPDS Atom feed (navigation or acquisition).
type Feed struct {
	XMLName  xml.Name `xml:"feed"`
	Xmlns    string   `xml:"xmlns,attr"`
	XmlnsPSE string   `xml:"xmlns:pse,attr,omitempty"`

	ID      string   `xml:"id"`
	Title   Text     `xml:"title"`
	Updated AtomDate `xml:"updated"`
	Author  *Author  `xml:"author,omitempty"`

	Links   []Link  `xml:"link"`
	Entries []Entry `xml:"entry"`
}

// NewNavigationFeed creates a new navigation feed, for listings whose
// entries all lead to other feeds.
func NewNavigationFeed(id, title string) *Feed {
	return &Feed{
		Xmlns:   NSAtom,
		ID:      id,
		Title:   Text{Value: title},
		Updated: AtomDate{Time: time.Now()},
	}
}

// NewAcquisitionFeed creates a new acquisition feed. The PSE namespace is
// always declared so that stream links can carry a page count.
func NewAcquisitionFeed(id, title string) *Feed {
	return &Feed{
		Xmlns:    NSAtom,
		XmlnsPSE: NSPSE,
		ID:       id,
		Title:    Text{Value: title},
		Updated:  AtomDate{Time: time.Now()},
	}
}

// Text represents an Atom text element with optional type attribute.
type Text struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

// Author represents the author of a feed or entry.
type Author struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

// AtomDate wraps time.Time for RFC 3339 XML serialization.
type AtomDate struct {
	Time time.Time
}

func (d AtomDate) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(d.Time.UTC().Format(time.RFC3339), start)
}

// Link represents an Atom link element.
type Link struct {
	Rel   string `xml:"rel,attr,omitempty"`
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr,omitempty"`
	Title string `xml:"title,attr,omitempty"`

	// PSECount is the page count of a stream link (pse:count). The feed must
	// declare the pse prefix, which NewAcquisitionFeed does.
	PSECount int `xml:"pse:count,attr,omitempty"`
}

// StreamLink returns a PSE stream link. hrefTemplate must contain
// PageNumberTemplate; mimeType is the type of the pages it serves.
func StreamLink(hrefTemplate, mimeType string, count int) Link {
	return Link{Rel: RelStream, Href: hrefTemplate, Type: mimeType, PSECount: count}
}

// Entry represents a single entry in an OPDS feed.
// It can be a navigation entry (pointing to another feed)
// or an acquisition entry (pointing to an album).
type Entry struct {
	ID      string   `xml:"id"`
	Title   Text     `xml:"title"`
	Updated AtomDate `xml:"updated"`
	Content *Content `xml:"content,omitempty"`

	Links []Link `xml:"link"`
}

// Content represents an Atom content element.
type Content struct {
	Type  string `xml:"type,attr,omitempty"`
	Value string `xml:",chardata"`
}

// AddLink appends a link to the feed.
func (f *Feed) AddLink(rel, href, mimeType string) {
	f.Links = append(f.Links, Link{Rel: rel, Href: href, Type: mimeType})
}

// AddEntry appends an entry to the feed.
func (f *Feed) AddEntry(e Entry) {
	f.Entries = append(f.Entries, e)
}

// MarshalToXML serializes the feed to XML bytes with a proper XML declaration.
func (f *Feed) MarshalToXML() ([]byte, error) {
	data, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
