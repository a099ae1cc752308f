package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Package document errors, fatal for the parse phase.
var (
	ErrNoOPF      = errors.New("epub: missing package document (OPF)")
	ErrInvalidOPF = errors.New("epub: invalid package document")
	ErrEmptySpine = errors.New("epub: no content in spine")
)

// opfXML mirrors the OPF package document.
type opfXML struct {
	XMLName  xml.Name `xml:"package"`
	Version  string   `xml:"version,attr"`
	Metadata struct {
		Title      []string `xml:"title"`
		Creator    []string `xml:"creator"`
		Language   []string `xml:"language"`
		Identifier []string `xml:"identifier"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		Toc      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// parseOPF parses the package document and returns it together with the base
// directory all manifest hrefs resolve against.
func parseOPF(zr *zip.Reader, opfName string) (*pkg, string, error) {
	data, err := readZipFile(zr, opfName)
	if err != nil {
		return nil, "", ErrNoOPF
	}

	var raw opfXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidOPF, err)
	}

	p := &pkg{
		Version:  raw.Version,
		Manifest: make(map[string]ManifestItem, len(raw.Manifest.Items)),
	}
	if len(raw.Metadata.Title) > 0 {
		p.Metadata.Title = strings.TrimSpace(raw.Metadata.Title[0])
	}
	for _, c := range raw.Metadata.Creator {
		if s := strings.TrimSpace(c); s != "" {
			p.Metadata.Creator = append(p.Metadata.Creator, s)
		}
	}
	if len(raw.Metadata.Language) > 0 {
		p.Metadata.Language = strings.TrimSpace(raw.Metadata.Language[0])
	}
	if len(raw.Metadata.Identifier) > 0 {
		p.Metadata.Identifier = strings.TrimSpace(raw.Metadata.Identifier[0])
	}

	for _, item := range raw.Manifest.Items {
		mi := ManifestItem{ID: item.ID, Href: item.Href, MediaType: item.MediaType}
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
		}
		p.Manifest[item.ID] = mi
	}

	for _, ref := range raw.Spine.ItemRefs {
		if ref.Linear != "no" {
			p.Spine = append(p.Spine, ref.IDRef)
		}
	}
	if len(p.Spine) == 0 {
		return nil, "", ErrEmptySpine
	}

	baseDir := path.Dir(opfName)
	if baseDir == "." {
		baseDir = ""
	}
	return p, baseDir, nil
}

// findNav returns the EPUB 3 nav document manifest item, if any.
func (p *pkg) findNav() *ManifestItem {
	for _, item := range p.Manifest {
		for _, prop := range item.Properties {
			if prop == "nav" {
				return &item
			}
		}
	}
	return nil
}

// findNCX returns the EPUB 2 NCX manifest item, if any.
func (p *pkg) findNCX() *ManifestItem {
	for _, item := range p.Manifest {
		if item.MediaType == "application/x-dtbncx+xml" {
			return &item
		}
	}
	return nil
}
