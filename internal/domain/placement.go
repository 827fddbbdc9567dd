package domain

import "errors"

// Placement is a record resolved into every coordinate system that could be derived
// from its source. Systems that could not be derived are nil and the reason is kept
// in Issues.
type Placement struct {
	Name        string
	Type        string
	Description string
	Source      SourceKind

	Geo   *GeoCoordinate
	UTM   *UTMCoordinate
	Local *LocalCoordinate

	Issues []error
}

// HasIssues returns true if any system could not be derived.
func (p Placement) HasIssues() bool {
	return len(p.Issues) > 0
}

// Err joins all issues into one error, nil without issues.
func (p Placement) Err() error {
	return errors.Join(p.Issues...)
}

// HasGeo returns true if the placement can be shown on a map.
func (p Placement) HasGeo() bool {
	return p.Geo != nil
}
