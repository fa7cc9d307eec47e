package statuspage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// ErrMissingData is returned when a success response carries no "data" array.
var ErrMissingData = errors.New("statuspage: response has no data array")

// RawSection is a status-page section. A name ending in "*" marks the section vital.
type RawSection struct {
	ID   int64
	Name string
}

// RawResource is a monitored resource shown on the status page.
type RawResource struct {
	ID         string
	PublicName string
	Status     string
	// SectionID is nil when the resource belongs to no section.
	SectionID *int64
}

// RawReport is an incident or maintenance report.
type RawReport struct {
	Title string
	// EndsAt is nil when the report has no parseable end time.
	EndsAt              *time.Time
	AffectedResourceIDs []string
}

// ActiveAt reports whether the report ends strictly after now.
func (r RawReport) ActiveAt(now time.Time) bool {
	return r.EndsAt != nil && r.EndsAt.After(now)
}

// Affects reports whether resourceID is in the report's affected set.
func (r RawReport) Affects(resourceID string) bool {
	for _, id := range r.AffectedResourceIDs {
		if id == resourceID {
			return true
		}
	}
	return false
}

// Result pairs the decoded records with the HTTP status they arrived with.
type Result[T any] struct {
	StatusCode int
	Data       []T
}

// OK reports whether the response had a 2xx status.
func (r Result[T]) OK() bool {
	return isSuccess(r.StatusCode)
}

// ── Wire format ──────────────────────────────────────────────────────
// The API wraps every collection as {"data": [{"id": ..., "attributes": {...}}]}.
// Ids arrive either as strings or as numbers, so they are decoded loosely
// and normalised with cast.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type sectionDoc struct {
	ID         any `json:"id"`
	Attributes struct {
		Name string `json:"name"`
	} `json:"attributes"`
}

type resourceDoc struct {
	ID         any `json:"id"`
	Attributes *struct {
		PublicName string `json:"public_name"`
		Status     string `json:"status"`
		SectionID  any    `json:"status_page_section_id"`
	} `json:"attributes"`
}

type reportDoc struct {
	Attributes struct {
		Title             string `json:"title"`
		EndsAt            string `json:"ends_at"`
		AffectedResources []struct {
			ResourceID any `json:"status_page_resource_id"`
		} `json:"affected_resources"`
	} `json:"attributes"`
}

func (d sectionDoc) toRaw() (RawSection, error) {
	if d.ID == nil {
		return RawSection{}, errors.New("section id is missing")
	}
	id, err := numericID(d.ID)
	if err != nil {
		return RawSection{}, fmt.Errorf("section id %v is not numeric: %w", d.ID, err)
	}
	return RawSection{ID: id, Name: d.Attributes.Name}, nil
}

func (d resourceDoc) toRaw() (RawResource, error) {
	id, err := normaliseID(d.ID)
	if err != nil {
		return RawResource{}, fmt.Errorf("resource id: %w", err)
	}
	if d.Attributes == nil {
		return RawResource{}, fmt.Errorf("resource %s has no attributes", id)
	}
	if d.Attributes.Status == "" {
		return RawResource{}, fmt.Errorf("resource %s has no status", id)
	}

	res := RawResource{
		ID:         id,
		PublicName: d.Attributes.PublicName,
		Status:     d.Attributes.Status,
	}
	if d.Attributes.SectionID != nil {
		sid, err := numericID(d.Attributes.SectionID)
		if err != nil {
			return RawResource{}, fmt.Errorf("resource %s section id: %w", id, err)
		}
		res.SectionID = &sid
	}
	return res, nil
}

func (d reportDoc) toRaw() RawReport {
	rep := RawReport{Title: d.Attributes.Title}
	if t, ok := parseEndsAt(d.Attributes.EndsAt); ok {
		rep.EndsAt = &t
	}
	for _, ar := range d.Attributes.AffectedResources {
		if id, err := normaliseID(ar.ResourceID); err == nil {
			rep.AffectedResourceIDs = append(rep.AffectedResourceIDs, id)
		}
	}
	return rep
}

func normaliseID(v any) (string, error) {
	if v == nil {
		return "", errors.New("id is missing")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("id is empty")
	}
	return s, nil
}

// numericID reads a section id. Numbers go through cast; strings are always
// base 10, so "010" is 10 and "08" is 8.
func numericID(v any) (int64, error) {
	if s, ok := v.(string); ok {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	return cast.ToInt64E(v)
}

// parseEndsAt accepts RFC 3339 timestamps and bare dates, which mean
// midnight UTC.
func parseEndsAt(v string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
