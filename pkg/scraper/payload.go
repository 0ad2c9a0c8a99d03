package scraper

import (
	"errors"
	"fmt"

	"github.com/leadforge/leadforge/pkg/model"
)

type JobType string

const (
	JobMaps      JobType = "maps"
	JobLinkedIn  JobType = "linkedin"
	JobValidator JobType = "validator"
)

var ErrUnknownJobType = errors.New("unknown scrape job type")

// Job is a parsed schedule payload: the closed set of provider job
// variants. Unrecognized types surface as ErrUnknownJobType instead of
// being silently dropped.
type Job struct {
	Type JobType
	Body interface{}
}

type MapsPayload struct {
	SearchStringsArray        []string     `json:"searchStringsArray"`
	LocationQuery             string       `json:"locationQuery"`
	MaxCrawledPlacesPerSearch int          `json:"maxCrawledPlacesPerSearch"`
	Website                   string       `json:"website,omitempty"`
	ProxyConfig               *ProxyConfig `json:"proxyConfig,omitempty"`
}

type ProxyConfig struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

type LinkedInSearchPayload struct {
	SearchURL string `json:"searchUrl"`
	StartPage int    `json:"startPage"`
	EndPage   int    `json:"endPage"`
	Cookie    string `json:"cookie,omitempty"`
}

type LinkedInProfilePayload struct {
	ProfileURLs []string `json:"profileUrls"`
}

type ValidatorPayload struct {
	Emails []string `json:"emails"`
}

// ParseJob decodes a schedule's metadata into its job variant.
func ParseJob(metadata model.JSONB) (*Job, error) {
	jobType, _ := metadata["type"].(string)

	switch JobType(jobType) {
	case JobMaps:
		return &Job{Type: JobMaps, Body: mapsPayload(metadata)}, nil
	case JobLinkedIn:
		return &Job{Type: JobLinkedIn, Body: linkedInPayload(metadata)}, nil
	case JobValidator:
		return &Job{Type: JobValidator, Body: validatorPayload(metadata)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, jobType)
	}
}

func mapsPayload(metadata model.JSONB) MapsPayload {
	payload := MapsPayload{
		SearchStringsArray:        stringSlice(metadata["searchStrings"]),
		LocationQuery:             stringValue(metadata["location"]),
		MaxCrawledPlacesPerSearch: intValue(metadata["maxPlaces"], 100),
	}
	if boolValue(metadata["websiteOnly"]) {
		payload.Website = "withWebsite"
	}
	if boolValue(metadata["useProxy"]) {
		payload.ProxyConfig = &ProxyConfig{UseApifyProxy: true}
	}
	return payload
}

func linkedInPayload(metadata model.JSONB) interface{} {
	if searchURL := stringValue(metadata["searchUrl"]); searchURL != "" {
		return LinkedInSearchPayload{
			SearchURL: searchURL,
			StartPage: intValue(metadata["startPage"], 1),
			EndPage:   intValue(metadata["endPage"], 1),
			Cookie:    stringValue(metadata["sessionCookie"]),
		}
	}
	return LinkedInProfilePayload{
		ProfileURLs: []string{stringValue(metadata["profileUrl"])},
	}
}

func validatorPayload(metadata model.JSONB) ValidatorPayload {
	emails := stringSlice(metadata["emails"])
	if emails == nil {
		emails = []string{}
	}
	return ValidatorPayload{Emails: emails}
}

func stringValue(raw interface{}) string {
	s, _ := raw.(string)
	return s
}

func boolValue(raw interface{}) bool {
	b, _ := raw.(bool)
	return b
}

func intValue(raw interface{}, fallback int) int {
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case int:
		if v > 0 {
			return v
		}
	}
	return fallback
}

func stringSlice(raw interface{}) []string {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
