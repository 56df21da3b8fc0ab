package types

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidSiteVersion is returned for a site version token we don't know how to scrape.
var ErrInvalidSiteVersion = errors.New("invalid site version")

// SiteVersion represents a game version hosted by the source site
type SiteVersion string

const (
	ClassicSite SiteVersion = "classic"
	TBCSite     SiteVersion = "tbc"
	WotLKSite   SiteVersion = "wotlk"
	CataSite    SiteVersion = "cata"
)

var AllSiteVersions = []SiteVersion{ClassicSite, TBCSite, WotLKSite, CataSite}

const siteHost = "https://www.wowhead.com"

// ParseSiteVersion validates a site version token
func ParseSiteVersion(token string) (SiteVersion, error) {
	version := SiteVersion(token)
	if !slices.Contains(AllSiteVersions, version) {
		return "", fmt.Errorf("%w: %q (expected one of %v)", ErrInvalidSiteVersion, token, AllSiteVersions)
	}
	return version, nil
}

// BaseURL returns the root of the site for this version, e.g. https://www.wowhead.com/classic
func (v SiteVersion) BaseURL() string {
	return siteHost + "/" + string(v)
}
