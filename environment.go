package signpost

import (
	"fmt"
	"strings"
)

// An Environment names where a signpost app runs, deciding how it caches views and secures cookies.
type Environment string

const (
	Development Environment = "DEVELOPMENT"
	Production  Environment = "PRODUCTION"
	Review      Environment = "REVIEW"
	Staging     Environment = "STAGING"
	Testing     Environment = "TESTING"
)

var environments = map[Environment]bool{
	Development: false,
	Production:  true,
	Review:      false,
	Staging:     true,
	Testing:     false,
}

// ParseEnvironment reads s, in any case, as an Environment.
func ParseEnvironment(s string) (Environment, error) {
	e := Environment(strings.ToUpper(strings.TrimSpace(s)))
	if err := e.Valid(); err != nil {
		return "", fmt.Errorf("%w: %q is not an environment", err, s)
	}

	return e, nil
}

func (e Environment) String() string { return string(e) }

// Valid returns ErrNotValid unless e is one of the declared Environments.
func (e Environment) Valid() error {
	if _, ok := environments[e]; !ok {
		return ErrNotValid
	}

	return nil
}

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }
func (e Environment) IsReview() bool      { return e == Review }
func (e Environment) IsStaging() bool     { return e == Staging }
func (e Environment) IsTesting() bool     { return e == Testing }

// CachesViews reports whether views are served from the file cache
// without checking their modification times on every request.
func (e Environment) CachesViews() bool { return environments[e] }
