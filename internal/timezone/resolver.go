package timezone

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"

	"docconnect/backend/internal/domain"
)

type finder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Resolver maps a practice coordinate to its IANA time zone using the
// embedded polygon data shipped with tzf.
type Resolver struct {
	finder finder
}

func NewResolver() (*Resolver, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("timezone: load finder: %w", err)
	}
	return &Resolver{finder: f}, nil
}

func newResolverWithFinder(f finder) *Resolver {
	return &Resolver{finder: f}
}

func (r *Resolver) Name(coord domain.GeoCoordinate) (string, error) {
	if !coord.Valid() {
		return "", domain.ErrLocationResolution
	}
	name := strings.TrimSpace(r.finder.GetTimezoneName(coord.Longitude.InexactFloat64(), coord.Latitude.InexactFloat64()))
	if name == "" {
		return "", domain.ErrLocationResolution
	}
	return name, nil
}

func (r *Resolver) Resolve(ctx context.Context, coord domain.GeoCoordinate) (*time.Location, error) {
	name, err := r.Name(coord)
	if err != nil {
		return nil, err
	}
	return loadLocation(name)
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocationResolution, name)
	}
	return loc, nil
}
