// Package geo captures coordinates at clock-in. Capture is best-effort: a
// failing or slow locator is skipped and the caller falls back to a coarse
// work-location label. Nothing here enforces a geofence.
package geo

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by locators that have no position to report
var ErrUnavailable = errors.New("location unavailable")

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is within the WGS84 ranges
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Locator resolves the device's current position
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to Locator
type LocatorFunc func(ctx context.Context) (Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// Static always reports the same position
type Static Coordinates

func (s Static) Locate(context.Context) (Coordinates, error) {
	return Coordinates(s), nil
}

// None never has a position
var None Locator = LocatorFunc(func(context.Context) (Coordinates, error) {
	return Coordinates{}, ErrUnavailable
})

// Capture asks l for a position, giving up after timeout. It returns nil on
// any failure, including out-of-range coordinates.
func Capture(ctx context.Context, l Locator, timeout time.Duration) *Coordinates {
	if l == nil {
		return nil
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		c   Coordinates
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := l.Locate(ctx)
		ch <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		return nil
	case r := <-ch:
		if r.err != nil || !r.c.Valid() {
			return nil
		}
		return &r.c
	}
}
