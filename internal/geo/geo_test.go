package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_Static(t *testing.T) {
	c := Capture(context.Background(), Static{Latitude: 52.52, Longitude: 13.405}, time.Second)
	require.NotNil(t, c)
	assert.Equal(t, 52.52, c.Latitude)
}

func TestCapture_SkipsFailures(t *testing.T) {
	assert.Nil(t, Capture(context.Background(), nil, time.Second))
	assert.Nil(t, Capture(context.Background(), None, time.Second))

	failing := LocatorFunc(func(context.Context) (Coordinates, error) {
		return Coordinates{}, errors.New("gps off")
	})
	assert.Nil(t, Capture(context.Background(), failing, time.Second))

	assert.Nil(t, Capture(context.Background(), Static{Latitude: 123, Longitude: 0}, time.Second))
}

func TestCapture_TimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	slow := LocatorFunc(func(ctx context.Context) (Coordinates, error) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		return Coordinates{Latitude: 1, Longitude: 1}, nil
	})

	start := time.Now()
	assert.Nil(t, Capture(context.Background(), slow, 20*time.Millisecond))
	assert.Less(t, time.Since(start), time.Second)
}
