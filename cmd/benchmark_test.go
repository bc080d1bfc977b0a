package main

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunPool(t *testing.T) {
	var calls atomic.Int32

	result := runPool("test", 50, 4, func() func(*rand.Rand) (int, error) {
		return func(r *rand.Rand) (int, error) {
			n := calls.Add(1)
			if n%10 == 0 {
				return 0, errors.New("failed query")
			}
			return 2, nil
		}
	})

	assert.EqualValues(t, 50, calls.Load())
	assert.Equal(t, "test", result.QueryType)
	assert.Equal(t, 45, result.TotalQueries, "failed queries are not counted")
	assert.EqualValues(t, 90, result.TotalResults)
	assert.InDelta(t, 2.0, result.AvgResults, 1e-9)
	assert.LessOrEqual(t, result.MinDuration, result.MaxDuration)
}

func TestRunPoolAllFailed(t *testing.T) {
	result := runPool("broken", 5, 2, func() func(*rand.Rand) (int, error) {
		return func(*rand.Rand) (int, error) { return 0, errors.New("down") }
	})

	assert.Zero(t, result.TotalQueries)
	assert.Zero(t, result.MinDuration)
	assert.Zero(t, result.AvgDuration)
}

func TestRandomBox(t *testing.T) {
	benchBoxSize = 20
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		box := randomBox(r)
		assert.InDelta(t, 20, box.TopRight.Lat-box.BottomLeft.Lat, 1e-9)
		assert.GreaterOrEqual(t, box.BottomLeft.Lat, -80.0)
		assert.LessOrEqual(t, box.TopRight.Lat, 80.0)
		assert.GreaterOrEqual(t, box.BottomLeft.Lon, -180.0)
		assert.LessOrEqual(t, box.TopRight.Lon, 180.0)
	}
}
