package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvocationRandSeeded(t *testing.T) {
	assert.Nil(t, invocationRand(true, time.Now()))
}

func TestInvocationRandVariesPerRun(t *testing.T) {
	start := time.Unix(1700000000, 0)

	first := invocationRand(false, start)
	second := invocationRand(false, start.Add(time.Millisecond))
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Perm(20), second.Perm(20))

	again := invocationRand(false, start)
	assert.Equal(t, invocationRand(false, start).Perm(20), again.Perm(20))
}
