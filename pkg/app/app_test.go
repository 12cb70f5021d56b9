package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"

	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/conversion"
	"github.com/amirasaad/tem/pkg/provider"
)

type noProvider struct{}

func (noProvider) Name() string { return "none" }

func (noProvider) IsConfigured() bool { return false }

func (noProvider) HistoricalRate(_ context.Context, _ civil.Date, _, _ string) (*provider.RateInfo, error) {
	return nil, provider.ErrProviderNotConfigured
}

func TestNew(t *testing.T) {
	deps := &Deps{Resolver: conversion.NewResolver(noProvider{})}
	a := New(deps, &config.App{Conversion: &config.Conversion{ResolveTimeout: time.Second}})

	assert.NotNil(t, a.ConversionService)
	assert.NotNil(t, deps.Logger)
	assert.Equal(t, "INR", a.ConversionService.BaseCurrency())
}

func TestDeps_Close(t *testing.T) {
	var order []int
	deps := &Deps{}
	deps.OnClose(func() error { order = append(order, 1); return nil })
	deps.OnClose(func() error { order = append(order, 2); return errors.New("redis") })

	err := deps.Close()
	assert.EqualError(t, err, "redis")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, deps.Close())
}
