package sdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appfy/gaesdk"
	"github.com/appfy/gaesdk/internal"
)

// installFixture records a single installed file for the given step config and returns the store.
func installFixture(t *testing.T, cfg StepConfig, url string) *gaesdk.Store {
	t.Helper()

	require.NoError(t, os.MkdirAll(cfg.Destination, 0755))
	file := filepath.Join(cfg.Destination, "dev_appserver.py")
	require.NoError(t, os.WriteFile(file, []byte("#!/usr/bin/env python\n"), 0755))

	digest, err := internal.XXH64File(file)
	require.NoError(t, err)

	store, err := gaesdk.NewStore(t.TempDir())
	require.NoError(t, err)

	cfgDigest, err := cfg.Digest()
	require.NoError(t, err)

	require.NoError(t, store.Record("gae_sdk", ReleaseFromURL(url), cfgDigest, &gaesdk.Installation{
		URL:         url,
		Destination: cfg.Destination,
		Files:       map[string]string{"dev_appserver.py": digest},
	}))
	return store
}

func TestCheckStatus(t *testing.T) {
	oldURL := "https://storage.googleapis.com/appengine-sdks/featured/google_appengine_1.9.6.zip"

	t.Run("not installed", func(t *testing.T) {
		store, err := gaesdk.NewStore(t.TempDir())
		require.NoError(t, err)

		step := NewStepWith(StepConfig{Destination: t.TempDir()}, &fakeResolver{}, &fakeInstaller{})
		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{})

		assert.False(t, got.IsInstalled)
		assert.False(t, got.OK())
		assert.NoError(t, got.Error)
	})

	t.Run("installed and intact", func(t *testing.T) {
		cfg := StepConfig{Destination: filepath.Join(t.TempDir(), "parts"), ClearDestination: true}
		store := installFixture(t, cfg, latestURL)

		step := NewStepWith(cfg, &fakeResolver{}, &fakeInstaller{})
		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{VerifyDigests: true})

		assert.True(t, got.IsInstalled)
		assert.True(t, got.IsIntact)
		assert.False(t, got.ConfigChanged)
		assert.Equal(t, "1.9.11", got.InstalledRelease)
		assert.Equal(t, 1, got.Files)
		assert.True(t, got.OK())
	})

	t.Run("modified file", func(t *testing.T) {
		cfg := StepConfig{Destination: filepath.Join(t.TempDir(), "parts")}
		store := installFixture(t, cfg, latestURL)

		require.NoError(t, os.WriteFile(filepath.Join(cfg.Destination, "dev_appserver.py"), []byte("tampered"), 0755))

		step := NewStepWith(cfg, &fakeResolver{}, &fakeInstaller{})

		withoutDigests := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{})
		assert.True(t, withoutDigests.IsIntact)

		withDigests := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{VerifyDigests: true})
		assert.False(t, withDigests.IsIntact)
		var mismatch *gaesdk.ErrDigestMismatch
		assert.ErrorAs(t, withDigests.VerifyError, &mismatch)
		assert.False(t, withDigests.OK())
	})

	t.Run("config changed", func(t *testing.T) {
		cfg := StepConfig{Destination: filepath.Join(t.TempDir(), "parts")}
		store := installFixture(t, cfg, latestURL)

		changed := cfg
		changed.URL = oldURL
		step := NewStepWith(changed, &fakeResolver{}, &fakeInstaller{})

		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{})
		assert.True(t, got.ConfigChanged)
		assert.False(t, got.OK())
	})

	t.Run("relative parts directory from another working directory", func(t *testing.T) {
		partsDir := filepath.Join("parts", "gae_sdk")

		t.Chdir(t.TempDir())
		installed, err := NewStepConfig(nil, partsDir)
		require.NoError(t, err)
		store := installFixture(t, installed, latestURL)

		t.Chdir(t.TempDir())
		current, err := NewStepConfig(nil, partsDir)
		require.NoError(t, err)
		step := NewStepWith(current, &fakeResolver{}, &fakeInstaller{})

		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{})
		assert.True(t, got.IsInstalled)
		assert.False(t, got.ConfigChanged)
	})

	t.Run("update available", func(t *testing.T) {
		cfg := StepConfig{Destination: filepath.Join(t.TempDir(), "parts")}
		store := installFixture(t, cfg, oldURL)

		resolver := &fakeResolver{release: "1.9.11"}
		step := NewStepWith(cfg, resolver, &fakeInstaller{})

		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{CheckUpdates: true})
		assert.Equal(t, 1, resolver.calls)
		assert.Equal(t, "1.9.6", got.InstalledRelease)
		assert.Equal(t, "1.9.11", got.LatestRelease)
		assert.True(t, got.UpdateAvailable)
		assert.False(t, got.OK())
	})

	t.Run("pinned url ignores upstream releases", func(t *testing.T) {
		cfg := StepConfig{URL: oldURL, Destination: filepath.Join(t.TempDir(), "parts")}
		store := installFixture(t, cfg, oldURL)

		step := NewStepWith(cfg, &fakeResolver{release: "1.9.11"}, &fakeInstaller{})

		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{CheckUpdates: true})
		assert.Equal(t, "1.9.11", got.LatestRelease)
		assert.False(t, got.UpdateAvailable)
		assert.True(t, got.OK())
	})

	t.Run("update check failure", func(t *testing.T) {
		cfg := StepConfig{Destination: filepath.Join(t.TempDir(), "parts")}
		store := installFixture(t, cfg, latestURL)

		resolveErr := errors.New("unreachable")
		step := NewStepWith(cfg, &fakeResolver{err: resolveErr}, &fakeInstaller{})

		got := CheckStatus(context.Background(), "gae_sdk", step, store, StatusOptions{CheckUpdates: true})
		assert.ErrorIs(t, got.Error, resolveErr)
		assert.False(t, got.OK())
	})
}
