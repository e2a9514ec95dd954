package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func testConfig() config.Config {
	return config.Config{
		AccessTokenSecret:  "access-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenSecret: "refresh-secret",
		RefreshTokenTTL:    10 * 24 * time.Hour,
	}
}

func TestBuildDependencies(t *testing.T) {
	deps, err := buildDependencies(context.Background(), fakePool{}, testConfig())
	if err != nil {
		t.Fatalf("buildDependencies: %v", err)
	}

	if deps.Sessions == nil {
		t.Fatal("expected session manager")
	}
	if deps.Users == nil || deps.Videos == nil || deps.Channels == nil {
		t.Fatal("expected repositories wired")
	}
	if deps.Toggles == nil || deps.Edges == nil {
		t.Fatal("expected engagement services wired")
	}
	if deps.Verifier == nil {
		t.Fatal("expected access token verifier")
	}
	if deps.Limiter == nil {
		t.Fatal("expected rate limiter")
	}
	if deps.Media != nil {
		t.Fatal("expected no media storage without a bucket")
	}
}

func TestBuildDependenciesWithObjectStore(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg := testConfig()
	cfg.ObjectStore = config.ObjectStoreConfig{
		Bucket:        "videotube-media",
		Region:        "us-east-1",
		Endpoint:      "http://localhost:9000",
		PublicBaseURL: "http://localhost:9000/videotube-media",
	}

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("buildDependencies: %v", err)
	}
	if deps.Media == nil {
		t.Fatal("expected media storage with a bucket configured")
	}
}
