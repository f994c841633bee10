// Package testsuite starts throwaway containers for integration tests.
package testsuite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Redis runs a Redis container for the lifetime of t and returns a flushed
// client. The test is skipped when no Docker daemon is reachable.
func Redis(t *testing.T) (context.Context, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// hard kill the container even if cleanup never runs
	_ = resource.Expire(expireDuration)

	addr := resource.GetHostPort(redisPort)
	pool.MaxWait = maxWaitDuration

	var client *redis.Client
	if err = pool.Retry(func() error {
		client = redis.NewClient(&redis.Options{Addr: addr})
		return client.Ping(ctx).Err()
	}); err != nil {
		if perr := pool.Purge(resource); perr != nil {
			t.Fatalf("could not purge resource: %v", perr)
		}
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge resource: %v", err)
		}
	})
	return ctx, client
}
