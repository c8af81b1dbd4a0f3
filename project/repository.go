package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matt-g-everett/keyframer/keyframe"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Repository stores project documents.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	Load(ctx context.Context, id string) (*Project, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

func touch(p *Project) {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.LastModified = now
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: invalid project id %q", keyframe.ErrInvalidArgument, id)
	}
	return nil
}

// FileRepository keeps one JSON document per project in a directory.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository, creating dir if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}
	r := new(FileRepository)
	r.dir = dir
	return r, nil
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// Save writes the project, replacing any previous version.
func (r *FileRepository) Save(ctx context.Context, p *Project) error {
	if err := validID(p.ProjectID); err != nil {
		return err
	}
	touch(p)
	data, err := Encode(p)
	if err != nil {
		return err
	}

	tmp := r.path(p.ProjectID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	if err := os.Rename(tmp, r.path(p.ProjectID)); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return nil
}

// Load reads a project.
func (r *FileRepository) Load(ctx context.Context, id string) (*Project, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	return Decode(data)
}

// Delete removes a project. Deleting a missing project is not an error.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	err := os.Remove(r.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List returns the stored project IDs, sorted.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// RedisRepository keeps projects in Redis under project:<id>, with the set of
// IDs in "projects".
type RedisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRepository connects to the Redis server at url. A zero ttl keeps
// projects forever.
func NewRedisRepository(ctx context.Context, url string, ttl time.Duration) (*RedisRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisRepositoryWithClient(client, ttl), nil
}

// NewRedisRepositoryWithClient wraps an existing client.
func NewRedisRepositoryWithClient(client redis.UniversalClient, ttl time.Duration) *RedisRepository {
	r := new(RedisRepository)
	r.client = client
	r.ttl = ttl
	return r
}

const redisIndexKey = "projects"

func redisKey(id string) string {
	return fmt.Sprintf("project:%s", id)
}

// Save writes the project and records its ID.
func (r *RedisRepository) Save(ctx context.Context, p *Project) error {
	if err := validID(p.ProjectID); err != nil {
		return err
	}
	touch(p)
	data, err := Encode(p)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisKey(p.ProjectID), data, r.ttl)
	pipe.SAdd(ctx, redisIndexKey, p.ProjectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// Load reads a project.
func (r *RedisRepository) Load(ctx context.Context, id string) (*Project, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return Decode(data)
}

// Delete removes a project and its index entry.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, redisKey(id))
	pipe.SRem(ctx, redisIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// List returns the stored project IDs, sorted. IDs whose project has expired
// are pruned from the index.
func (r *RedisRepository) List(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	pipe := r.client.Pipeline()
	exists := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		exists[i] = pipe.Exists(ctx, redisKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	live := make([]string, 0, len(ids))
	var expired []interface{}
	for i, id := range ids {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			expired = append(expired, id)
		}
	}
	if len(expired) > 0 {
		if err := r.client.SRem(ctx, redisIndexKey, expired...).Err(); err != nil {
			log.Warn().Err(err).Int("count", len(expired)).Msg("Failed to prune expired project IDs")
		}
	}
	sort.Strings(live)
	return live, nil
}

// Close closes the Redis connection.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
