package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edirooss/flowplan/internal/domain/workspace"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const workspaceKeyPrefix = "flowplan:workspace:" // flowplan:workspace:<id> → JSON(Workspace)

func workspaceKey(id string) string { return workspaceKeyPrefix + id }

// RedisWorkspaceRepository shares workspaces between server replicas.
//
// Every key carries an expiry equal to the session lifetime, so state stays ephemeral:
// a workspace nobody touches for ttl disappears. Save uses WATCH/MULTI so that two
// replicas racing on the same workspace cannot overwrite a newer revision.
type RedisWorkspaceRepository struct {
	client *RedisClient
	log    *zap.Logger
	ttl    time.Duration
}

func NewRedisWorkspaceRepository(log *zap.Logger, client *RedisClient, ttl time.Duration) *RedisWorkspaceRepository {
	return &RedisWorkspaceRepository{
		client: client,
		log:    log.Named("workspaces_redis"),
		ttl:    ttl,
	}
}

func (r *RedisWorkspaceRepository) Get(ctx context.Context, id string) (workspace.Workspace, error) {
	raw, err := r.client.Get(ctx, workspaceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return workspace.Workspace{}, ErrWorkspaceNotFound
		}
		return workspace.Workspace{}, fmt.Errorf("get: %w", err)
	}

	ws, err := decodeWorkspace(raw)
	if err != nil {
		return workspace.Workspace{}, fmt.Errorf("decode: %w", err)
	}
	return ws, nil
}

func (r *RedisWorkspaceRepository) Save(ctx context.Context, ws workspace.Workspace) error {
	key := workspaceKey(ws.ID)

	payload, err := json.Marshal(ws)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("get: %w", err)
		default:
			cur, err := decodeWorkspace(raw)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			if cur.Revision >= ws.Revision {
				return fmt.Errorf("workspace %s rev %d (stored %d): %w", ws.ID, ws.Revision, cur.Revision, ErrStaleRevision)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Another writer committed between WATCH and EXEC.
		return fmt.Errorf("workspace %s: %w", ws.ID, ErrStaleRevision)
	}
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

func (r *RedisWorkspaceRepository) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, workspaceKey(id)).Result()
	if err != nil {
		return fmt.Errorf("del: %w", err)
	}
	if n == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}

func (r *RedisWorkspaceRepository) Touch(ctx context.Context, id string) error {
	if r.ttl <= 0 {
		return nil
	}
	ok, err := r.client.Expire(ctx, workspaceKey(id), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("expire: %w", err)
	}
	if !ok {
		return ErrWorkspaceNotFound
	}
	return nil
}

func decodeWorkspace(raw []byte) (workspace.Workspace, error) {
	var ws workspace.Workspace
	if err := json.Unmarshal(raw, &ws); err != nil {
		return workspace.Workspace{}, err
	}
	return ws, nil
}
