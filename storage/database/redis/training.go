package redisrepos

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

const (
	classesKey     = "classes" // Set: all class IDs
	classDocPrefix = "class:"  // String: class:{id} -> class JSON document
)

func classKey(id string) string {
	return classDocPrefix + id
}

// trainingRepository stores each TrainingClass as a JSON string.
// SaveClass runs inside WATCH/MULTI so a concurrent write aborts it.
type trainingRepository struct {
	client *redis.Client
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(client *redis.Client) training.Repository {
	return &trainingRepository{client: client}
}

func (repo trainingRepository) decode(data []byte) (training.TrainingClass, error) {
	var tc training.TrainingClass
	if err := json.Unmarshal(data, &tc); err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "decoding training class")
	}
	return tc, nil
}

func (repo trainingRepository) CreateClass(ctx context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	tc.ID = uuid.New().String()
	tc.Version = 1
	data, err := json.Marshal(tc)
	if err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "encoding training class")
	}

	pipe := repo.client.TxPipeline()
	pipe.Set(ctx, classKey(tc.ID), data, 0)
	pipe.SAdd(ctx, classesKey, tc.ID)
	if _, err = pipe.Exec(ctx); err != nil {
		return training.TrainingClass{}, errors.Wrap(err, "inserting training class")
	}
	return tc, nil
}

func (repo trainingRepository) GetClass(ctx context.Context, id string) (training.TrainingClass, error) {
	data, err := repo.client.Get(ctx, classKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return training.TrainingClass{}, training.ErrNotFound
		}
		return training.TrainingClass{}, errors.Wrap(err, "finding training class by ID")
	}
	return repo.decode(data)
}

func (repo trainingRepository) QueryClasses(
	ctx context.Context,
	filter *training.QueryFilter,
	ordering []core.DBOrdering,
) ([]training.TrainingClass, error) {
	ids, err := repo.client.SMembers(ctx, classesKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing training class IDs")
	}
	if len(ids) == 0 {
		return []training.TrainingClass{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = classKey(id)
	}
	vals, err := repo.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "fetching training classes")
	}

	classes := make([]training.TrainingClass, 0, len(vals))
	for _, val := range vals {
		s, ok := val.(string)
		if !ok {
			continue // deleted between SMEMBERS and MGET
		}
		tc, err := repo.decode([]byte(s))
		if err != nil {
			return nil, err
		}
		classes = append(classes, tc)
	}

	classes = training.FilterClasses(classes, filter)
	training.SortClasses(classes, ordering)
	return classes, nil
}

func (repo trainingRepository) SaveClass(ctx context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	key := classKey(tc.ID)
	saved := tc

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return training.ErrNotFound
			}
			return err
		}
		current, err := repo.decode(data)
		if err != nil {
			return err
		}
		if current.Version != tc.Version {
			return training.ErrConflict
		}

		saved.Version = tc.Version + 1
		doc, err := json.Marshal(saved)
		if err != nil {
			return errors.Wrap(err, "encoding training class")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		return err
	}

	err := repo.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, redis.TxFailedErr):
		return training.TrainingClass{}, training.ErrConflict
	case err == training.ErrNotFound, err == training.ErrConflict:
		return training.TrainingClass{}, err
	default:
		return training.TrainingClass{}, errors.Wrap(err, "updating training class")
	}
}

func (repo trainingRepository) DeleteClass(ctx context.Context, id string) error {
	pipe := repo.client.TxPipeline()
	del := pipe.Del(ctx, classKey(id))
	pipe.SRem(ctx, classesKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "deleting training class")
	}
	if del.Val() == 0 {
		return training.ErrNotFound
	}
	return nil
}
