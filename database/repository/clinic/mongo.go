package clinicRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"clinicore/database"
	"clinicore/models"
	"clinicore/utils"
)

const slugCacheTTL = 10 * time.Minute

type mongoClinicRepo struct {
	coll  *mongo.Collection
	cache *redis.Client
}

// NewMongoClinicRepo returns a Repository backed by the "clinics" collection
// with a redis cache in front of slug resolution. The cache holds identity
// data only.
func NewMongoClinicRepo(cache *redis.Client) Repository {
	return &mongoClinicRepo{coll: database.Collection("clinics"), cache: cache}
}

func (r *mongoClinicRepo) GetByID(ctx context.Context, id string) (*models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var clinic models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&clinic); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch clinic %s: %w", id, err)
	}
	return &clinic, nil
}

func (r *mongoClinicRepo) GetBySlug(ctx context.Context, slug string) (*models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := "clinic:slug:" + slug
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached models.Clinic
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	var clinic models.Clinic
	if err := r.coll.FindOne(ctx, bson.M{"bookingSlug": slug, "active": true}).Decode(&clinic); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve booking slug %q: %w", slug, err)
	}

	if r.cache != nil {
		if raw, err := json.Marshal(clinic); err == nil {
			if err := r.cache.Set(ctx, cacheKey, raw, slugCacheTTL).Err(); err != nil {
				utils.GetLogger().Warn("failed to cache clinic slug", zap.String("slug", slug), zap.Error(err))
			}
		}
	}
	return &clinic, nil
}

func (r *mongoClinicRepo) Create(ctx context.Context, clinic *models.Clinic) (*models.Clinic, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if clinic.ID == "" {
		clinic.ID = uuid.New().String()
	}
	clinic.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, clinic); err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return clinic, nil
}

func (r *mongoClinicRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingSlug", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create clinic indexes: %w", err)
	}
	return nil
}
