package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	speechKeyPrefix = "tts:"
	liveKeyPrefix   = "live:room:"
)

var ErrCacheMiss = errors.New("cache miss")

type IRedis interface {
	GetSpeech(ctx context.Context, key string) ([]byte, error)
	SetSpeech(ctx context.Context, key string, audio []byte, expiration time.Duration) error
	AcquireRoomLock(ctx context.Context, roomID, owner string, expiration time.Duration) (bool, error)
	ReleaseRoomLock(ctx context.Context, roomID, owner string) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func NewFromClient(client *redis.Client) IRedis {
	return &redisClient{client: client}
}

func (r *redisClient) GetSpeech(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, speechKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting speech for key %s: %v", key, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) SetSpeech(ctx context.Context, key string, audio []byte, expiration time.Duration) error {
	if err := r.client.Set(ctx, speechKeyPrefix+key, audio, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching speech for key %s: %v", key, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Cached %d bytes of speech for key %s", len(audio), key))
	return nil
}

// AcquireRoomLock claims the live session of a room for owner. It reports
// false when another owner already holds it.
func (r *redisClient) AcquireRoomLock(ctx context.Context, roomID, owner string, expiration time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, liveKeyPrefix+roomID, owner, expiration).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error locking room %s: %v", roomID, err))
		return false, err
	}
	return ok, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseRoomLock deletes the lock only while owner still holds it.
func (r *redisClient) ReleaseRoomLock(ctx context.Context, roomID, owner string) error {
	result, err := releaseScript.Run(ctx, r.client, []string{liveKeyPrefix + roomID}, owner).Int()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error unlocking room %s: %v", roomID, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Room lock %s not held by %s", roomID, owner))
	}
	return nil
}
