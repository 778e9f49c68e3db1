// Package database ouvre les connexions aux services externes optionnels.
// Un service non configuré ou injoignable reste nil : l'application bascule en mémoire.
package database

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pos_back_end/internal/config"
)

type Clients struct {
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

func Connect(ctx context.Context, cfg *config.Config, log *zap.Logger) *Clients {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return &Clients{
		Redis:   connectRedis(ctx, cfg.Redis, log),
		Elastic: connectElastic(cfg.Elastic, log),
		MinIO:   connectMinIO(ctx, cfg.MinIO, log),
	}
}

func (c *Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("ℹ️ Redis non configuré, paniers et réglages hors Redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis injoignable, bascule en mémoire", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("✅ Connecté à Redis", zap.String("addr", cfg.Addr))
	return client
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg config.ElasticsearchConfig, log *zap.Logger) *elasticsearch.Client {
	if len(cfg.Addresses) == 0 {
		log.Info("ℹ️ Elasticsearch non configuré, recherche en mémoire")
		return nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		log.Warn("⚠️ Erreur création client Elasticsearch", zap.Error(err))
		return nil
	}

	res, err := client.Info()
	if err != nil {
		log.Warn("⚠️ Elasticsearch injoignable, recherche en mémoire", zap.Error(err))
		return nil
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Warn("⚠️ Elasticsearch a répondu en erreur", zap.String("status", res.Status()))
		return nil
	}

	log.Info("✅ Connecté à Elasticsearch", zap.Strings("addresses", cfg.Addresses))
	return client
}

// =============================================
// MINIO
// =============================================
func connectMinIO(ctx context.Context, cfg config.MinIOConfig, log *zap.Logger) *minio.Client {
	if cfg.Endpoint == "" {
		log.Info("ℹ️ MinIO non configuré, upload d'images désactivé")
		return nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Warn("⚠️ Erreur connexion MinIO", zap.Error(err))
		return nil
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Warn("⚠️ Erreur vérification bucket MinIO", zap.String("bucket", cfg.Bucket), zap.Error(err))
		return nil
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Warn("⚠️ Erreur création bucket MinIO", zap.String("bucket", cfg.Bucket), zap.Error(err))
			return nil
		}
		log.Info("🪣 Bucket créé", zap.String("bucket", cfg.Bucket))
	}

	log.Info("✅ Connecté à MinIO", zap.String("endpoint", cfg.Endpoint))
	return client
}
