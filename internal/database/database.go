package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"phoneshop_back_end/internal/config"
)

// Clients regroupe les connexions ouvertes au démarrage. Elastic et MinIO
// sont optionnels : nil quand ils ne sont pas configurés.
type Clients struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre toutes les connexions. Scylla et Redis sont obligatoires.
func Connect(ctx context.Context, cfg config.Config, log *slog.Logger) (*Clients, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	session, err := ConnectScylla(cfg.Scylla)
	if err != nil {
		return nil, fmt.Errorf("scylla: %w", err)
	}
	log.Info("✅ Connecté à ScyllaDB", "keyspace", cfg.Scylla.Keyspace)

	rdb, err := ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	log.Info("✅ Connecté à Redis", "addr", cfg.Redis.Addr)

	clients := &Clients{Scylla: session, Redis: rdb}

	if cfg.Elastic.URL != "" {
		es, err := ConnectElastic(cfg.Elastic)
		if err != nil {
			log.Warn("⚠️ Elasticsearch indisponible, recherche en mode dégradé", "error", err)
		} else {
			clients.Elastic = es
			log.Info("✅ Connecté à Elasticsearch")
		}
	}

	if cfg.MinIO.Endpoint != "" {
		mc, err := ConnectMinIO(ctx, cfg.MinIO, log)
		if err != nil {
			log.Warn("⚠️ MinIO indisponible, upload d'images désactivé", "error", err)
		} else {
			clients.MinIO = mc
			log.Info("✅ Connecté à MinIO", "endpoint", cfg.MinIO.Endpoint)
		}
	}

	return clients, nil
}

// Close ferme les connexions ouvertes.
func (c *Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Scylla != nil {
		c.Scylla.Close()
	}
}

// =============================================
// SCYLLA DB
// =============================================

func newScyllaCluster(cfg config.ScyllaConfig, keyspace string) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("impossible de lire le certificat CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("impossible de parser le certificat CA")
		}
		cluster.SslOpts = &gocql.SslOptions{Config: &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster, nil
}

// ConnectScylla crée le keyspace s'il manque, applique le schéma et
// renvoie une session sur ce keyspace.
func ConnectScylla(cfg config.ScyllaConfig) (*gocql.Session, error) {
	bootstrap, err := newScyllaCluster(cfg, "")
	if err != nil {
		return nil, err
	}
	sys, err := bootstrap.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("session système: %w", err)
	}
	err = sys.Query(fmt.Sprintf(createKeyspace, cfg.Keyspace)).Exec()
	sys.Close()
	if err != nil {
		return nil, fmt.Errorf("création keyspace %s: %w", cfg.Keyspace, err)
	}

	cluster, err := newScyllaCluster(cfg, cfg.Keyspace)
	if err != nil {
		return nil, err
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", cfg.Keyspace, err)
	}
	if err := Migrate(session); err != nil {
		session.Close()
		return nil, err
	}
	return session, nil
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	return rdb, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

func ConnectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("création client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connexion: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("info: %s", res.Status())
	}
	return client, nil
}

// =============================================
// MINIO
// =============================================

func ConnectMinIO(ctx context.Context, cfg config.MinIOConfig, log *slog.Logger) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("vérification bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("création bucket: %w", err)
		}
		log.Info("🪣 Bucket créé", "bucket", cfg.Bucket)
	}
	return client, nil
}
