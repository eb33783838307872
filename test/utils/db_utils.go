package utils

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	dbTypes "github.com/DefiantLabs/bridge-market-data/db"
	"github.com/ory/dockertest/v3"
	"gorm.io/gorm"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func randResourceNameSuffix(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// DockerAvailable reports whether a docker daemon can be reached for integration tests.
func DockerAvailable() bool {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return false
	}
	return pool.Client.Ping() == nil
}

func SetupTestDatabase() (*TestDockerDBConfig, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, err
	}

	err = pool.Client.Ping()
	if err != nil {
		return nil, err
	}

	databaseName := "test"
	user := "test"
	password := "test"

	connectUserEnv := fmt.Sprintf("POSTGRES_USER=%s", user)
	connectPasswordEnv := fmt.Sprintf("POSTGRES_PASSWORD=%s", password)
	connectDbEnv := fmt.Sprintf("POSTGRES_DB=%s", databaseName)

	createdNetwork, networkName, network, err := findOrCreateDockerNetworkByID(pool, os.Getenv("TEST_DOCKER_NETWORK_ID"))
	if err != nil {
		return nil, err
	}
	removeNetwork := func() error {
		if !createdNetwork {
			return nil
		}
		return pool.RemoveNetwork(network)
	}

	resourceName := fmt.Sprintf("postgres-%s", randResourceNameSuffix(10))

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       resourceName,
		Repository: "postgres",
		Tag:        "15-alpine",
		Env:        []string{connectUserEnv, connectPasswordEnv, connectDbEnv},
		Networks:   []*dockertest.Network{network},
	})
	if err != nil {
		_ = removeNetwork()
		return nil, err
	}

	var db *gorm.DB
	host := resource.GetBoundIP("5432/tcp")
	port := resource.GetPort("5432/tcp")

	clean := func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}

		if err := removeNetwork(); err != nil {
			log.Fatalf("Could not remove network: %s", err)
		}
	}

	if err := pool.Retry(func() error {
		var err error
		db, err = dbTypes.PostgresDbConnect(host, port, databaseName, user, password, "silent")
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}); err != nil {
		clean()
		return nil, err
	}

	conf := TestDockerDBConfig{
		DockerResourceName: resourceName,
		DockerNetwork:      networkName,
		GormDB:             db,
		Host:               host,
		Port:               port,
		Database:           databaseName,
		User:               user,
		Password:           password,
		LogLevel:           "silent",
		Clean:              clean,
	}

	return &conf, nil
}

type TestDockerDBConfig struct {
	DockerResourceName string
	DockerNetwork      string
	GormDB             *gorm.DB
	Host               string
	Port               string
	Database           string
	User               string
	Password           string
	LogLevel           string
	Clean              func()
}
