package connection_test

import (
	"testing"

	"go-workforce/internal/config"
	"go-workforce/internal/shared/connection"

	"github.com/stretchr/testify/assert"
)

func TestPostgresDSN(t *testing.T) {
	dsn := connection.PostgresDSN(config.DBConfig{
		Host:     "db",
		User:     "hr",
		Password: "secret",
		Name:     "workforce",
		Port:     "5432",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db user=hr password=secret dbname=workforce port=5432 sslmode=disable TimeZone=UTC", dsn)
}

func TestNewKafkaReader(t *testing.T) {
	r := connection.NewKafkaReader("localhost:9092", "hr.leave.approved.v1", "backfill")
	defer r.Close()

	assert.Equal(t, "hr.leave.approved.v1", r.Config().Topic)
	assert.Equal(t, "backfill", r.Config().GroupID)
}
