package application

import (
	"os"
	"testing"

	"tourney/config"
)

func TestMain(m *testing.M) {
	config.SetTestConfig(config.NewTestConfig())
	os.Exit(m.Run())
}
