package main

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchsync/internal/config"
	dbBleve "github.com/kailas-cloud/searchsync/internal/db/bleve"
)

func TestNewEngine_Drivers(t *testing.T) {
	e, err := newEngine(config.EngineConfig{Driver: config.DriverBleve})
	if err != nil {
		t.Fatalf("bleve: %v", err)
	}
	if _, ok := e.(*dbBleve.Engine); !ok {
		t.Errorf("bleve driver built %T", e)
	}
	if err := e.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	e.Close()

	if _, err := newEngine(config.EngineConfig{Driver: config.DriverRedis}); err == nil {
		t.Error("redis without addrs should fail")
	}
	if _, err := newEngine(config.EngineConfig{Driver: config.DriverElastic}); err == nil {
		t.Error("elastic without addrs should fail")
	}
	if _, err := newEngine(config.EngineConfig{Driver: "solr"}); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	flagConfig = "../../config/local.yaml"
	flagEnv = "test"
	t.Cleanup(func() { flagConfig, flagEnv = "", "" })

	cfg, env, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if env != "test" {
		t.Errorf("env = %q", env)
	}
	if len(cfg.Types) == 0 {
		t.Error("expected configured types")
	}
}
