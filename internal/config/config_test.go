package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaults_AutoDriver(t *testing.T) {
	c := &Config{DBDriver: "auto", GatingMode: "static"}
	require.NoError(t, c.ResolveDefaults())
	require.Equal(t, "sqlite", c.DBDriver)

	c = &Config{DBDriver: "auto", PostgresDSN: "postgres://x", GatingMode: "static"}
	require.NoError(t, c.ResolveDefaults())
	require.Equal(t, "postgres", c.DBDriver)
}

func TestResolveDefaults_RejectsUnknownDriver(t *testing.T) {
	c := &Config{DBDriver: "spanner", GatingMode: "static"}
	require.Error(t, c.ResolveDefaults())
}

func TestResolveDefaults_PostgresNeedsDSN(t *testing.T) {
	c := &Config{DBDriver: "postgres", GatingMode: "static"}
	require.Error(t, c.ResolveDefaults())
}

func TestResolveDefaults_GatingRequirements(t *testing.T) {
	c := &Config{DBDriver: "sqlite", GatingMode: "merkle"}
	require.Error(t, c.ResolveDefaults())

	c = &Config{DBDriver: "sqlite", GatingMode: "merkle", MerkleRoot: "0xabc"}
	require.NoError(t, c.ResolveDefaults())

	c = &Config{DBDriver: "sqlite", GatingMode: "signature"}
	require.Error(t, c.ResolveDefaults())

	c = &Config{DBDriver: "sqlite", GatingMode: "bogus"}
	require.Error(t, c.ResolveDefaults())
}
