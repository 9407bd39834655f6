package handlers

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/domain/mocks"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	collections := &mocks.CollectionManager{}

	handler := NewInitHandler(collections, 1536)

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, "sarcheck_precedents", result.CollectionName)
	assert.Equal(t, 1, collections.EnsureCollectionCallCount)
	assert.Equal(t, uint64(1536), collections.LastVectorSize)

	// Verify config and database were created
	assert.True(t, config.Exists(tmpDir))
	_, err = os.Stat(result.DatabasePath)
	assert.NoError(t, err)
}

func TestInitHandler_Handle_WithoutPrecedents(t *testing.T) {
	tmpDir := t.TempDir()

	result, err := NewInitHandler(nil, 0).Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	assert.Empty(t, result.CollectionName)
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	// Initialize first
	err := config.WriteDefault(tmpDir)
	require.NoError(t, err)

	handler := NewInitHandler(&mocks.CollectionManager{}, 1536)

	_, err = handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInitHandler_Handle_CollectionError(t *testing.T) {
	tmpDir := t.TempDir()

	collections := &mocks.CollectionManager{
		EnsureErr: errors.New("connection failed"),
	}

	handler := NewInitHandler(collections, 1536)

	_, err := handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating collection")
	assert.Contains(t, err.Error(), "connection failed")
}
