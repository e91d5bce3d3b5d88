package signpost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
)

func TestKeyString(t *testing.T) {
	require.Equal(t, "signpost context key: RequestIDKey", signpost.RequestIDKey.String())
}

func TestKeysDistinct(t *testing.T) {
	// Arrange
	ctx := context.WithValue(context.Background(), signpost.IpAddrKey, "10.0.0.1")
	ctx = context.WithValue(ctx, signpost.RequestIDKey, "abc")

	// Act
	_, bodyOK := ctx.Value(signpost.BodyKey).(string)

	// Assert
	require.Equal(t, "10.0.0.1", ctx.Value(signpost.IpAddrKey))
	require.Equal(t, "abc", ctx.Value(signpost.RequestIDKey))
	require.False(t, bodyOK)
	require.Nil(t, ctx.Value("RequestIDKey"))
}
