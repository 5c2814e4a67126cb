package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", forbidden("can't kick %s", "yourself"))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "wrapped: can't kick yourself", err.Error())

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindForbidden, kind)

	_, ok = KindOf(errors.New("timeout"))
	assert.False(t, ok)
}
