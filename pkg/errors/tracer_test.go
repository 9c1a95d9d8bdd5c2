package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test 1: Wrap attaches a stack to a plain error and keeps the message
func TestErrorTracer_Wrap(t *testing.T) {
	cause := stderrors.New("kafka write failed")
	tracer := NewTracer("failed to publish event").Wrap(cause)

	assert.Equal(t, "failed to publish event", tracer.Error())
	assert.ErrorIs(t, tracer, cause)
	assert.NotEmpty(t, tracer.StackTrace())
}

// Test 2: an error that already carries a stack is not re-wrapped
func TestTracerFromError_PreservesStack(t *testing.T) {
	cause := pkgerrors.New("boom")
	tracer := TracerFromError(cause)

	assert.Equal(t, "boom", tracer.Error())
	require.ErrorIs(t, tracer, cause)
	assert.Same(t, cause, tracer.Unwrap())
	assert.NotEmpty(t, tracer.StackTrace())
}

// Test 3: a tracer with no wrapped error has no stack
func TestErrorTracer_NoStack(t *testing.T) {
	tracer := NewTracer("bare message")
	assert.Nil(t, tracer.Unwrap())
	assert.Empty(t, tracer.StackTrace())
}
