package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NoRequestTimeout(t *testing.T) {
	c := New("http://localhost:8080/", "tok", "alice")

	assert.Zero(t, c.http.Timeout)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}
